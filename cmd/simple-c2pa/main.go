package main

import (
	"github.com/guardianproject/simple-c2pa-go/cli/cmd"
)

func main() {
	cmd.Execute()
}
