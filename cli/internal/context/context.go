// Package context carries the state shared by all simple-c2pa commands
// through the command's context.Context.
package context

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
)

type ctxKey string

const key ctxKey = "github.com/guardianproject/simple-c2pa-go/cli/internal/context"

// Context holds pointers that are set up once by the root command and read
// by its subcommands.
type Context struct {
	mu sync.RWMutex

	// profile is never nil once the pre-run hook ran; without a profile file
	// it is empty.
	profile *v1.Profile
}

// WithProfile stores profile in the Context of ctx, creating one if needed.
func WithProfile(ctx context.Context, profile *v1.Profile) context.Context {
	ctx, c := retrieveOrCreate(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = profile
	return ctx
}

// Register makes sure the context of cmd carries a Context.
func Register(cmd *cobra.Command) {
	ctx, _ := retrieveOrCreate(cmd.Context())
	cmd.SetContext(ctx)
}

// Profile returns the loaded profile or an empty one.
func (c *Context) Profile() *v1.Profile {
	if c == nil {
		return &v1.Profile{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return &v1.Profile{}
	}
	return c.profile
}

// FromContext returns the Context of ctx or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(key).(*Context); ok {
		return v
	}
	return nil
}

// WithContext stores c in ctx.
func WithContext(ctx context.Context, c *Context) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, key, c)
}

func retrieveOrCreate(ctx context.Context) (context.Context, *Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c := FromContext(ctx)
	if c == nil {
		c = &Context{}
		ctx = WithContext(ctx, c)
	}
	return ctx, c
}
