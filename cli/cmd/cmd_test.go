package cmd_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardianproject/simple-c2pa-go/cli/cmd/internal/test"
)

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for x := range 12 {
		img.Set(x, x, color.RGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	if filepath.Ext(name) == ".png" {
		require.NoError(t, png.Encode(&buf, img))
	} else {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	_, err := test.Run(t, test.WithArgs(args...), test.WithOutput(&out))
	require.NoError(t, err, "simple-c2pa %s", strings.Join(args, " "))
	return out.String()
}

func lines(s string) []string {
	return strings.Fields(strings.TrimSpace(s))
}

type inspectReport struct {
	Manifest       string `json:"manifest"`
	Title          string `json:"title"`
	ClaimGenerator string `json:"claimGenerator"`
	Algorithm      string `json:"algorithm"`
	Signer         string `json:"signer"`
	Issuer         string `json:"issuer"`
	ChainLength    int    `json:"chainLength"`
	Assertions     []struct {
		Label  string `json:"label"`
		Format string `json:"format"`
		Value  any    `json:"value"`
	} `json:"assertions"`
}

func (r inspectReport) labels() []string {
	var out []string
	for _, a := range r.Assertions {
		out = append(out, a.Label)
	}
	return out
}

func (r inspectReport) value(label string) any {
	for _, a := range r.Assertions {
		if a.Label == label {
			return a.Value
		}
	}
	return nil
}

func inspectJSON(t *testing.T, args ...string) inspectReport {
	t.Helper()
	out := run(t, append([]string{"inspect", "-o", "json"}, args...)...)
	var rep inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	return rep
}

func TestCertificateChainAndSign(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	out := run(t, "certificate", "create", "root", "--organization", "Test Org", "--output-dir", dir)
	r.Equal([]string{filepath.Join(dir, "root.pem"), filepath.Join(dir, "root.key")}, lines(out))

	run(t, "certificate", "create", "intermediate", "--output-dir", dir,
		"--parent-certificate", filepath.Join(dir, "root.pem"),
		"--parent-key", filepath.Join(dir, "root.key"),
		"--organization", "Test Org", "--offline")

	run(t, "certificate", "create", "content-credentials", "--output-dir", dir, "--name", "signer",
		"--parent-certificate", filepath.Join(dir, "intermediate.pem"),
		"--parent-key", filepath.Join(dir, "intermediate.key"),
		"--organization", "Test Org", "--email", "jane@example.com")

	chain, err := os.ReadFile(filepath.Join(dir, "signer.pem"))
	r.NoError(err)
	r.Equal(3, bytes.Count(chain, []byte("BEGIN CERTIFICATE")))
	info, err := os.Stat(filepath.Join(dir, "signer.key"))
	r.NoError(err)
	r.Equal(os.FileMode(0o600), info.Mode().Perm())

	photo := writeImage(t, t.TempDir(), "photo.jpg")
	outDir := filepath.Join(t.TempDir(), "signed")
	out = run(t, "sign", "embed", "--created",
		"--certificate", filepath.Join(dir, "signer.pem"),
		"--key", filepath.Join(dir, "signer.key"),
		"--output-dir", outDir, photo)
	signed := filepath.Join(outDir, "c2pa-photo.jpg")
	r.Equal([]string{signed}, lines(out))

	rep := inspectJSON(t, signed)
	r.Equal("es256", rep.Algorithm)
	r.Equal(3, rep.ChainLength)
	r.Contains(rep.Signer, "Test Org Content Credentials")
	r.Contains(rep.Issuer, "Test Org Offline Intermediate CA")
	r.Equal("photo.jpg", rep.Title)
	r.Equal([]string{"c2pa.ingredient", "c2pa.actions", "c2pa.hash.data"}, rep.labels())
}

func TestCertificateCreateErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string][]string{
		"intermediate without parent": {"certificate", "create", "intermediate", "--output-dir", dir},
		"parent key missing": {"certificate", "create", "content-credentials", "--output-dir", dir,
			"--parent-certificate", filepath.Join(dir, "none.pem")},
		"parent files missing": {"certificate", "create", "content-credentials", "--output-dir", dir,
			"--parent-certificate", filepath.Join(dir, "none.pem"), "--parent-key", filepath.Join(dir, "none.key")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := test.Run(t, test.WithArgs(args...))
			assert.Error(t, err)
		})
	}
}

func TestSignManyFiles(t *testing.T) {
	r := require.New(t)
	in := t.TempDir()
	inputs := []string{
		writeImage(t, in, "a.jpg"),
		writeImage(t, in, "b.png"),
		writeImage(t, in, "c.jpg"),
	}

	out := run(t, append([]string{"sign", "embed",
		"--concurrency-limit", "2",
		"--placed",
		"--ai-training", "restricted",
		"--website", "https://example.com",
		"--assertion", `org.example.note={"reviewed":true}`,
	}, inputs...)...)

	written := lines(out)
	r.Len(written, len(inputs))
	for i, input := range inputs {
		r.Equal(filepath.Join(in, "c2pa-"+filepath.Base(input)), written[i])

		rep := inspectJSON(t, written[i])
		labels := rep.labels()
		for _, want := range []string{
			"c2pa.actions", "stds.schema-org.CreativeWork",
			"c2pa.ai_training", "c2pa.ai_generative_training", "c2pa.data_mining", "c2pa.inference",
			"org.example.note",
		} {
			r.Contains(labels, want)
		}
		r.Equal(map[string]any{"reviewed": true}, rep.value("org.example.note"))
		r.Equal(map[string]any{"use": "notAllowed"}, rep.value("c2pa.inference"))
	}
}

func TestSignExportAndInspectSidecar(t *testing.T) {
	r := require.New(t)
	in := t.TempDir()
	photo := writeImage(t, in, "photo.png")
	outDir := t.TempDir()

	out := run(t, "sign", "export", "--created", "--prefix", "", "--output-dir", outDir, photo)
	copied := filepath.Join(outDir, "photo.png")
	sidecar := filepath.Join(outDir, "photo.c2pa")
	r.Equal([]string{sidecar}, lines(out))

	original, err := os.ReadFile(photo)
	r.NoError(err)
	data, err := os.ReadFile(copied)
	r.NoError(err)
	r.Equal(original, data)

	rep := inspectJSON(t, copied)
	r.Contains(rep.labels(), "c2pa.actions")

	rep = inspectJSON(t, "--sidecar", sidecar, photo)
	r.Contains(rep.labels(), "c2pa.actions")

	table := run(t, "inspect", copied)
	r.Contains(table, "c2pa.actions")
	r.Contains(table, "Claim generator")
}

func TestSignWithProfile(t *testing.T) {
	r := require.New(t)
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	r.NoError(os.WriteFile(profile, []byte(`
application:
  name: ProofMode
  version: v2.1
certificate:
  organization: Guardian Project
assertions:
  created: true
  pgp:
    id: ba08 71e8
    displayName: Jane
  json:
    org.example.profile:
      source: profile
`), 0o600))

	photo := writeImage(t, t.TempDir(), "photo.jpg")
	out := run(t, "--config", profile, "sign", "embed", "--assertion", `org.example.flag=[1,2]`, photo)

	rep := inspectJSON(t, lines(out)[0])
	r.Equal("ProofMode/2.1.0 simple-c2pa-go/0.1.0", rep.ClaimGenerator)
	r.Contains(rep.Signer, "Guardian Project Content Credentials")
	r.Equal(map[string]any{"source": "profile"}, rep.value("org.example.profile"))
	r.Equal([]any{float64(1), float64(2)}, rep.value("org.example.flag"))

	work, ok := rep.value("stds.schema-org.CreativeWork").(map[string]any)
	r.True(ok)
	author := work["author"].([]any)[0].(map[string]any)
	r.Equal("BA0871E8", author["identifier"])
}

func TestSignErrors(t *testing.T) {
	dir := t.TempDir()
	photo := writeImage(t, dir, "photo.jpg")
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not an image"), 0o600))

	tests := map[string][]string{
		"certificate without key": {"sign", "embed", "--certificate", photo, photo},
		"malformed assertion":     {"sign", "embed", "--assertion", "no-separator", photo},
		"invalid assertion json":  {"sign", "embed", "--assertion", "org.example={", photo},
		"reserved label":          {"sign", "embed", "--assertion", `c2pa.hash.data={}`, photo},
		"unsupported format":      {"sign", "embed", text},
		"no files":                {"sign", "embed"},
		"bad concurrency":         {"sign", "embed", "--concurrency-limit", "0", photo},
		"unknown ai preset":       {"sign", "embed", "--ai-training", "sometimes", photo},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := test.Run(t, test.WithArgs(args...))
			assert.Error(t, err)
		})
	}
}

func TestSignRejectsCollidingOutputs(t *testing.T) {
	in := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.Mkdir(filepath.Join(in, sub), 0o700))
	}
	first := writeImage(t, filepath.Join(in, "a"), "photo.jpg")
	second := writeImage(t, filepath.Join(in, "b"), "photo.jpg")
	png := writeImage(t, filepath.Join(in, "a"), "photo.png")

	tests := []struct {
		name   string
		args   []string
		output string
	}{
		{
			name:   "same base name in one output directory",
			args:   []string{"sign", "embed", "--output-dir", filepath.Join(in, "out"), first, second},
			output: filepath.Join(in, "out", "c2pa-photo.jpg"),
		},
		{
			name:   "same input twice",
			args:   []string{"sign", "embed", first, first},
			output: filepath.Join(in, "a", "c2pa-photo.jpg"),
		},
		{
			name:   "shared sidecar",
			args:   []string{"sign", "export", "--output-dir", filepath.Join(in, "sidecars"), first, png},
			output: filepath.Join(in, "sidecars", "c2pa-photo.c2pa"),
		},
		{
			name: "output overwrites input",
			args: []string{"sign", "embed", "--prefix", "", first},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := test.Run(t, test.WithArgs(tt.args...))
			require.ErrorContains(t, err, "would both write")
			if tt.output != "" {
				assert.NoFileExists(t, tt.output)
			}
		})
	}
}

func TestSignLogsAlgorithmAttempts(t *testing.T) {
	r := require.New(t)
	photo := writeImage(t, t.TempDir(), "photo.jpg")

	var logs bytes.Buffer
	_, err := test.Run(t,
		test.WithArgs("--loglevel", "debug", "sign", "embed", photo),
		test.WithLogs(&logs),
	)
	r.NoError(err)

	entries := test.ParseLogs(logs.Bytes())
	r.NotEmpty(entries)
	r.True(slices.ContainsFunc(entries, func(e test.LogEntry) bool {
		return e.Msg == "trying signing algorithm" && e.Extras["algorithm"] == "es256" && e.Extras["input"] == photo
	}))
	r.True(slices.ContainsFunc(entries, func(e test.LogEntry) bool {
		return e.Msg == "signed" && e.Level == "INFO"
	}))
	r.True(slices.ContainsFunc(entries, func(e test.LogEntry) bool {
		return e.Level == "WARN" && strings.Contains(e.Msg, "throw-away")
	}))
}

func TestInspectUnsignedFile(t *testing.T) {
	photo := writeImage(t, t.TempDir(), "photo.jpg")
	_, err := test.Run(t, test.WithArgs("inspect", photo))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "simple-c2pa-go", info["libraryName"])
	assert.Contains(t, info, "goVersion")

	_, err := test.Run(t, test.WithArgs("version", "--format", "yaml"))
	assert.Error(t, err)
}

func TestGenerateDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	run(t, "generate", "docs", "--directory", dir)

	for _, page := range []string{"simple-c2pa.md", "simple-c2pa_sign_embed.md", "simple-c2pa_certificate_create_root.md"} {
		assert.FileExists(t, filepath.Join(dir, page))
	}
}

func TestGenerateSchema(t *testing.T) {
	out := run(t, "generate", "schema")
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, schema, "properties")
	assert.Contains(t, schema, "$defs")
}
