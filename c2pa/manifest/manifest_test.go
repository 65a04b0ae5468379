package manifest_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/certificates"
	"github.com/guardianproject/simple-c2pa-go/signing"
	"github.com/guardianproject/simple-c2pa-go/signing/handler"
)

func newSigner(t *testing.T) signing.Signer {
	t.Helper()
	root, err := certificates.CreateRootCertificate("", 0)
	require.NoError(t, err)
	leaf, err := certificates.CreateContentCredentialsCertificate(root, "", 0)
	require.NoError(t, err)
	certPEM, err := leaf.GetCertificateBytes()
	require.NoError(t, err)
	keyPEM, err := leaf.GetPrivateKeyBytes()
	require.NoError(t, err)
	s, err := handler.FromKeys(certPEM, keyPEM, signing.ES256)
	require.NoError(t, err)
	return s
}

func writeImage(t *testing.T, name string) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	switch filepath.Ext(name) {
	case ".png":
		require.NoError(t, png.Encode(&buf, img))
	default:
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path, buf.Bytes()
}

func labels(s *manifest.Store) []string {
	var out []string
	for _, a := range s.Assertions {
		out = append(out, a.Label)
	}
	return out
}

func TestEmbedAndRead(t *testing.T) {
	for _, name := range []string{"photo.jpg", "photo.png"} {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)
			src, original := writeImage(t, name)
			dst := filepath.Join(t.TempDir(), "signed-"+name)

			m := manifest.New("app/1.0 simple-c2pa-go/0.1.0", manifest.GeneratorInfo{Name: "app", Version: "1.0"})
			r.NoError(m.SetParent(assertions.NewParentIngredient(name, original)))
			r.NoError(m.AddAssertion(assertions.NewActions(assertions.ActionCreated, "app/1.0")))
			r.NoError(m.AddLabeledAssertion("org.example.note", `{"note":"hello"}`))

			written, err := m.Embed(t.Context(), src, dst, newSigner(t))
			r.NoError(err)
			r.Equal(dst, written)
			r.True(m.Finalized())

			out, err := os.ReadFile(dst)
			r.NoError(err)
			r.NotEqual(original, out)

			store, err := manifest.Read(out)
			r.NoError(err)
			r.Equal(signing.ES256, store.Signature.Algorithm)
			r.Equal("app/1.0 simple-c2pa-go/0.1.0", store.Claim.ClaimGenerator)
			r.Equal(name, store.Claim.Title)
			r.Equal("self#jumbf=c2pa.signature", store.Claim.Signature)
			r.Equal([]string{
				assertions.LabelIngredient,
				assertions.LabelActions,
				"org.example.note",
				assertions.LabelDataHash,
			}, labels(store))

			ingredient, ok := store.Assertion(assertions.LabelIngredient)
			r.True(ok)
			var parent assertions.Ingredient
			r.NoError(ingredient.Decode(&parent))
			r.Equal(assertions.NewParentIngredient(name, original).Digest, parent.Digest)
			r.Equal(assertions.RelationshipParentOf, parent.Relationship)

			note, ok := store.Assertion("org.example.note")
			r.True(ok)
			r.JSONEq(`{"note":"hello"}`, string(note.Data))

			_, err = m.Embed(t.Context(), src, dst, newSigner(t))
			r.ErrorIs(err, manifest.ErrFinalized)
			r.ErrorIs(m.AddLabeledAssertion("x", `{}`), manifest.ErrFinalized)
		})
	}
}

func TestEmbedReplacesExistingManifest(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	first := filepath.Join(t.TempDir(), "first.jpg")
	second := filepath.Join(t.TempDir(), "second.jpg")

	m1 := manifest.New("first")
	_, err := m1.Embed(t.Context(), src, first, newSigner(t))
	r.NoError(err)

	m2 := manifest.New("second")
	_, err = m2.Embed(t.Context(), first, second, newSigner(t))
	r.NoError(err)

	out, err := os.ReadFile(second)
	r.NoError(err)
	store, err := manifest.Read(out)
	r.NoError(err)
	r.Equal("second", store.Claim.ClaimGenerator)
}

func TestReadDetectsTampering(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	dst := filepath.Join(t.TempDir(), "signed.jpg")

	_, err := manifest.New("app").Embed(t.Context(), src, dst, newSigner(t))
	r.NoError(err)
	out, err := os.ReadFile(dst)
	r.NoError(err)

	tampered := slices.Clone(out)
	tampered[len(tampered)-3] ^= 0xff
	_, err = manifest.Read(tampered)
	r.ErrorIs(err, manifest.ErrHashMismatch)
}

func TestSidecar(t *testing.T) {
	r := require.New(t)
	src, original := writeImage(t, "photo.jpg")
	dst := filepath.Join(t.TempDir(), "copy.jpg")

	m := manifest.New("app")
	r.NoError(m.SetSidecar(true))
	r.NoError(m.AddAssertion(assertions.NewActions(assertions.ActionPlaced, "")))

	written, err := m.Embed(t.Context(), src, dst, newSigner(t))
	r.NoError(err)
	r.Equal(filepath.Join(filepath.Dir(dst), "copy.c2pa"), written)

	copied, err := os.ReadFile(dst)
	r.NoError(err)
	r.Equal(original, copied)

	sidecar, err := os.ReadFile(written)
	r.NoError(err)
	store, err := manifest.ReadSidecar(sidecar, copied)
	r.NoError(err)
	r.Contains(labels(store), assertions.LabelActions)

	_, err = manifest.ReadSidecar(sidecar, append(copied, 0))
	r.ErrorIs(err, manifest.ErrHashMismatch)
}

func TestLastWriteWins(t *testing.T) {
	r := require.New(t)
	m := manifest.New("app")
	r.NoError(m.AddLabeledAssertion("x", `{"v":1}`))
	r.NoError(m.AddLabeledAssertion("y", map[string]int{"v": 2}))
	r.NoError(m.AddLabeledAssertion("x", []byte(`{"v":3}`)))
	r.Equal(2, m.Len())

	var got []string
	for a := range m.Assertions() {
		got = append(got, a.Label+"="+string(a.Data))
	}
	r.Equal([]string{`x={"v":3}`, `y={"v":2}`}, got)

	r.ErrorIs(m.AddLabeledAssertion(assertions.LabelDataHash, `{}`), manifest.ErrReservedLabel)
	r.ErrorIs(m.AddLabeledAssertion("bad", `{`), assertions.ErrInvalidJSON)
}

func TestEmbedUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))
	_, err := manifest.New("app").Embed(t.Context(), path, path+".out", newSigner(t))
	require.Error(t, err)
}

func TestSidecarPath(t *testing.T) {
	require.Equal(t, "/a/b.c2pa", manifest.SidecarPath("/a/b.jpg"))
	require.Equal(t, "/a/b.c2pa", manifest.SidecarPath("/a/b"))
}
