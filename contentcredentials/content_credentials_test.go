package contentcredentials_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/c2paerr"
	"github.com/guardianproject/simple-c2pa-go/certificates"
	"github.com/guardianproject/simple-c2pa-go/contentcredentials"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/internal/pem"
	"github.com/guardianproject/simple-c2pa-go/signing"
	"github.com/guardianproject/simple-c2pa-go/signing/handler"
)

var app = &contentcredentials.ApplicationInfo{Name: "Test App", Version: "v1.2", IconURI: "https://example.com/icon.png"}

func leafCertificate(t *testing.T) *certificates.Certificate {
	t.Helper()
	root, err := certificates.CreateRootCertificate("", 0)
	require.NoError(t, err)
	leaf, err := certificates.CreateContentCredentialsCertificate(root, "", 0)
	require.NoError(t, err)
	return leaf
}

func ed25519Certificate(t *testing.T) *certificates.Certificate {
	t.Helper()
	root, err := certificates.CreateRootCertificate("", 0)
	require.NoError(t, err)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyPEM, err := pem.EncodePrivateKeyPEM(key)
	require.NoError(t, err)
	leaf, err := certificates.CreateCertificate(certificates.NewCertificateOptions(
		filedata.FromBytes(keyPEM, "ed25519.key"),
		certificates.CertificateType{Kind: certificates.ContentCredentials},
		root, "", "",
	))
	require.NoError(t, err)
	return leaf
}

func writeImage(t *testing.T, name string) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		img.Set(x, 15-x, color.RGBA{G: 200, A: 255})
	}
	var buf bytes.Buffer
	if filepath.Ext(name) == ".png" {
		require.NoError(t, png.Encode(&buf, img))
	} else {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path, buf.Bytes()
}

func readSigned(t *testing.T, f *filedata.FileData) *manifest.Store {
	t.Helper()
	data, err := f.GetBytes()
	require.NoError(t, err)
	store, err := manifest.Read(data)
	require.NoError(t, err)
	return store
}

func decode(t *testing.T, store *manifest.Store, label string) map[string]any {
	t.Helper()
	a, ok := store.Assertion(label)
	require.True(t, ok, "assertion %s missing", label)
	var v map[string]any
	require.NoError(t, a.Decode(&v))
	return v
}

// recordingFactory wraps handler.FromKeys and remembers every algorithm it
// was asked for.
type recordingFactory struct {
	mu    sync.Mutex
	tried []signing.Algorithm
	fail  func(signing.Algorithm) error
}

func (f *recordingFactory) newSigner(certPEM, keyPEM []byte, alg signing.Algorithm) (signing.Signer, error) {
	f.mu.Lock()
	f.tried = append(f.tried, alg)
	f.mu.Unlock()
	if f.fail != nil {
		if err := f.fail(alg); err != nil {
			return nil, err
		}
	}
	return handler.FromKeys(certPEM, keyPEM, alg)
}

func TestEmbedManifest(t *testing.T) {
	for _, name := range []string{"photo.jpg", "photo.png"} {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)
			src, original := writeImage(t, name)

			cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
			r.NoError(err)
			r.NoError(cc.AddCreatedAssertion())
			r.NoError(cc.AddEmailAssertion("jane@example.com", "Jane"))
			r.NoError(cc.AddWebsiteAssertion("https://example.com"))

			dst := filepath.Join(t.TempDir(), "signed-"+name)
			out, err := cc.EmbedManifest(t.Context(), dst)
			r.NoError(err)
			path, err := out.GetPath()
			r.NoError(err)
			r.Equal(dst, path)

			store := readSigned(t, out)
			r.Equal(signing.ES256, store.Signature.Algorithm)
			r.Equal("Test_App/1.2.0 simple-c2pa-go/0.1.0", store.Claim.ClaimGenerator)
			r.Equal(name, store.Claim.Title)

			ingredient, ok := store.Assertion(assertions.LabelIngredient)
			r.True(ok)
			var parent assertions.Ingredient
			r.NoError(ingredient.Decode(&parent))
			r.Equal(digest.FromBytes(original).String(), parent.Digest)
			r.Equal(assertions.RelationshipParentOf, parent.Relationship)

			actions := decode(t, store, assertions.LabelActions)
			list, ok := actions["actions"].([]any)
			r.True(ok)
			r.Len(list, 1)
			r.Equal(assertions.ActionCreated, list[0].(map[string]any)["action"])

			work := decode(t, store, assertions.LabelCreativeWork)
			r.Equal("https://example.com", work["url"], "the website statement replaces the author statement")
		})
	}
}

func TestAuthorAssertions(t *testing.T) {
	tests := []struct {
		name       string
		add        func(cc *contentcredentials.ContentCredentials) error
		identifier string
		id         string
	}{
		{
			name:       "email",
			add:        func(cc *contentcredentials.ContentCredentials) error { return cc.AddEmailAssertion("jane@example.com", "Jane") },
			identifier: "jane@example.com",
			id:         "mailto:jane@example.com",
		},
		{
			name:       "instagram",
			add:        func(cc *contentcredentials.ContentCredentials) error { return cc.AddInstagramAssertion("jane.doe", "Jane") },
			identifier: "jane.doe",
			id:         assertions.InstagramURI,
		},
		{
			name:       "pgp",
			add:        func(cc *contentcredentials.ContentCredentials) error { return cc.AddPGPAssertion("ba08 71e8 ff00", "Jane") },
			identifier: "BA0871E8FF00",
			id:         assertions.PGPURI,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			src, _ := writeImage(t, "photo.jpg")
			cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), nil)
			r.NoError(err)
			r.NoError(tc.add(cc))

			out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
			r.NoError(err)
			work := decode(t, readSigned(t, out), assertions.LabelCreativeWork)
			authors, ok := work["author"].([]any)
			r.True(ok)
			r.Len(authors, 1)
			author := authors[0].(map[string]any)
			r.Equal("Jane", author["name"])
			r.Equal(tc.identifier, author["identifier"])
			r.Equal(tc.id, author["@id"])
			r.Equal("Person", author["@type"])
		})
	}
}

func TestAddJSONAssertion(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
	r.NoError(err)

	r.NoError(cc.AddJSONAssertion("org.example.note", `{"v":1}`))
	r.NoError(cc.AddJSONAssertion("org.example.note", `{"v": 2}`))

	err = cc.AddJSONAssertion("org.example.broken", "{")
	r.True(c2paerr.IsFailure(err))
	r.ErrorIs(err, assertions.ErrInvalidJSON)

	err = cc.AddJSONAssertion(assertions.LabelDataHash, "{}")
	r.True(c2paerr.IsFailure(err))
	r.ErrorIs(err, manifest.ErrReservedLabel)

	out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
	r.NoError(err)
	store := readSigned(t, out)

	var notes int
	for _, a := range store.Assertions {
		if a.Label == "org.example.note" {
			notes++
			r.Equal(`{"v": 2}`, string(a.Data))
		}
	}
	r.Equal(1, notes)
	_, ok := store.Assertion("org.example.broken")
	r.False(ok)
}

func TestAddExifAssertion(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
	r.NoError(err)

	r.NoError(cc.AddExifAssertion(contentcredentials.ExifData{
		Latitude: "39,21.102N",
		Make:     "CameraCo",
	}))
	out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
	r.NoError(err)

	exif := decode(t, readSigned(t, out), assertions.LabelExif)
	r.Len(exif, 3)
	r.Equal("39,21.102N", exif["exif:GPSLatitude"])
	r.Equal("CameraCo", exif["tiff:Make"])
	r.Contains(exif, "@context")
}

func TestAITrainingAssertions(t *testing.T) {
	labels := []string{
		assertions.LabelAITraining,
		assertions.LabelAIGenerativeTraining,
		assertions.LabelDataMining,
		assertions.LabelInference,
	}
	tests := []struct {
		name string
		add  func(cc *contentcredentials.ContentCredentials) error
		want map[string]map[string]any
	}{
		{
			name: "restricted",
			add:  (*contentcredentials.ContentCredentials).AddRestrictedAITrainingAssertions,
			want: map[string]map[string]any{
				assertions.LabelAITraining:           {"use": "notAllowed"},
				assertions.LabelAIGenerativeTraining: {"use": "notAllowed"},
				assertions.LabelDataMining:           {"use": "notAllowed"},
				assertions.LabelInference:            {"use": "notAllowed"},
			},
		},
		{
			name: "permissive",
			add:  (*contentcredentials.ContentCredentials).AddPermissiveAITrainingAssertions,
			want: map[string]map[string]any{
				assertions.LabelAITraining:           {"use": "allowed"},
				assertions.LabelAIGenerativeTraining: {"use": "allowed"},
				assertions.LabelDataMining:           {"use": "allowed"},
				assertions.LabelInference:            {"use": "allowed"},
			},
		},
		{
			name: "custom",
			add: func(cc *contentcredentials.ContentCredentials) error {
				return cc.AddCustomAITrainingAssertions(contentcredentials.CustomAITrainingOptions{
					AITraining:           assertions.NotAllowed,
					AIGenerativeTraining: assertions.Constrained("research only"),
					DataMining:           assertions.Allowed,
					Inference:            assertions.AIDataMiningUsage{Use: assertions.UseAllowed, ConstraintInfo: "dropped"},
				})
			},
			want: map[string]map[string]any{
				assertions.LabelAITraining:           {"use": "notAllowed"},
				assertions.LabelAIGenerativeTraining: {"use": "constrained", "constraintInfo": "research only"},
				assertions.LabelDataMining:           {"use": "allowed"},
				assertions.LabelInference:            {"use": "allowed"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			src, _ := writeImage(t, "photo.png")
			cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
			r.NoError(err)
			r.NoError(tc.add(cc))

			out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.png"))
			r.NoError(err)
			store := readSigned(t, out)
			for _, label := range labels {
				r.Equal(tc.want[label], decode(t, store, label), label)
			}
		})
	}
}

func TestCustomAITrainingRejectsUnknownUse(t *testing.T) {
	src, _ := writeImage(t, "photo.jpg")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
	require.NoError(t, err)

	err = cc.AddCustomAITrainingAssertions(contentcredentials.CustomAITrainingOptions{
		AITraining: assertions.AIDataMiningUsage{Use: "sometimes"},
	})
	assert.True(t, c2paerr.IsFailure(err))
}

func TestAlgorithmFallback(t *testing.T) {
	t.Run("first algorithm succeeds", func(t *testing.T) {
		r := require.New(t)
		src, _ := writeImage(t, "photo.jpg")
		f := &recordingFactory{}
		cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app,
			contentcredentials.WithSignerFactory(f.newSigner))
		r.NoError(err)

		out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
		r.NoError(err)
		r.Equal([]signing.Algorithm{signing.ES256}, f.tried)
		r.Equal(signing.ES256, readSigned(t, out).Signature.Algorithm)
	})

	t.Run("falls through to ed25519", func(t *testing.T) {
		r := require.New(t)
		src, _ := writeImage(t, "photo.jpg")
		f := &recordingFactory{}
		cc, err := contentcredentials.New(ed25519Certificate(t), filedata.FromPath(src), app,
			contentcredentials.WithSignerFactory(f.newSigner))
		r.NoError(err)

		out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
		r.NoError(err)
		r.Equal(signing.SupportedAlgorithms, f.tried)
		r.Equal(signing.Ed25519, readSigned(t, out).Signature.Algorithm)
	})

	t.Run("exhausted", func(t *testing.T) {
		r := require.New(t)
		src, _ := writeImage(t, "photo.jpg")
		boom := errors.New("hardware token unavailable")
		f := &recordingFactory{fail: func(signing.Algorithm) error { return boom }}
		cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app,
			contentcredentials.WithSignerFactory(f.newSigner))
		r.NoError(err)

		dst := filepath.Join(t.TempDir(), "out.jpg")
		_, err = cc.EmbedManifest(t.Context(), dst)
		r.Error(err)
		r.Equal("failed with message: no supported signing algorithm succeeded", err.Error())
		r.True(c2paerr.IsFailure(err))
		r.ErrorIs(err, c2paerr.ErrNoAlgorithmSucceeded)
		r.ErrorIs(err, boom)
		r.Equal(signing.SupportedAlgorithms, f.tried)
		r.NoFileExists(dst)

		// the manifest stays open after a failed attempt
		r.NoError(cc.AddPlacedAssertion())
	})
}

func TestEmbedAfterFailedExport(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	calls := 0
	f := &recordingFactory{fail: func(signing.Algorithm) error {
		calls++
		if calls <= len(signing.SupportedAlgorithms) {
			return errors.New("token locked")
		}
		return nil
	}}
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app,
		contentcredentials.WithSignerFactory(f.newSigner))
	r.NoError(err)

	dir := t.TempDir()
	_, err = cc.ExportManifest(t.Context(), filepath.Join(dir, "exported.jpg"))
	r.ErrorIs(err, c2paerr.ErrNoAlgorithmSucceeded)

	dst := filepath.Join(dir, "embedded.jpg")
	out, err := cc.EmbedManifest(t.Context(), dst)
	r.NoError(err)
	path, err := out.GetPath()
	r.NoError(err)
	r.Equal(dst, path)
	r.NoFileExists(manifest.SidecarPath(dst))
	r.Equal(signing.ES256, readSigned(t, out).Signature.Algorithm)
}

func TestPanicPoisons(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app,
		contentcredentials.WithSignerFactory(func([]byte, []byte, signing.Algorithm) (signing.Signer, error) {
			panic("signer exploded")
		}))
	r.NoError(err)

	r.Panics(func() {
		_, _ = cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
	})

	err = cc.AddCreatedAssertion()
	r.True(c2paerr.IsFailure(err))
	r.ErrorIs(err, c2paerr.ErrPoisoned)

	_, err = cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "again.jpg"))
	r.ErrorIs(err, c2paerr.ErrPoisoned)
}

func TestFinalizedAfterEmbed(t *testing.T) {
	r := require.New(t)
	src, _ := writeImage(t, "photo.jpg")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
	r.NoError(err)

	_, err = cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
	r.NoError(err)

	err = cc.AddCreatedAssertion()
	r.True(c2paerr.IsFailure(err))
	r.ErrorIs(err, c2paerr.ErrFinalized)

	_, err = cc.ExportManifest(t.Context(), filepath.Join(t.TempDir(), "out2.jpg"))
	r.ErrorIs(err, c2paerr.ErrFinalized)
}

func TestEmbedFromBytes(t *testing.T) {
	r := require.New(t)
	_, original := writeImage(t, "photo.jpg")

	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromBytes(original, "memory.jpg"), app)
	r.NoError(err)
	r.NoError(cc.AddPlacedAssertion())

	out, err := cc.EmbedManifest(t.Context(), filepath.Join(t.TempDir(), "out.jpg"))
	r.NoError(err)
	store := readSigned(t, out)
	r.Equal("memory.jpg", store.Claim.Title)
}

func TestExportManifest(t *testing.T) {
	r := require.New(t)
	src, original := writeImage(t, "photo.png")
	cc, err := contentcredentials.New(leafCertificate(t), filedata.FromPath(src), app)
	r.NoError(err)
	r.NoError(cc.AddCreatedAssertion())

	dst := filepath.Join(t.TempDir(), "copy.png")
	sidecar, err := cc.ExportManifest(t.Context(), dst)
	r.NoError(err)
	path, err := sidecar.GetPath()
	r.NoError(err)
	r.Equal(manifest.SidecarPath(dst), path)

	copied, err := os.ReadFile(dst)
	r.NoError(err)
	r.Equal(original, copied)

	storeBytes, err := sidecar.GetBytes()
	r.NoError(err)
	store, err := manifest.ReadSidecar(storeBytes, copied)
	r.NoError(err)
	_, ok := store.Assertion(assertions.LabelActions)
	r.True(ok)

	_, err = manifest.ReadSidecar(storeBytes, append(copied, 0))
	r.ErrorIs(err, manifest.ErrHashMismatch)
}

func TestNew(t *testing.T) {
	src, _ := writeImage(t, "photo.jpg")

	_, err := contentcredentials.New(nil, filedata.FromPath(src), app)
	assert.True(t, c2paerr.IsFailure(err))

	_, err = contentcredentials.New(leafCertificate(t), nil, app)
	assert.ErrorIs(t, err, c2paerr.ErrNoBytesOrPath)

	_, err = contentcredentials.New(leafCertificate(t), filedata.FromPath(filepath.Join(t.TempDir(), "missing.jpg")), app)
	assert.True(t, c2paerr.IsFailure(err))
}

func TestClaimGenerator(t *testing.T) {
	tests := []struct {
		name string
		app  *contentcredentials.ApplicationInfo
		want string
	}{
		{name: "no application", want: "simple-c2pa-go/0.1.0"},
		{name: "semantic version", app: &contentcredentials.ApplicationInfo{Name: "ProofMode", Version: "v2.1"}, want: "ProofMode/2.1.0 simple-c2pa-go/0.1.0"},
		{name: "free form version", app: &contentcredentials.ApplicationInfo{Name: "Camera", Version: "nightly"}, want: "Camera/nightly simple-c2pa-go/0.1.0"},
		{name: "no version", app: &contentcredentials.ApplicationInfo{Name: "My Camera"}, want: "My_Camera simple-c2pa-go/0.1.0"},
	}
	src, _ := writeImage(t, "photo.jpg")
	cert := leafCertificate(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cc, err := contentcredentials.New(cert, filedata.FromPath(src), tc.app)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cc.ClaimGenerator())
		})
	}
}
