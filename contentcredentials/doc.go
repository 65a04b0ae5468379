// Package contentcredentials binds a content credentials certificate to a
// media file and produces a signed C2PA manifest for it.
//
// A ContentCredentials value owns one manifest. Assertions are added through
// its Add methods; EmbedManifest or ExportManifest then sign the manifest,
// trying every algorithm of signing.SupportedAlgorithms in order until one
// works with the certificate's key. A manifest can be signed once.
//
//	root, _ := certificates.CreateRootCertificate("", 0)
//	leaf, _ := certificates.CreateContentCredentialsCertificate(root, "", 0)
//	cc, _ := contentcredentials.New(leaf, filedata.FromPath("photo.jpg"), nil)
//	_ = cc.AddCreatedAssertion()
//	signed, _ := cc.EmbedManifest(ctx, "photo-signed.jpg")
package contentcredentials
