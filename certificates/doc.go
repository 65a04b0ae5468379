// Package certificates builds the X.509 hierarchy used to sign content
// credentials: a root (online or offline), an optional intermediate and the
// non-CA content credentials leaf whose key signs the manifest.
//
// Keys are always fresh P-256 keys. A certificate created with a parent is
// issued under the parent's subject and signed with the parent's private key;
// without a parent it is self-signed. All signatures use SHA-512.
//
//	root, err := certificates.CreateRootCertificate("", 0)
//	leaf, err := certificates.CreateContentCredentialsCertificate(root, "", 0)
package certificates
