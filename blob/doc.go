// Package blob provides the small set of interfaces used to move media and
// key material around without caring where the bytes live.
//
//   - ReadOnlyBlob: anything that can hand out a fresh reader over its content.
//   - SizeAware: anything that knows its size in bytes.
//   - DigestAware: anything that can report an open-container digest of its content.
//   - MediaTypeAware: anything that knows (or can detect) its media type.
//
// Copy moves a ReadOnlyBlob into an io.Writer and verifies the digest on the
// way if the source reports one. Filesystem-backed blobs live in the
// filesystem sub-package.
package blob
