// Package filesystem provides blobs that are backed by files on the operating
// system's filesystem.
//
// The main interaction points are:
//   - GetBlobFromOSPath
//   - CopyBlobToOSPath
package filesystem
