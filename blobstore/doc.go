// Package blobstore provides storage for measurement traces and the
// estimates produced by replaying them.
//
// BlobStore is the interface the replay runner reads traces from and writes
// estimates to. Blobs are read sequentially and written whole: a
// WritableBlob becomes visible only when Close succeeds, and Abort drops it,
// so a failed replay never leaves a truncated estimate file behind.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through read-only mmap
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Remote backends stream writes through NewStreamingBlob, which pipes the
// writer into the backend's upload call.
package blobstore
