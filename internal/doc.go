// Package internal contains private implementation details for the s3check
// module. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - multipart: multipart upload session coordination
//   - s3api: the narrow storage service interface the coordinator consumes
//   - validation: input validation logic
//   - pool: reusable buffers for part reads
//   - testutil: mock client and in-memory fake service for tests
package internal
