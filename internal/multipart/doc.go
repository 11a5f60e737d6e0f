// Package multipart drives the create/upload-part/complete/abort lifecycle
// of one S3 multipart upload session.
//
// The coordinator is synchronous: parts are read and uploaded one at a
// time, in ascending part-number order, on the caller's goroutine. It
// performs no local retry; every storage failure propagates unchanged so
// the caller can decide whether to retry a part or abort the session.
package multipart
