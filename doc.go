// Package s3check provides test-support utilities for validating
// S3-compatible object storage.
//
// The core is a multipart upload coordinator that drives the
// create/upload-part/complete/abort lifecycle of one upload session,
// including splitting a local file into parts and tracking progress.
// It performs no local retry and swallows no errors: every storage
// failure propagates unchanged so the validating caller sees exactly
// what the service did.
//
// The companion runner package wraps long-running upload workloads in a
// background goroutine and triggers data integrity verification once the
// workload is joined.
//
// Example usage:
//
//	client, err := s3check.New(s3check.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//
//	uploadID, err := client.CreateMultipartUpload(ctx, "test-bucket", "large.bin")
//	if err != nil {
//	    return err
//	}
//
//	parts, err := client.UploadParts(ctx, "test-bucket", "large.bin", uploadID, "/data/large.bin", 8)
//	if err != nil {
//	    _ = client.AbortMultipartUpload(ctx, "test-bucket", "large.bin", uploadID)
//	    return err
//	}
//
//	_, err = client.CompleteMultipartUpload(ctx, "test-bucket", "large.bin", uploadID, parts)
package s3check
