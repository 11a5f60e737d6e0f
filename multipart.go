package s3check

import (
	"context"

	"github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/internal/validation"
	"github.com/hydrostore/s3check/progress"
	"github.com/hydrostore/s3check/s3types"
)

// CreateMultipartUpload initiates a multipart upload session and returns
// the service-assigned upload ID. The session exists until it is completed
// or aborted.
func (c *Client) CreateMultipartUpload(
	ctx context.Context,
	bucket, key string,
	opts ...s3types.UploadOption,
) (string, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return "", err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", err
	}

	config := &s3types.UploadConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return c.coordinator.Create(ctx, bucket, key, config)
}

// UploadPart uploads one part's byte payload to an open session and
// returns the ETag the service assigned. Part numbers are 1-based and must
// be unique within the session. Failures propagate unchanged; the caller
// decides whether to retry the part or abort the session.
func (c *Client) UploadPart(
	ctx context.Context,
	bucket, key, uploadID string,
	partNumber int32,
	body []byte,
) (string, error) {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return "", err
	}
	if err := validation.ValidatePartNumber(partNumber); err != nil {
		return "", err
	}

	return c.coordinator.UploadPart(ctx, bucket, key, uploadID, partNumber, body)
}

// UploadPartCopy uploads one part whose payload is an existing object,
// referenced server-side by copySource ("sourceBucket/sourceKey").
func (c *Client) UploadPartCopy(
	ctx context.Context,
	copySource, bucket, key, uploadID string,
	partNumber int32,
) (string, error) {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return "", err
	}
	if err := validation.ValidatePartNumber(partNumber); err != nil {
		return "", err
	}
	if copySource == "" {
		return "", errors.NewObjectError("uploadPartCopy", bucket, key, errors.ErrInvalidInput).
			WithMessage("copy source cannot be empty")
	}

	return c.coordinator.UploadPartCopy(ctx, copySource, bucket, key, uploadID, partNumber)
}

// ListParts queries the parts the service has recorded for a session, in
// ascending part-number order. Intended for reconciliation and debugging.
func (c *Client) ListParts(
	ctx context.Context,
	bucket, key, uploadID string,
) ([]s3types.Part, error) {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return nil, err
	}

	return c.coordinator.ListParts(ctx, bucket, key, uploadID)
}

// UploadParts splits the file at path into totalParts chunks and uploads
// them sequentially in ascending part-number order, reporting progress
// after each part. The returned sequence is exactly what
// CompleteMultipartUpload requires. See the degenerate-size rules on the
// coordinator: short files produce fewer (possibly zero) parts, and a
// division remainder becomes one extra final part.
//
// The file handle is held only for the duration of the call. A missing
// file fails with ErrFileNotExists before any remote call.
func (c *Client) UploadParts(
	ctx context.Context,
	bucket, key, uploadID, path string,
	totalParts int,
	opts ...s3types.UploadOption,
) ([]s3types.Part, error) {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return nil, err
	}
	if totalParts < 1 {
		return nil, errors.NewObjectError("uploadParts", bucket, key, errors.ErrInvalidInput).
			WithMessage("totalParts must be at least 1")
	}

	config := &s3types.UploadConfig{}
	for _, opt := range opts {
		opt(config)
	}
	tracker := config.ProgressTracker
	if tracker == nil {
		tracker = progress.NewLogTracker(c.log)
	}

	return c.coordinator.UploadParts(ctx, bucket, key, uploadID, path, totalParts, tracker)
}

// CompleteMultipartUpload finalizes a session from the ordered part list.
// The list must be the exact parts the service accepted, ascending by part
// number; gaps, reordering, or mismatched ETags are rejected server-side.
func (c *Client) CompleteMultipartUpload(
	ctx context.Context,
	bucket, key, uploadID string,
	parts []s3types.Part,
) (*s3types.CompletedUpload, error) {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, errors.NewObjectError("completeMultipartUpload", bucket, key, errors.ErrInvalidInput).
			WithMessage("part list cannot be empty")
	}

	return c.coordinator.Complete(ctx, bucket, key, uploadID, parts)
}

// AbortMultipartUpload releases all uploaded-but-uncommitted parts for a
// session. Aborting a completed or unknown session is a service-side error
// and is surfaced, not swallowed.
func (c *Client) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	if err := c.validateSessionArgs(bucket, key, uploadID); err != nil {
		return err
	}

	return c.coordinator.Abort(ctx, bucket, key, uploadID)
}

// ListMultipartUploads enumerates all in-flight sessions for a bucket.
// Used for cleanup and audit after failed runs.
func (c *Client) ListMultipartUploads(ctx context.Context, bucket string) ([]s3types.UploadInfo, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	return c.coordinator.ListUploads(ctx, bucket)
}

func (c *Client) validateSessionArgs(bucket, key, uploadID string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}
	return validation.ValidateUploadID(uploadID)
}
