package s3check

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/s3types"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// UploadFileMultipart drives a whole session in one call: it initiates an
// upload, splits the file at path into totalParts chunks, uploads them in
// order, and completes the object. On any failure after initiation it
// aborts the session before returning the original error, so no
// uploaded-but-uncommitted parts are leaked.
//
// The content type is detected from the file unless WithContentType
// overrides it.
func (c *Client) UploadFileMultipart(
	ctx context.Context,
	bucket, key, path string,
	totalParts int,
	opts ...s3types.UploadOption,
) (*s3types.CompletedUpload, error) {
	config := &s3types.UploadConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ContentType == "" {
		opts = append(opts, WithContentType(c.detectContentType(path)))
	}

	uploadID, err := c.CreateMultipartUpload(ctx, bucket, key, opts...)
	if err != nil {
		return nil, err
	}

	parts, err := c.UploadParts(ctx, bucket, key, uploadID, path, totalParts, opts...)
	if err != nil {
		c.abortQuietly(ctx, bucket, key, uploadID)
		return nil, err
	}
	if len(parts) == 0 {
		// The service cannot assemble an object from zero parts.
		c.abortQuietly(ctx, bucket, key, uploadID)
		return nil, errors.NewObjectError("uploadFileMultipart", bucket, key, errors.ErrInvalidInput).
			WithMessage("file produced no parts; choose a totalParts no larger than the file size")
	}

	completed, err := c.CompleteMultipartUpload(ctx, bucket, key, uploadID, parts)
	if err != nil {
		c.abortQuietly(ctx, bucket, key, uploadID)
		return nil, err
	}

	return completed, nil
}

// abortQuietly releases a session during failure cleanup. The primary
// error is what the caller needs; an abort failure here is only logged.
func (c *Client) abortQuietly(ctx context.Context, bucket, key, uploadID string) {
	if err := c.coordinator.Abort(ctx, bucket, key, uploadID); err != nil {
		c.log.Warn().
			Err(err).
			Str("bucket", bucket).
			Str("key", key).
			Str("upload_id", uploadID).
			Msg("failed to abort multipart upload during cleanup")
	}
}

// detectContentType sniffs the file's content type, falling back to the
// extension and then to DefaultContentType.
func (c *Client) detectContentType(path string) string {
	file, err := c.fs.Open(path)
	if err == nil {
		defer file.Close()
		if mtype, mErr := mimetype.DetectReader(file); mErr == nil {
			return mtype.String()
		}
	}

	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return DefaultContentType
}
