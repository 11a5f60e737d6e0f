package multipart

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"

	"github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/internal/pool"
	"github.com/hydrostore/s3check/internal/s3api"
	"github.com/hydrostore/s3check/progress"
	"github.com/hydrostore/s3check/s3types"
)

// Coordinator orchestrates multipart upload sessions against a storage
// service. It holds no session state of its own; the service is the single
// source of truth between initiation and completion or abort.
type Coordinator struct {
	s3Client s3api.S3API
	fs       fs.Filesystem
	log      zerolog.Logger
}

// New creates a Coordinator backed by the given storage client and
// filesystem.
func New(s3Client s3api.S3API, filesystem fs.Filesystem, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		s3Client: s3Client,
		fs:       filesystem,
		log:      log,
	}
}

// Create initiates a new multipart upload session and returns the
// service-assigned upload ID.
func (c *Coordinator) Create(
	ctx context.Context,
	bucket, key string,
	config *s3types.UploadConfig,
) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if config != nil {
		if config.ContentType != "" {
			input.ContentType = aws.String(config.ContentType)
		}
		if config.StorageClass != "" {
			input.StorageClass = awstypes.StorageClass(config.StorageClass)
		}
		if len(config.Metadata) > 0 {
			input.Metadata = config.Metadata
		}
	}

	output, err := c.s3Client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("createMultipartUpload", bucket, key, err)
	}

	uploadID := aws.ToString(output.UploadId)
	c.log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("upload_id", uploadID).
		Msg("multipart upload created")

	return uploadID, nil
}

// UploadPart uploads one part's byte payload and returns the ETag the
// service assigned to it. No local state is mutated; a failure leaves the
// session exactly as it was, and the caller decides whether to retry the
// part or abort.
func (c *Coordinator) UploadPart(
	ctx context.Context,
	bucket, key, uploadID string,
	partNumber int32,
	body []byte,
) (string, error) {
	input := &s3.UploadPartInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(body),
	}

	output, err := c.s3Client.UploadPart(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("uploadPart", bucket, key, err)
	}

	etag := aws.ToString(output.ETag)
	c.log.Debug().
		Str("upload_id", uploadID).
		Int32("part_number", partNumber).
		Int("part_len", len(body)).
		Str("etag", etag).
		Msg("part uploaded")

	return etag, nil
}

// UploadPartCopy uploads one part whose payload is an existing object,
// referenced server-side by copySource ("bucket/key"), and returns the
// part's ETag.
func (c *Coordinator) UploadPartCopy(
	ctx context.Context,
	copySource, bucket, key, uploadID string,
	partNumber int32,
) (string, error) {
	input := &s3.UploadPartCopyInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		CopySource: aws.String(copySource),
	}

	output, err := c.s3Client.UploadPartCopy(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("uploadPartCopy", bucket, key, err)
	}

	var etag string
	if output.CopyPartResult != nil {
		etag = aws.ToString(output.CopyPartResult.ETag)
	}
	c.log.Debug().
		Str("upload_id", uploadID).
		Int32("part_number", partNumber).
		Str("copy_source", copySource).
		Str("etag", etag).
		Msg("part copied")

	return etag, nil
}

// ListParts queries the parts the service has recorded for a session,
// following pagination, in ascending part-number order.
func (c *Coordinator) ListParts(
	ctx context.Context,
	bucket, key, uploadID string,
) ([]s3types.Part, error) {
	var parts []s3types.Part
	var marker *string

	for {
		output, err := c.s3Client.ListParts(ctx, &s3.ListPartsInput{
			Bucket:           aws.String(bucket),
			Key:              aws.String(key),
			UploadId:         aws.String(uploadID),
			PartNumberMarker: marker,
		})
		if err != nil {
			return nil, errors.NewObjectError("listParts", bucket, key, err)
		}

		for _, p := range output.Parts {
			parts = append(parts, s3types.Part{
				Number:       aws.ToInt32(p.PartNumber),
				ETag:         aws.ToString(p.ETag),
				Size:         aws.ToInt64(p.Size),
				LastModified: aws.ToTime(p.LastModified),
			})
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		marker = output.NextPartNumberMarker
	}

	return parts, nil
}

// UploadParts splits the file at path into chunks of fileSize/totalParts
// bytes (rounded down) and uploads them sequentially, starting at part
// number 1, until end of file. When the chunk size does not divide the
// file evenly the remainder is uploaded as one final short part, so the
// result may hold one part more than requested. Degenerate sizes yield
// fewer parts: a chunk size of zero (fileSize < totalParts) produces no
// parts at all. The returned sequence is ascending by part number and is
// exactly what Complete requires.
func (c *Coordinator) UploadParts(
	ctx context.Context,
	bucket, key, uploadID, path string,
	totalParts int,
	tracker s3types.ProgressTracker,
) ([]s3types.Part, error) {
	exists, err := c.fs.Exists(path)
	if err != nil {
		return nil, errors.NewObjectError("uploadParts", bucket, key, err).
			WithMessage("stat source file")
	}
	if !exists {
		return nil, errors.NewObjectError("uploadParts", bucket, key, errors.ErrFileNotExists).
			WithMessage(path)
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, errors.NewObjectError("uploadParts", bucket, key, err)
	}
	fileSize := info.Size()
	partSize := fileSize / int64(totalParts)

	parts := []s3types.Part{}
	if partSize == 0 {
		// Nothing a read loop could produce: every chunk would be empty.
		return parts, nil
	}

	file, err := c.fs.Open(path)
	if err != nil {
		return nil, errors.NewObjectError("uploadParts", bucket, key, err)
	}
	defer file.Close()

	buf := pool.Get(int(partSize))
	defer pool.Put(buf)

	var uploadedBytes int64
	for partNumber := int32(1); ; partNumber++ {
		n, readErr := io.ReadFull(file, buf)
		if n > 0 {
			etag, upErr := c.UploadPart(ctx, bucket, key, uploadID, partNumber, buf[:n])
			if upErr != nil {
				if tracker != nil {
					tracker.Error(upErr)
				}
				return nil, upErr
			}
			parts = append(parts, s3types.Part{Number: partNumber, ETag: etag, Size: int64(n)})

			uploadedBytes += int64(n)
			if tracker != nil {
				tracker.Update(uploadedBytes, fileSize)
			}
			c.log.Debug().
				Str("upload_id", uploadID).
				Int64("uploaded", uploadedBytes).
				Int64("total", fileSize).
				Float64("percent", progress.Percent(uploadedBytes, fileSize)).
				Msg("upload progress")
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			if tracker != nil {
				tracker.Error(readErr)
			}
			return nil, errors.NewObjectError("uploadParts", bucket, key, readErr)
		}
	}

	if tracker != nil {
		tracker.Complete()
	}

	return parts, nil
}

// Complete submits the ordered part list to finalize the object. The
// sequence must be exactly the parts the service accepted, ascending by
// part number; the service rejects gaps, reordering, and mismatched ETags.
func (c *Coordinator) Complete(
	ctx context.Context,
	bucket, key, uploadID string,
	parts []s3types.Part,
) (*s3types.CompletedUpload, error) {
	completed := make([]awstypes.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, awstypes.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.Number),
		})
	}

	output, err := c.s3Client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return nil, errors.NewObjectError("completeMultipartUpload", bucket, key, err)
	}

	result := &s3types.CompletedUpload{
		Bucket:    aws.ToString(output.Bucket),
		Key:       aws.ToString(output.Key),
		ETag:      aws.ToString(output.ETag),
		Location:  aws.ToString(output.Location),
		VersionID: aws.ToString(output.VersionId),
	}
	c.log.Debug().
		Str("upload_id", uploadID).
		Str("etag", result.ETag).
		Int("parts", len(parts)).
		Msg("multipart upload completed")

	return result, nil
}

// Abort releases all uploaded-but-uncommitted parts for a session. The
// service's answer is surfaced unchanged: aborting a completed or unknown
// session is an error, not a no-op.
func (c *Coordinator) Abort(ctx context.Context, bucket, key, uploadID string) error {
	_, err := c.s3Client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return errors.NewObjectError("abortMultipartUpload", bucket, key, err)
	}

	c.log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("upload_id", uploadID).
		Msg("multipart upload aborted")

	return nil
}

// ListUploads enumerates all in-flight multipart upload sessions for a
// bucket, following pagination.
func (c *Coordinator) ListUploads(ctx context.Context, bucket string) ([]s3types.UploadInfo, error) {
	var uploads []s3types.UploadInfo
	var keyMarker, idMarker *string

	for {
		output, err := c.s3Client.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
			Bucket:         aws.String(bucket),
			KeyMarker:      keyMarker,
			UploadIdMarker: idMarker,
		})
		if err != nil {
			return nil, errors.NewBucketError("listMultipartUploads", bucket, err)
		}

		for _, u := range output.Uploads {
			uploads = append(uploads, s3types.UploadInfo{
				Key:          aws.ToString(u.Key),
				UploadID:     aws.ToString(u.UploadId),
				Initiated:    aws.ToTime(u.Initiated),
				StorageClass: string(u.StorageClass),
			})
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		keyMarker = output.NextKeyMarker
		idMarker = output.NextUploadIdMarker
	}

	return uploads, nil
}
