package multipart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/internal/testutil"
	"github.com/hydrostore/s3check/progress"
	"github.com/hydrostore/s3check/s3types"
)

const mib = 1024 * 1024

func newTestCoordinator(mock *testutil.MockS3Client) (*Coordinator, *billy.FS) {
	memFS := billy.NewInMemoryFS()
	return New(mock, memFS, zerolog.Nop()), memFS
}

func TestCoordinator_Create(t *testing.T) {
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			assert.Equal(t, "test-bucket", aws.ToString(input.Bucket))
			assert.Equal(t, "data/large.bin", aws.ToString(input.Key))
			assert.Equal(t, "application/octet-stream", aws.ToString(input.ContentType))
			assert.Equal(t, "it", input.Metadata["origin"])
			assert.Equal(t, awstypes.StorageClass("STANDARD"), input.StorageClass)
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("mpu-1")}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	uploadID, err := c.Create(context.Background(), "test-bucket", "data/large.bin", &s3types.UploadConfig{
		ContentType:  "application/octet-stream",
		Metadata:     map[string]string{"origin": "it"},
		StorageClass: s3types.StorageClassStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, "mpu-1", uploadID)
}

func TestCoordinator_Create_RequestFailure(t *testing.T) {
	mock := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(ctx context.Context, input *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	c, _ := newTestCoordinator(mock)

	_, err := c.Create(context.Background(), "test-bucket", "key", nil)
	require.Error(t, err)
	assert.True(t, serrors.IsRequestFailure(err))
	assert.Contains(t, err.Error(), "access denied")
}

func TestCoordinator_UploadParts_PartSizing(t *testing.T) {
	tests := []struct {
		name       string
		fileSize   int64
		totalParts int
		wantSizes  []int64
	}{
		{
			// 10 MiB splits evenly four ways.
			name:       "even split",
			fileSize:   10 * mib,
			totalParts: 4,
			wantSizes:  []int64{2560 * 1024, 2560 * 1024, 2560 * 1024, 2560 * 1024},
		},
		{
			// Floor division leaves a remainder, uploaded as one extra part.
			name:       "remainder becomes extra part",
			fileSize:   10,
			totalParts: 3,
			wantSizes:  []int64{3, 3, 3, 1},
		},
		{
			name:       "single part",
			fileSize:   7,
			totalParts: 1,
			wantSizes:  []int64{7},
		},
		{
			name:       "exact multiple",
			fileSize:   9,
			totalParts: 3,
			wantSizes:  []int64{3, 3, 3},
		},
		{
			name:       "empty file",
			fileSize:   0,
			totalParts: 4,
			wantSizes:  []int64{},
		},
		{
			// fileSize < totalParts gives a zero chunk size; no part can
			// be produced.
			name:       "more parts than bytes",
			fileSize:   3,
			totalParts: 10,
			wantSizes:  []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSizes []int64
			var gotNumbers []int32
			mock := &testutil.MockS3Client{
				UploadPartFunc: func(ctx context.Context, input *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
					body, err := io.ReadAll(input.Body)
					require.NoError(t, err)
					gotSizes = append(gotSizes, int64(len(body)))
					gotNumbers = append(gotNumbers, aws.ToInt32(input.PartNumber))
					return &s3.UploadPartOutput{
						ETag: aws.String(fmt.Sprintf("etag-%d", aws.ToInt32(input.PartNumber))),
					}, nil
				},
			}
			c, memFS := newTestCoordinator(mock)

			content := make([]byte, tt.fileSize)
			for i := range content {
				content[i] = byte(i % 251)
			}
			require.NoError(t, memFS.WriteFile("/src.bin", content, 0o644))

			tracker := progress.NewCounter(tt.fileSize)
			parts, err := c.UploadParts(context.Background(), "test-bucket", "obj", "mpu-1", "/src.bin", tt.totalParts, tracker)
			require.NoError(t, err)

			if len(tt.wantSizes) == 0 {
				assert.Empty(t, gotSizes)
				assert.Empty(t, parts)
				return
			}
			assert.Equal(t, tt.wantSizes, gotSizes, "uploaded chunk sizes")

			// Part numbers start at 1, ascend without gaps, and the
			// byte lengths sum to the file size.
			var total int64
			for i, p := range parts {
				assert.Equal(t, int32(i+1), p.Number)
				assert.Equal(t, fmt.Sprintf("etag-%d", i+1), p.ETag)
				total += p.Size
			}
			assert.Equal(t, gotNumbers[len(gotNumbers)-1], parts[len(parts)-1].Number)
			assert.Equal(t, tt.fileSize, total)

			assert.Equal(t, tt.fileSize, tracker.Transferred())
			assert.True(t, tracker.Done())
			assert.InDelta(t, 100.0, tracker.Percent(), 1e-9)
		})
	}
}

func TestCoordinator_UploadParts_FileMissing(t *testing.T) {
	remoteCalls := 0
	mock := &testutil.MockS3Client{
		UploadPartFunc: func(ctx context.Context, input *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			remoteCalls++
			return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	_, err := c.UploadParts(context.Background(), "test-bucket", "obj", "mpu-1", "/nope.bin", 4, nil)
	require.Error(t, err)
	assert.True(t, serrors.IsFileNotExists(err))
	assert.Zero(t, remoteCalls, "a missing file must fail before any remote call")
}

func TestCoordinator_UploadParts_PartFailurePropagates(t *testing.T) {
	uploadErr := errors.New("connection reset by peer")
	mock := &testutil.MockS3Client{
		UploadPartFunc: func(ctx context.Context, input *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			if aws.ToInt32(input.PartNumber) == 2 {
				return nil, uploadErr
			}
			return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
		},
	}
	c, memFS := newTestCoordinator(mock)
	require.NoError(t, memFS.WriteFile("/src.bin", make([]byte, 100), 0o644))

	tracker := progress.NewCounter(100)
	parts, err := c.UploadParts(context.Background(), "test-bucket", "obj", "mpu-1", "/src.bin", 4, tracker)
	require.Error(t, err)
	assert.Nil(t, parts)
	assert.ErrorIs(t, err, uploadErr)
	assert.ErrorIs(t, tracker.Err(), uploadErr)
	assert.False(t, tracker.Done())
}

func TestCoordinator_UploadPart(t *testing.T) {
	mock := &testutil.MockS3Client{
		UploadPartFunc: func(ctx context.Context, input *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			assert.Equal(t, "mpu-1", aws.ToString(input.UploadId))
			assert.Equal(t, int32(3), aws.ToInt32(input.PartNumber))
			body, err := io.ReadAll(input.Body)
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), body)
			return &s3.UploadPartOutput{ETag: aws.String("part-etag")}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	etag, err := c.UploadPart(context.Background(), "test-bucket", "obj", "mpu-1", 3, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "part-etag", etag)
}

func TestCoordinator_UploadPartCopy(t *testing.T) {
	mock := &testutil.MockS3Client{
		UploadPartCopyFunc: func(ctx context.Context, input *s3.UploadPartCopyInput, opts ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
			assert.Equal(t, "src-bucket/base.bin", aws.ToString(input.CopySource))
			assert.Equal(t, int32(1), aws.ToInt32(input.PartNumber))
			return &s3.UploadPartCopyOutput{
				CopyPartResult: &awstypes.CopyPartResult{ETag: aws.String("copy-etag")},
			}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	etag, err := c.UploadPartCopy(context.Background(), "src-bucket/base.bin", "test-bucket", "obj", "mpu-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "copy-etag", etag)
}

func TestCoordinator_ListParts_Paginates(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListPartsFunc: func(ctx context.Context, input *s3.ListPartsInput, opts ...func(*s3.Options)) (*s3.ListPartsOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, input.PartNumberMarker)
				return &s3.ListPartsOutput{
					Parts: []awstypes.Part{
						{PartNumber: aws.Int32(1), ETag: aws.String("e1"), Size: aws.Int64(5)},
						{PartNumber: aws.Int32(2), ETag: aws.String("e2"), Size: aws.Int64(5)},
					},
					IsTruncated:          aws.Bool(true),
					NextPartNumberMarker: aws.String("2"),
				}, nil
			}
			assert.Equal(t, "2", aws.ToString(input.PartNumberMarker))
			return &s3.ListPartsOutput{
				Parts: []awstypes.Part{
					{PartNumber: aws.Int32(3), ETag: aws.String("e3"), Size: aws.Int64(2)},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	parts, err := c.ListParts(context.Background(), "test-bucket", "obj", "mpu-1")
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, int32(1), parts[0].Number)
	assert.Equal(t, int32(3), parts[2].Number)
	assert.Equal(t, 2, calls)
}

func TestCoordinator_Complete(t *testing.T) {
	mock := &testutil.MockS3Client{
		CompleteMultipartUploadFunc: func(ctx context.Context, input *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			require.NotNil(t, input.MultipartUpload)
			require.Len(t, input.MultipartUpload.Parts, 2)
			assert.Equal(t, int32(1), aws.ToInt32(input.MultipartUpload.Parts[0].PartNumber))
			assert.Equal(t, "e1", aws.ToString(input.MultipartUpload.Parts[0].ETag))
			assert.Equal(t, int32(2), aws.ToInt32(input.MultipartUpload.Parts[1].PartNumber))
			return &s3.CompleteMultipartUploadOutput{
				Bucket:   aws.String("test-bucket"),
				Key:      aws.String("obj"),
				ETag:     aws.String("final-etag"),
				Location: aws.String("test-bucket/obj"),
			}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	result, err := c.Complete(context.Background(), "test-bucket", "obj", "mpu-1", []s3types.Part{
		{Number: 1, ETag: "e1"},
		{Number: 2, ETag: "e2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "final-etag", result.ETag)
	assert.Equal(t, "test-bucket/obj", result.Location)
}

func TestCoordinator_Abort_ErrorSurfaced(t *testing.T) {
	mock := &testutil.MockS3Client{
		AbortMultipartUploadFunc: func(ctx context.Context, input *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			return nil, errors.New("NoSuchUpload")
		},
	}
	c, _ := newTestCoordinator(mock)

	err := c.Abort(context.Background(), "test-bucket", "obj", "mpu-gone")
	require.Error(t, err)
	assert.True(t, serrors.IsRequestFailure(err))
}

func TestCoordinator_ListUploads_Paginates(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListMultipartUploadsFunc: func(ctx context.Context, input *s3.ListMultipartUploadsInput, opts ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error) {
			calls++
			if calls == 1 {
				return &s3.ListMultipartUploadsOutput{
					Uploads: []awstypes.MultipartUpload{
						{Key: aws.String("a.bin"), UploadId: aws.String("mpu-a")},
					},
					IsTruncated:        aws.Bool(true),
					NextKeyMarker:      aws.String("a.bin"),
					NextUploadIdMarker: aws.String("mpu-a"),
				}, nil
			}
			assert.Equal(t, "a.bin", aws.ToString(input.KeyMarker))
			assert.Equal(t, "mpu-a", aws.ToString(input.UploadIdMarker))
			return &s3.ListMultipartUploadsOutput{
				Uploads: []awstypes.MultipartUpload{
					{Key: aws.String("b.bin"), UploadId: aws.String("mpu-b")},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	c, _ := newTestCoordinator(mock)

	uploads, err := c.ListUploads(context.Background(), "test-bucket")
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "mpu-a", uploads[0].UploadID)
	assert.Equal(t, "mpu-b", uploads[1].UploadID)
}
