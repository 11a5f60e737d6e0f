package testutil

import (
	"context"
	"crypto/md5" //nolint:gosec // S3 part ETags are MD5 by definition
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/hydrostore/s3check/internal/s3api"
)

// FakeBackend is an in-memory S3 multipart state machine for tests that
// need a conforming service rather than canned responses. It enforces the
// session lifecycle: parts can only be uploaded to a live session, a
// session completes into an assembled object exactly once, and abort on a
// completed or unknown session is an error.
type FakeBackend struct {
	mu      sync.Mutex
	uploads map[string]*fakeUpload
	objects map[string][]byte
}

type fakePart struct {
	body []byte
	etag string
}

type fakeUpload struct {
	bucket    string
	key       string
	parts     map[int32]fakePart
	initiated time.Time
	completed bool
	aborted   bool
}

// NewFakeBackend creates an empty fake service.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		uploads: make(map[string]*fakeUpload),
		objects: make(map[string][]byte),
	}
}

// SeedObject stores an object directly, bypassing the upload lifecycle.
// Useful for preparing UploadPartCopy sources.
func (f *FakeBackend) SeedObject(bucket, key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = append([]byte(nil), body...)
}

// Object returns the assembled content of a stored object.
func (f *FakeBackend) Object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[bucket+"/"+key]
	return body, ok
}

// CreateMultipartUpload starts a new session and returns its upload ID.
func (f *FakeBackend) CreateMultipartUpload(
	_ context.Context,
	params *s3.CreateMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uploadID := uuid.NewString()
	f.uploads[uploadID] = &fakeUpload{
		bucket:    aws.ToString(params.Bucket),
		key:       aws.ToString(params.Key),
		parts:     make(map[int32]fakePart),
		initiated: time.Now(),
	}

	return &s3.CreateMultipartUploadOutput{
		Bucket:   params.Bucket,
		Key:      params.Key,
		UploadId: aws.String(uploadID),
	}, nil
}

// UploadPart records one part for a live session.
func (f *FakeBackend) UploadPart(
	_ context.Context,
	params *s3.UploadPartInput,
	_ ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("read part body: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	upload, err := f.liveUpload(aws.ToString(params.UploadId))
	if err != nil {
		return nil, err
	}

	partNumber := aws.ToInt32(params.PartNumber)
	if partNumber < 1 {
		return nil, apiError("InvalidArgument", "part number must be a positive integer")
	}

	etag := contentETag(body)
	upload.parts[partNumber] = fakePart{body: body, etag: etag}

	return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
}

// UploadPartCopy records one part whose payload is a previously stored object.
func (f *FakeBackend) UploadPartCopy(
	_ context.Context,
	params *s3.UploadPartCopyInput,
	_ ...func(*s3.Options),
) (*s3.UploadPartCopyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	upload, err := f.liveUpload(aws.ToString(params.UploadId))
	if err != nil {
		return nil, err
	}

	source := strings.TrimPrefix(aws.ToString(params.CopySource), "/")
	body, ok := f.objects[source]
	if !ok {
		return nil, apiError("NoSuchKey", "copy source does not exist: "+source)
	}

	partNumber := aws.ToInt32(params.PartNumber)
	if partNumber < 1 {
		return nil, apiError("InvalidArgument", "part number must be a positive integer")
	}

	etag := contentETag(body)
	upload.parts[partNumber] = fakePart{body: append([]byte(nil), body...), etag: etag}

	return &s3.UploadPartCopyOutput{
		CopyPartResult: &awstypes.CopyPartResult{ETag: aws.String(etag)},
	}, nil
}

// ListParts reports the recorded parts of a session in ascending order.
func (f *FakeBackend) ListParts(
	_ context.Context,
	params *s3.ListPartsInput,
	_ ...func(*s3.Options),
) (*s3.ListPartsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	upload, err := f.liveUpload(aws.ToString(params.UploadId))
	if err != nil {
		return nil, err
	}

	numbers := make([]int32, 0, len(upload.parts))
	for n := range upload.parts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	parts := make([]awstypes.Part, 0, len(numbers))
	for _, n := range numbers {
		p := upload.parts[n]
		parts = append(parts, awstypes.Part{
			PartNumber: aws.Int32(n),
			ETag:       aws.String(p.etag),
			Size:       aws.Int64(int64(len(p.body))),
		})
	}

	return &s3.ListPartsOutput{Parts: parts, IsTruncated: aws.Bool(false)}, nil
}

// CompleteMultipartUpload validates the submitted part list against the
// recorded parts and assembles the object. The list must name every
// recorded part, in strictly ascending part-number order, with matching
// ETags.
func (f *FakeBackend) CompleteMultipartUpload(
	_ context.Context,
	params *s3.CompleteMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	upload, err := f.liveUpload(aws.ToString(params.UploadId))
	if err != nil {
		return nil, err
	}

	if params.MultipartUpload == nil || len(params.MultipartUpload.Parts) == 0 {
		return nil, apiError("InvalidRequest", "part list must not be empty")
	}

	submitted := params.MultipartUpload.Parts
	if len(submitted) != len(upload.parts) {
		return nil, apiError("InvalidPart", "part list does not match uploaded parts")
	}

	var assembled []byte
	etagSum := md5.New() //nolint:gosec // multipart object ETags are MD5-of-MD5s
	previous := int32(0)
	for _, p := range submitted {
		number := aws.ToInt32(p.PartNumber)
		if number <= previous {
			return nil, apiError("InvalidPartOrder", "parts must be in ascending part number order")
		}
		previous = number

		recorded, ok := upload.parts[number]
		if !ok || recorded.etag != aws.ToString(p.ETag) {
			return nil, apiError("InvalidPart", fmt.Sprintf("part %d was not uploaded or its etag does not match", number))
		}

		assembled = append(assembled, recorded.body...)
		sum, _ := hex.DecodeString(recorded.etag)
		etagSum.Write(sum)
	}

	upload.completed = true
	f.objects[upload.bucket+"/"+upload.key] = assembled

	etag := fmt.Sprintf("%s-%d", hex.EncodeToString(etagSum.Sum(nil)), len(submitted))
	return &s3.CompleteMultipartUploadOutput{
		Bucket:   aws.String(upload.bucket),
		Key:      aws.String(upload.key),
		ETag:     aws.String(etag),
		Location: aws.String(upload.bucket + "/" + upload.key),
	}, nil
}

// AbortMultipartUpload discards a live session. Aborting a completed,
// already aborted, or never-initiated session fails with NoSuchUpload.
func (f *FakeBackend) AbortMultipartUpload(
	_ context.Context,
	params *s3.AbortMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	upload, err := f.liveUpload(aws.ToString(params.UploadId))
	if err != nil {
		return nil, err
	}

	upload.aborted = true
	upload.parts = make(map[int32]fakePart)

	return &s3.AbortMultipartUploadOutput{}, nil
}

// ListMultipartUploads enumerates live sessions for a bucket.
func (f *FakeBackend) ListMultipartUploads(
	_ context.Context,
	params *s3.ListMultipartUploadsInput,
	_ ...func(*s3.Options),
) (*s3.ListMultipartUploadsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := aws.ToString(params.Bucket)
	var uploads []awstypes.MultipartUpload
	for id, u := range f.uploads {
		if u.bucket != bucket || u.completed || u.aborted {
			continue
		}
		uploads = append(uploads, awstypes.MultipartUpload{
			Key:       aws.String(u.key),
			UploadId:  aws.String(id),
			Initiated: aws.Time(u.initiated),
		})
	}

	sort.Slice(uploads, func(i, j int) bool {
		return aws.ToString(uploads[i].Key) < aws.ToString(uploads[j].Key)
	})

	return &s3.ListMultipartUploadsOutput{
		Uploads:     uploads,
		IsTruncated: aws.Bool(false),
	}, nil
}

// liveUpload returns the session for uploadID if it has not reached a
// terminal state. Callers must hold f.mu.
func (f *FakeBackend) liveUpload(uploadID string) (*fakeUpload, error) {
	upload, ok := f.uploads[uploadID]
	if !ok || upload.completed || upload.aborted {
		return nil, apiError("NoSuchUpload", "upload id does not name a live session: "+uploadID)
	}
	return upload, nil
}

func contentETag(body []byte) string {
	sum := md5.Sum(body) //nolint:gosec // S3 part ETags are MD5 by definition
	return hex.EncodeToString(sum[:])
}

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

// Ensure FakeBackend implements the s3api.S3API interface
var _ s3api.S3API = (*FakeBackend)(nil)
