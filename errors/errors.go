// Package errors provides error types and handling for object-storage
// test operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a storage request failure with context about the
// operation that produced it. It wraps the underlying AWS SDK error so
// callers can still reach service error codes through errors.As.
type Error struct {
	// Op is the operation that failed (e.g., "uploadPart", "complete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3check.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3check.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("s3check.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for failures that originate locally rather than from
// the storage service. These can be used with errors.Is().
var (
	// ErrFileNotExists indicates that the local source file for a
	// multipart upload does not exist. This is fatal and raised before
	// any remote call is made.
	ErrFileNotExists = errors.New("s3check: file does not exist")

	// ErrIntegrityCheck indicates that post-run data integrity
	// verification failed.
	ErrIntegrityCheck = errors.New("s3check: data integrity verification failed")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3check: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3check: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3check: invalid object key")

	// ErrInvalidPartNumber indicates a part number outside the range the
	// service accepts (1 through 10000)
	ErrInvalidPartNumber = errors.New("s3check: invalid part number")

	// ErrEmptyUploadID indicates a missing multipart upload ID
	ErrEmptyUploadID = errors.New("s3check: empty upload id")
)

// IsFileNotExists checks if an error indicates a missing local source file.
func IsFileNotExists(err error) bool {
	return errors.Is(err, ErrFileNotExists)
}

// IsIntegrityCheck checks if an error indicates a failed integrity verification.
func IsIntegrityCheck(err error) bool {
	return errors.Is(err, ErrIntegrityCheck)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRequestFailure reports whether the error carries storage request
// context, i.e. it was produced on the path to or from a remote call.
func IsRequestFailure(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
