// Package validation provides centralized input validation logic.
// All user inputs are validated before being sent to the storage service
// so that malformed requests fail fast, without a remote round trip.
package validation

import (
	"strings"
	"unicode"

	"github.com/hydrostore/s3check/errors"
)

// MaxPartNumber is the highest part number S3-compatible services accept.
const MaxPartNumber = 10000

// ValidateBucketName validates that a bucket name is DNS-compliant
// according to S3 rules. Returns ErrInvalidBucketName otherwise.
func ValidateBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidBucketName).
			WithMessage("bucket name must be between 3 and 63 characters")
	}

	for _, r := range bucket {
		if !isBucketNameRune(r) {
			return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidBucketName).
				WithMessage("bucket name may only contain lowercase letters, digits, hyphens, and dots")
		}
	}

	if !isAlphanumeric(rune(bucket[0])) || !isAlphanumeric(rune(bucket[len(bucket)-1])) {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidBucketName).
			WithMessage("bucket name must begin and end with a letter or digit")
	}

	if strings.Contains(bucket, "..") || strings.Contains(bucket, ".-") || strings.Contains(bucket, "-.") {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidBucketName).
			WithMessage("bucket name must not contain adjacent periods or dashes next to periods")
	}

	return nil
}

// ValidateObjectKey validates that an object key is acceptable to the
// service. This includes preventing path traversal and control characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}

	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
				WithKey(key).
				WithMessage("object key cannot contain control characters")
		}
	}

	return nil
}

// ValidatePartNumber validates that a part number is within the range the
// service accepts. Part numbers are 1-based.
func ValidatePartNumber(partNumber int32) error {
	if partNumber < 1 || partNumber > MaxPartNumber {
		return errors.NewError("validatePartNumber", errors.ErrInvalidPartNumber)
	}
	return nil
}

// ValidateUploadID validates that a multipart upload ID is present.
// The ID itself is opaque; only the service can judge whether it names a
// live session.
func ValidateUploadID(uploadID string) error {
	if uploadID == "" {
		return errors.NewError("validateUploadID", errors.ErrEmptyUploadID)
	}
	return nil
}

func isBucketNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.'
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func hasPathTraversal(key string) bool {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
