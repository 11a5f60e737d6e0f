// Package s3types provides shared type definitions for the s3check module.
package s3types

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"
)

// StorageClass represents the storage class for uploaded objects.
type StorageClass string

// Storage classes accepted by S3-compatible services under test.
const (
	// StorageClassStandard is the default storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"
)

// Part is the record of one uploaded part within a multipart session.
// Parts are collected in ascending Number order; the sequence returned by
// UploadParts is the exact sequence CompleteMultipartUpload requires.
type Part struct {
	// Number is the 1-based part number, unique within a session
	Number int32

	// ETag is the opaque tag the service assigned to the part
	ETag string

	// Size is the part size in bytes (populated by ListParts)
	Size int64

	// LastModified is when the part was uploaded (populated by ListParts)
	LastModified time.Time
}

// CompletedUpload is the finalized object descriptor returned when a
// multipart session completes.
type CompletedUpload struct {
	// Bucket is the bucket the object was assembled into
	Bucket string

	// Key is the object key
	Key string

	// ETag is the entity tag of the assembled object
	ETag string

	// Location is the URI of the assembled object
	Location string

	// VersionID is the version ID if versioning is enabled
	VersionID string
}

// UploadInfo describes one in-flight multipart upload session, as reported
// by ListMultipartUploads.
type UploadInfo struct {
	// Key is the object key the session targets
	Key string

	// UploadID is the service-assigned session identifier
	UploadID string

	// Initiated is when the session was created
	Initiated time.Time

	// StorageClass is the storage class requested at initiation
	StorageClass string
}

// ProgressTracker defines the interface for observing upload progress.
// The coordinator calls Update after every uploaded part.
type ProgressTracker interface {
	// Update is called with cumulative transferred bytes and the total
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// UploadConfig holds per-upload settings.
type UploadConfig struct {
	ContentType     string
	Metadata        map[string]string
	StorageClass    StorageClass
	ProgressTracker ProgressTracker
}

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for file operations
	Logger           *zerolog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// UploadOption is a functional option for configuring upload operations.
type UploadOption func(*UploadConfig)
