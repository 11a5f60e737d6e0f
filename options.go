package s3check

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"

	"github.com/hydrostore/s3check/s3types"
)

// WithRegion sets the AWS region for storage operations.
// If not specified, uses the region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom storage endpoint URL. This is how the client
// points at MinIO, LocalStack, or another S3-compatible system under test.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithMaxRetries sets the maximum number of SDK retry attempts.
// Default is 3. This module adds no retry of its own on top.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual storage operations.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted
// style. Required for most S3-compatible services.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig provides a fully custom AWS configuration, overriding the
// default credential chain loading.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient provides a custom HTTP client for full control over
// transport behavior.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for reading
// source files. Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger that receives per-operation debug output.
// Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = &log
	}
}

// WithContentType sets the content type recorded at session initiation.
func WithContentType(contentType string) s3types.UploadOption {
	return func(c *s3types.UploadConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets user metadata recorded at session initiation.
func WithMetadata(metadata map[string]string) s3types.UploadOption {
	return func(c *s3types.UploadConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithStorageClass sets the storage class for the assembled object.
func WithStorageClass(storageClass s3types.StorageClass) s3types.UploadOption {
	return func(c *s3types.UploadConfig) {
		c.StorageClass = storageClass
	}
}

// WithProgress sets a progress tracker that observes each uploaded part.
func WithProgress(tracker s3types.ProgressTracker) s3types.UploadOption {
	return func(c *s3types.UploadConfig) {
		c.ProgressTracker = tracker
	}
}
