package s3check

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/rs/zerolog"

	"github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/internal/multipart"
	"github.com/hydrostore/s3check/internal/s3api"
	"github.com/hydrostore/s3check/s3types"
)

// Client drives multipart operations against one S3-compatible endpoint.
// It is safe for concurrent use; all session state lives server-side.
type Client struct {
	// s3Client is the storage service capability the coordinator consumes
	s3Client s3api.S3API

	// coordinator orchestrates multipart sessions
	coordinator *multipart.Coordinator

	// config holds the AWS configuration
	config aws.Config

	// mu protects client reconfiguration
	mu sync.RWMutex

	// fs is the filesystem abstraction for reading source files
	fs fs.Filesystem

	// log receives per-operation debug output
	log zerolog.Logger
}

// New creates a client with the provided options. Credentials come from
// the default AWS credential chain unless a custom configuration is given.
//
// Example:
//
//	client, err := s3check.New(
//	    s3check.WithEndpoint("http://localhost:9000"),
//	    s3check.WithForcePathStyle(true),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	clientCfg := &s3types.ClientConfig{
		MaxRetries: 3,
		Timeout:    0,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.CustomHTTPClient != nil {
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	} else if clientCfg.Timeout > 0 {
		httpClient := &http.Client{Timeout: clientCfg.Timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	return newClient(s3Client, cfg, clientCfg), nil
}

// NewWithClient creates a client around a custom S3API implementation.
// This is primarily used for testing against mocked or fake services.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	clientCfg := &s3types.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}
	return newClient(s3Client, aws.Config{}, clientCfg)
}

func newClient(s3Client s3api.S3API, cfg aws.Config, clientCfg *s3types.ClientConfig) *Client {
	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	log := zerolog.Nop()
	if clientCfg.Logger != nil {
		log = *clientCfg.Logger
	}

	return &Client{
		s3Client:    s3Client,
		coordinator: multipart.New(s3Client, filesystem, log),
		config:      cfg,
		fs:          filesystem,
		log:         log,
	}
}

// SetFilesystem swaps the filesystem implementation used to read source
// files. Useful for pointing tests at an in-memory filesystem.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
	c.coordinator = multipart.New(c.s3Client, filesystem, c.log)
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	return nil
}
