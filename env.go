package s3check

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"

	"github.com/hydrostore/s3check/errors"
	"github.com/hydrostore/s3check/s3types"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvEndpoint     = "S3CHECK_ENDPOINT"
	EnvRegion       = "S3CHECK_REGION"
	EnvAccessKey    = "S3CHECK_ACCESS_KEY"
	EnvSecretKey    = "S3CHECK_SECRET_KEY"
	EnvUsePathStyle = "S3CHECK_USE_PATH_STYLE"
)

// NewFromEnv creates a client from environment variables, loading the
// given .env files first (or ./.env when none are named). A missing .env
// file is not an error; variables already set in the environment win.
//
// When both S3CHECK_ACCESS_KEY and S3CHECK_SECRET_KEY are present they are
// used as static credentials; otherwise the default AWS credential chain
// applies. Extra options are applied after the environment-derived ones
// and take precedence.
func NewFromEnv(ctx context.Context, envFiles []string, opts ...s3types.Option) (*Client, error) {
	// godotenv does not overwrite variables already exported, which is
	// the precedence we want.
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errors.NewError("loadEnv", err)
		}
	} else {
		_ = godotenv.Load()
	}

	var loadOpts []func(*config.LoadOptions) error
	if region := os.Getenv(EnvRegion); region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	accessKey := os.Getenv(EnvAccessKey)
	secretKey := os.Getenv(EnvSecretKey)
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("loadEnv", err)
	}

	envOpts := []s3types.Option{WithAWSConfig(&cfg)}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		envOpts = append(envOpts, WithEndpoint(endpoint))
	}
	if pathStyle := os.Getenv(EnvUsePathStyle); strings.EqualFold(pathStyle, "true") {
		envOpts = append(envOpts, WithForcePathStyle(true))
	}

	return New(append(envOpts, opts...)...)
}
