package mainconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/wolfman30/connectient/internal/config"
)

var errPartialCredentials = errors.New("mainconfig: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")

// RequiresAWS reports whether any configured component talks to AWS: the SES
// email transport or the practice logo bucket.
func RequiresAWS(cfg *appconfig.Config) bool {
	return cfg.EmailProvider == "ses" || strings.TrimSpace(cfg.LogoBucket) != ""
}

// LoadAWSConfig builds the shared SDK config for SES and S3. It returns nil
// when nothing needs AWS.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (*aws.Config, error) {
	if !RequiresAWS(cfg) {
		return nil, nil
	}

	key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey)
	if (key == "") != (secret == "") {
		return nil, errPartialCredentials
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if key != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
	}

	// LocalStack and MinIO.
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return &awsCfg, nil
}
