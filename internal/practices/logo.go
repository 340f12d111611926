package practices

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/connectient/pkg/logging"
)

// LogoResolver turns a stored logo reference into a URL a browser can load.
type LogoResolver interface {
	Resolve(ctx context.Context, logo string) string
}

// StaticLogoResolver passes references through, substituting DefaultLogo for
// empty ones.
type StaticLogoResolver struct{}

func (StaticLogoResolver) Resolve(_ context.Context, logo string) string {
	if strings.TrimSpace(logo) == "" {
		return DefaultLogo
	}
	return logo
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3LogoResolver presigns logo references that are bucket keys. Absolute URLs
// and site-relative paths are returned unchanged.
type S3LogoResolver struct {
	presigner objectPresigner
	bucket    string
	ttl       time.Duration
	logger    *logging.Logger
}

// NewS3LogoResolver builds a resolver for logos stored in bucket.
func NewS3LogoResolver(client *s3.Client, bucket string, ttl time.Duration, logger *logging.Logger) *S3LogoResolver {
	if client == nil || strings.TrimSpace(bucket) == "" {
		return nil
	}
	return newS3LogoResolver(s3.NewPresignClient(client), bucket, ttl, logger)
}

func newS3LogoResolver(presigner objectPresigner, bucket string, ttl time.Duration, logger *logging.Logger) *S3LogoResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &S3LogoResolver{presigner: presigner, bucket: bucket, ttl: ttl, logger: logger}
}

func (r *S3LogoResolver) Resolve(ctx context.Context, logo string) string {
	logo = strings.TrimSpace(logo)
	switch {
	case logo == "":
		return DefaultLogo
	case strings.HasPrefix(logo, "http://"), strings.HasPrefix(logo, "https://"), strings.HasPrefix(logo, "/"):
		return logo
	}

	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(strings.TrimPrefix(logo, "s3://"+r.bucket+"/")),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		r.logger.Warn("practices: presign logo failed", "key", logo, "error", err)
		return DefaultLogo
	}
	return req.URL
}
