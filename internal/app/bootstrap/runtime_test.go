package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/connectient/internal/config"
	"github.com/wolfman30/connectient/internal/notify"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", &strings.Builder{})
}

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, quietLogger(), true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, quietLogger(), true))
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), true)
	require.NotNil(t, client)
	defer client.Close()
	require.NoError(t, RedisReadyCheck(client)(context.Background()))

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, quietLogger(), true))
}

func TestBuildPostgresPoolEmptyURL(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Nil(t, OpenSQLDB(pool))
	assert.Nil(t, PoolReadyCheck(pool))
}

func TestBuildPostgresPoolBadURL(t *testing.T) {
	_, err := BuildPostgresPool(context.Background(), "postgres://%zz")
	require.Error(t, err)
}

func TestBuildEmailSenderSelection(t *testing.T) {
	awsCfg := aws.Config{Region: "us-east-1"}
	cases := []struct {
		name     string
		cfg      *appconfig.Config
		aws      *aws.Config
		provider string
		reason   bool
	}{
		{"default stub", &appconfig.Config{}, nil, "stub", false},
		{"sendgrid", &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.key"}, nil, "sendgrid", false},
		{"sendgrid without key", &appconfig.Config{EmailProvider: "sendgrid"}, nil, "stub", true},
		{"ses", &appconfig.Config{EmailProvider: "ses"}, &awsCfg, "ses", false},
		{"ses without aws", &appconfig.Config{EmailProvider: "ses"}, nil, "stub", true},
		{"smtp", &appconfig.Config{EmailProvider: "smtp", SMTPHost: "localhost", SMTPPort: "1025"}, nil, "smtp", false},
		{"smtp without host", &appconfig.Config{EmailProvider: "smtp"}, nil, "stub", true},
		{"unknown", &appconfig.Config{EmailProvider: "pigeon"}, nil, "stub", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender, provider, reason := BuildEmailSender(tc.cfg, tc.aws, quietLogger())
			require.NotNil(t, sender)
			assert.Equal(t, tc.provider, provider)
			assert.Equal(t, tc.reason, reason != "", reason)
			if provider == "stub" {
				assert.IsType(t, &notify.StubEmailSender{}, sender)
			}
		})
	}
}

func TestBuildLogoResolver(t *testing.T) {
	assert.IsType(t, practices.StaticLogoResolver{}, BuildLogoResolver(&appconfig.Config{}, nil, quietLogger()))

	awsCfg := aws.Config{Region: "us-east-1", Credentials: aws.AnonymousCredentials{}}
	resolver := BuildLogoResolver(&appconfig.Config{LogoBucket: "logos"}, &awsCfg, quietLogger())
	assert.IsType(t, &practices.S3LogoResolver{}, resolver)
}
