package mainconfig

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/connectient/internal/config"
)

func TestRequiresAWS(t *testing.T) {
	assert.False(t, RequiresAWS(&appconfig.Config{EmailProvider: "sendgrid"}))
	assert.True(t, RequiresAWS(&appconfig.Config{EmailProvider: "ses"}))
	assert.True(t, RequiresAWS(&appconfig.Config{EmailProvider: "stub", LogoBucket: "practice-logos"}))
}

func TestLoadAWSConfigSkippedWhenUnused(t *testing.T) {
	awsCfg, err := LoadAWSConfig(context.Background(), &appconfig.Config{EmailProvider: "smtp"})
	require.NoError(t, err)
	assert.Nil(t, awsCfg)
}

func TestLoadAWSConfigStaticCredentialsAndEndpoint(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		EmailProvider:       "ses",
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "secret",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, awsCfg)
	assert.Equal(t, "us-east-1", awsCfg.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(awsCfg.BaseEndpoint))

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestLoadAWSConfigWithoutOverride(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	awsCfg, err := LoadAWSConfig(context.Background(), &appconfig.Config{LogoBucket: "practice-logos", AWSRegion: "eu-west-1"})
	require.NoError(t, err)
	require.NotNil(t, awsCfg)
	assert.Equal(t, "eu-west-1", awsCfg.Region)
	assert.Nil(t, awsCfg.BaseEndpoint)
}

func TestLoadAWSConfigRejectsPartialCredentials(t *testing.T) {
	_, err := LoadAWSConfig(context.Background(), &appconfig.Config{
		EmailProvider:  "ses",
		AWSRegion:      "us-east-1",
		AWSAccessKeyID: "test",
	})
	assert.ErrorIs(t, err, errPartialCredentials)
}
