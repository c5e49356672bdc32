// Package assets resolves raw-upload asset keys to short-lived download
// URLs on the object store backing the newsroom media library.
package assets

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	serverconfig "github.com/meridianpress/newsdesk/internal/server/config"
)

// Store hands out presigned download URLs for stored assets.
type Store interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// S3Store serves assets from an S3-compatible bucket (MinIO in local
// deployments).
type S3Store struct {
	cfg    *serverconfig.Config
	expiry time.Duration
}

func NewS3Store(cfg *serverconfig.Config) *S3Store {
	return &S3Store{cfg: cfg, expiry: 15 * time.Minute}
}

func (s *S3Store) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3RootUser,
			s.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// PresignGet returns a time-limited GET URL for the stored object under
// key. The token-gated asset handler redirects to this URL; the bucket
// itself stays private.
func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.cfg.S3Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
