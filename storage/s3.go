package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // MinIO, LocalStack
	Prefix   string // e.g. "products/"
	BaseURL  string // public URL of the bucket; derived from bucket and region when empty
}

// S3Store keeps product images in an S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
	now     func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.BaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: strings.TrimSuffix(base, "/"),
		now:     time.Now,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s.prefix + ObjectName(name, s.now())
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := s.Key(url)
	if !ok {
		return ErrForeignURL
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key.
func (s *S3Store) URL(key string) string {
	return s.baseURL + "/" + key
}

// Key recovers the object key from a URL produced by URL.
func (s *S3Store) Key(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
