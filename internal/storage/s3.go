package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/config"
)

// S3Storage stores popup images in an S3 bucket fronted by a CDN or the
// bucket's public URL.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Storage loads the default AWS credential chain for the configured region.
func NewS3Storage(ctx context.Context, cfg config.AssetsConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3Bucket,
		region:  cfg.AWSRegion,
		baseURL: cfg.BaseURL,
	}, nil
}

func (s *S3Storage) SaveImage(ctx context.Context, contentType string, data io.Reader) (string, error) {
	key, err := objectKey(contentType)
	if err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(data, MaxImageSizeBytes))
	if err != nil {
		return "", fmt.Errorf("reading image upload: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading image to S3: %w", err)
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
