package service

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/recipe-api/config"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ImageStore persists uploaded recipe images and returns where they can be fetched.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// S3ImageStore keeps recipe images in an S3 bucket.
type S3ImageStore struct {
	cfg *config.S3Config
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{cfg: cfg}
}

func (s *S3ImageStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.cfg.ObjectURL(key), nil
}
