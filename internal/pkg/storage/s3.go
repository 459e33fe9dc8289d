package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
)

// S3Store keeps evidence photos in an S3-compatible bucket. Custom endpoints
// (MinIO, Backblaze B2) use path-style URLs.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3StoreFromEnv builds an S3 store from S3_* environment variables.
func NewS3StoreFromEnv() (*S3Store, error) {
	bucket := env.GetEnv("S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is not configured")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(env.GetEnv("S3_REGION", "us-east-1")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			env.GetEnv("S3_ACCESS_KEY_ID", ""),
			env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := env.GetEnv("S3_ENDPOINT_URL", "")
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	store := &S3Store{
		client: client,
		bucket: bucket,
		prefix: env.GetEnv("S3_PREFIX", "reports"),
	}

	if _, err := client.HeadBucket(context.TODO(), &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", bucket, err)
	}

	fiberlog.Infof("[Storage] S3 store ready for bucket %s", bucket)
	return store, nil
}

func (s *S3Store) objectKey(filename string) string {
	if s.prefix == "" {
		return filename
	}
	return s.prefix + "/" + filename
}

// Save uploads the blob to the bucket under the generated filename.
func (s *S3Store) Save(src io.Reader, filename string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(filename)),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return filename, nil
}

// Delete removes the blob from the bucket.
func (s *S3Store) Delete(filename string) error {
	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(filename)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// Path returns "" because S3 blobs have no local filesystem path.
func (s *S3Store) Path(string) string {
	return ""
}
