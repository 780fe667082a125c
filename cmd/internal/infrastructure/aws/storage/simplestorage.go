package storage

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const basePath = "exports/"

// ObjectPutter is the slice of the S3 API uploads need.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	bucket string
	client ObjectPutter
}

func NewS3Storage(ctx context.Context, region, bucket string) (*S3Storage, error) {
	if bucket == "" {
		return nil, errors.New("bucket is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket), nil
}

func NewS3StorageWithClient(client ObjectPutter, bucket string) *S3Storage {
	return &S3Storage{
		bucket: bucket,
		client: client,
	}
}

// ObjectKey places filename under a random prefix so repeated exports
// never overwrite each other.
func ObjectKey(filename string) string {
	return basePath + uuid.NewString() + "/" + filepath.Base(filename)
}

// Upload stores data and returns its object key.
func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if filename == "" {
		return "", errors.New("filename is empty")
	}

	key := ObjectKey(filename)
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: &mimeType,
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return key, nil
}
