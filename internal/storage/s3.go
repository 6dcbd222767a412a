package storage

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/groupo-app/backend/internal/apperrors"
)

// S3Options configures the object storage backend.
type S3Options struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	URLExpires      time.Duration
}

// S3 uploads media bytes to a bucket and resolves stored keys into
// time-limited presigned URLs.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expires time.Duration
}

// NewS3 creates an S3 backend. It fails when credentials or the bucket are
// unconfigured so the caller can select the local backend instead.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" || opts.Bucket == "" {
		return nil, &apperrors.StorageError{
			Op:  "configure",
			Err: errors.New("S3 not configured (missing AWS keys or bucket name)"),
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, &apperrors.StorageError{Op: "configure", Err: err}
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		expires: opts.URLExpires,
	}, nil
}

// Put uploads the bytes under the given key and returns the bare key as the
// stored reference. Presigning happens lazily at read time.
func (b *S3) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", &apperrors.StorageError{Op: "upload", Err: err}
	}
	return name, nil
}

// URL generates a presigned GET URL for a stored key, valid for the
// configured lifetime.
func (b *S3) URL(ctx context.Context, ref string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(b.expires))
	if err != nil {
		return "", &apperrors.StorageError{Op: "presign", Err: err}
	}
	return req.URL, nil
}

func (b *S3) Kind() Kind { return KindS3 }
