package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go-musician-booking/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ArtifactStore persists signed-contract artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(cfg S3Config) *S3Store {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("S3Store:Put:Error", "key", key, "error", err)
		return err
	}
	logger.Info("S3Store:Put:Success", "bucket", s.bucket, "key", key)
	return nil
}

// NoopStore logs artifacts instead of storing them.
type NoopStore struct{}

func (NoopStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	logger.Info("NoopStore:Put", "key", key, "bytes", len(body))
	return nil
}

// SignatureKey builds signatures/<year>/<month>/<slug(signer)>-<id>.json.
func SignatureKey(signerName string, id uuid.UUID, at time.Time) string {
	name := slug.Make(signerName)
	if name == "" {
		name = "unsigned"
	}
	return fmt.Sprintf("signatures/%04d/%02d/%s-%s.json", at.Year(), int(at.Month()), name, id)
}
