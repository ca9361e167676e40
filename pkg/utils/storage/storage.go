package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"examplehub_backend/pkg/config"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// R2 talks to a Cloudflare R2 bucket through the S3 API.
type R2 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	cdnBase string
}

func NewR2(ctx context.Context, cfg config.StorageConfig) (*R2, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		o.UsePathStyle = true
	})

	return &R2{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketName,
		cdnBase: cfg.CDNBaseURL,
	}, nil
}

// Upload stores body under key and returns its public CDN URL.
func (r *R2) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload file to R2: %w", err)
	}
	return PublicURL(r.cdnBase, key), nil
}

// Delete removes the object behind a CDN URL or a bare object key.
func (r *R2) Delete(ctx context.Context, urlOrKey string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(ObjectKeyFromURL(r.cdnBase, urlOrKey)),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %w", err)
	}
	return nil
}

// PresignDownload returns a time-limited GET URL for a private object.
func (r *R2) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(r.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("could not presign download: %w", err)
	}
	return req.URL, nil
}

// CoverKey builds a unique object key for an example's cover image.
func CoverKey(exampleSlug, ext string) string {
	return path.Join("examples", slug.Make(exampleSlug), "covers", uuid.NewString()+ext)
}

func PublicURL(cdnBase, key string) string {
	if cdnBase == "" {
		return "/" + key
	}
	return cdnBase + "/" + key
}

// ObjectKeyFromURL strips the CDN prefix. Values without it are returned
// unchanged, so keys pass through.
func ObjectKeyFromURL(cdnBase, url string) string {
	if cdnBase != "" {
		url = strings.TrimPrefix(url, cdnBase+"/")
	}
	return strings.TrimPrefix(url, "/")
}
