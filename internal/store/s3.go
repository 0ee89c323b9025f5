package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/i474232898/weather-map/internal/weather"
)

// S3Config holds the connection settings for an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether enough settings are present to connect.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Archive stores every collected record as a JSON object.
type S3Archive struct {
	client objectPutter
	bucket string
	newID  func() string
}

// NewS3Archive connects to the MinIO endpoint and makes sure the bucket exists.
func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	log.Println("INFO: connected to MinIO endpoint:", cfg.Endpoint)
	return &S3Archive{client: client, bucket: cfg.Bucket, newID: uuid.NewString}, nil
}

func (a *S3Archive) Name() string {
	return "s3:" + a.bucket
}

func (a *S3Archive) Write(ctx context.Context, rec weather.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record to JSON: %w", err)
	}

	key := a.objectKey(rec)
	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	return nil
}

func (a *S3Archive) objectKey(rec weather.Record) string {
	return fmt.Sprintf("raw_data/%s/%s/%d-%s.json",
		sanitizeKey(rec.CountryCode), sanitizeKey(rec.City), rec.Timestamp, a.newID())
}

// sanitizeKey replaces spaces with hyphens and lowercases s.
func sanitizeKey(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ToLower(s)
}
