package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores binary content under a key and returns the URL it is
// served from.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Client uploads member avatars and page imagery to an S3-compatible
// bucket. The bucket is created lazily on first upload and opened for
// public reads, since avatar URLs are served directly to browsers.
type Client struct {
	client *minio.Client
	bucket string
	base   string
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	bucket = strings.TrimSpace(bucket)
	switch {
	case endpoint == "":
		return nil, errors.New("s3: endpoint is required")
	case bucket == "":
		return nil, errors.New("s3: bucket is required")
	}

	mc, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &Client{
		client: mc,
		bucket: bucket,
		base:   strings.TrimRight(base, "/"),
		logger: logger,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.client.PutObject(ctx, c.bucket, key, reader, -1, opts); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.base, c.bucket, key)
	if c.logger != nil {
		c.logger.Debug("object uploaded", "bucket", c.bucket, "key", key)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.initErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.initErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.bucket)
		if err := c.client.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
			c.initErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.initErr
}

// hostOf strips an optional scheme so both "minio:9000" and
// "http://minio:9000" configure the same client.
func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader rejects every upload. It stands in when object storage
// is not configured so avatar requests fail with a clear error.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3 uploader is not configured")
}

var (
	_ Uploader = (*Client)(nil)
	_ Uploader = NoopUploader{}
)
