// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uploader stores archive artifacts in an S3-compatible object store
(C9/C13, §4.10). Object keys are content-addressed
(archives/{archive_id}/{kind}/{sha256}.{ext}), so Put is naturally
idempotent: a retried upload after a crash mid-job re-derives the same key
and either finds the object already there or re-writes identical bytes.
*/
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/forumvault/archiver/internal/platform/apperr"
)

// Client wraps an S3-compatible object store connection.
type Client struct {
	minio  *minio.Client
	bucket string
}

// Config configures the object-store connection (§ ambient config).
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New constructs a [Client] against the configured S3-compatible endpoint.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperr.ProgrammerErr(fmt.Errorf("uploader: construct client: %w", err))
	}
	return &Client{minio: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the configured bucket if it does not already exist.
// Called once at startup.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minio.BucketExists(ctx, c.bucket)
	if err != nil {
		return apperr.StorageErr(fmt.Errorf("uploader: check bucket: %w", err))
	}
	if exists {
		return nil
	}
	if err := c.minio.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return apperr.StorageErr(fmt.Errorf("uploader: create bucket: %w", err))
	}
	return nil
}

/*
Put uploads bytes under objectKey, skipping the write entirely when an
object already sits at that key with a matching size — the content-address
scheme means a size match is as good as a hash match without a second read.

Parameters:
  - ctx: context.Context
  - objectKey: string, e.g. "archives/{archive_id}/{kind}/{sha256}.{ext}"
  - data: []byte
  - contentType: string

Returns:
  - string: the object key, unchanged, for convenience chaining
  - error: apperr.StorageErr on upload failure
*/
func (c *Client) Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	if info, err := c.minio.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{}); err == nil {
		if info.Size == int64(len(data)) {
			return objectKey, nil
		}
	}

	_, err := c.minio.PutObject(ctx, c.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", apperr.StorageErr(fmt.Errorf("uploader: put %s: %w", objectKey, err))
	}
	return objectKey, nil
}

// Get retrieves the object at objectKey in full.
func (c *Client) Get(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := c.minio.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.StorageErr(fmt.Errorf("uploader: get %s: %w", objectKey, err))
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, apperr.StorageErr(fmt.Errorf("uploader: stat %s: %w", objectKey, err))
	}

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, apperr.StorageErr(fmt.Errorf("uploader: read %s: %w", objectKey, err))
	}
	return buf, nil
}
