//go:build s3example
// +build s3example

// This file provides an example S3Publisher implementation.
// It is excluded from regular builds because it requires the AWS SDK.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package manifest

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Publisher stores route manifests in AWS S3, so deploy pipelines can
// hand the current routes.json to edge workers and preview hosts.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	s3Client := s3.NewFromConfig(cfg)
//	publisher := manifest.NewS3Publisher(s3Client, "my-bucket", "deploys/routes.json")
//
//	err := publisher.Publish(ctx, m)
type S3Publisher struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Publisher creates a publisher writing to bucket/key.
func NewS3Publisher(client *s3.Client, bucket, key string) *S3Publisher {
	if key == "" {
		key = DefaultFileName
	}
	return &S3Publisher{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Publish uploads the manifest as JSON.
func (p *S3Publisher) Publish(ctx context.Context, m *Manifest) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("publish manifest to s3: %w", err)
	}
	return nil
}

// Fetch downloads and parses the published manifest.
func (p *S3Publisher) Fetch(ctx context.Context) (*Manifest, error) {
	result, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch manifest from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read manifest body: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", p.bucket, p.key, err)
	}
	return m, nil
}

// Delete removes the published manifest.
func (p *S3Publisher) Delete(ctx context.Context) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return fmt.Errorf("delete manifest from s3: %w", err)
	}
	return nil
}
