// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pdiddy/docextract/pkg/types"
)

const defaultRegion = "us-east-1"

// PutObjectAPI is the slice of the S3 client the store uses. Tests
// substitute a fake.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects to Amazon S3.
type S3Store struct {
	client PutObjectAPI
}

// NewS3Store builds a client for cfg.Region. Static credentials are used
// when both keys are set; otherwise the SDK's default chain applies.
func NewS3Store(ctx context.Context, cfg types.AWSConfig) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.HasCredentials() {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(awsCfg)}, nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client PutObjectAPI) *S3Store {
	return &S3Store{client: client}
}

// Put uploads data to s3://bucket/key.
func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
