// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package objectstore provides the S3-compatible object store holding page images.

It works against AWS S3 or any S3-compatible endpoint (MinIO, R2, Spaces) via
S3_ENDPOINT. Objects are written in place: putting an existing key overwrites
it.

Public URL resolution, in order:

  - S3_PUBLIC_BASE_URL set: {base}/{key}
  - S3_ENDPOINT set: {endpoint}/{bucket}/{key} (path style)
  - otherwise: https://{bucket}.s3.{region}.amazonaws.com/{key}
*/
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the store uses. [*s3.Client] satisfies it.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Options configures an [S3Store].
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	PublicRead      bool
}

// S3Store puts and deletes objects in a single bucket.
type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
	acl     types.ObjectCannedACL
}

// NewS3Client builds an S3 client from the default AWS credential chain,
// overridden by static credentials and a custom endpoint when configured.
func NewS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store wraps client for the bucket described by opts.
func NewS3Store(client S3API, opts Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is required")
	}

	store := &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: publicBaseURL(opts),
	}
	if opts.PublicRead {
		store.acl = types.ObjectCannedACLPublicRead
	}
	return store, nil
}

// Put uploads content under key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
		ACL:           s.acl,
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes key. Deleting a missing key is not an error on S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("objectstore: delete %s: %w", key, err)
	}
	return nil
}

// Ping checks that the bucket exists and is reachable with the configured credentials.
func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("objectstore: head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

func publicBaseURL(opts Options) string {
	switch {
	case opts.PublicBaseURL != "":
		return strings.TrimRight(opts.PublicBaseURL, "/")
	case opts.Endpoint != "":
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
}
