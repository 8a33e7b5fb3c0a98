// Package s3bucket provides an S3 backed record source.
//
// Records and their artifacts are stored as objects under an optional key
// prefix:
//
//	s3://<bucket>/<prefix>/H001.csv
//	s3://<bucket>/<prefix>/sealed/H001.csv
//	s3://<bucket>/<prefix>/encrypted/H001.enc
//
// Credentials and region come from the default AWS configuration chain
// (environment, shared config files, instance roles).
package s3bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hengadev/recordseal"
)

// Client is the subset of the S3 API used by Bucket.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Bucket implements recordseal.Source on top of an S3 bucket.
type Bucket struct {
	client Client
	bucket string
	prefix string
}

// New creates a Bucket using the default AWS configuration.
//
//	src, err := s3bucket.New(ctx, "hospital-uploads", "records")
//	p, err := recordseal.Open(ctx, cfg, recordseal.WithSource(src))
func New(ctx context.Context, bucket, prefix string) (*Bucket, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", recordseal.ErrInvalidConfiguration, err)
	}
	return NewWithClient(s3.NewFromConfig(awsCfg), bucket, prefix)
}

// NewWithClient creates a Bucket using an existing client.
func NewWithClient(client Client, bucket, prefix string) (*Bucket, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: S3 client cannot be nil", recordseal.ErrInvalidConfiguration)
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name cannot be empty", recordseal.ErrInvalidConfiguration)
	}
	return &Bucket{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Key returns the object key used for name.
func (b *Bucket) Key(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Get downloads the object stored under name.
func (b *Bucket) Get(ctx context.Context, name string) ([]byte, error) {
	key := b.Key(name)
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", recordseal.ErrNotFound, b.bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", b.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", b.bucket, key, err)
	}
	return data, nil
}

// Put uploads data under name, replacing any existing object.
func (b *Bucket) Put(ctx context.Context, name string, data []byte) error {
	key := b.Key(name)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// Ping checks that the bucket exists and is accessible.
func (b *Bucket) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: bucket s3://%s", recordseal.ErrNotFound, b.bucket)
		}
		return fmt.Errorf("failed to reach s3://%s: %w", b.bucket, err)
	}
	return nil
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".csv") {
		return "text/csv"
	}
	return "application/octet-stream"
}
