package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores files as objects under bucket/prefix. It is the production
// backend.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

type S3Config struct {
	Bucket string
	Prefix string // e.g. "unistad/"
	Region string
}

func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

func (s *S3) key(directory, name string) string {
	return path.Join(s.prefix, directory, name)
}

func (s *S3) GetFile(ctx context.Context, directory, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(directory, name)),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key(directory, name), err)
	}
	return out.Body, nil
}

func (s *S3) SaveFile(ctx context.Context, directory, name string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(directory, name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key(directory, name), err)
	}
	return nil
}

// MoveFile is copy-then-delete; S3 has no native rename.
func (s *S3) MoveFile(ctx context.Context, srcDir, srcName, dstDir, dstName string) error {
	srcKey := s.key(srcDir, srcName)
	dstKey := s.key(dstDir, dstName)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy s3://%s/%s -> %s: %w", s.bucket, srcKey, dstKey, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(srcKey),
	}); err != nil {
		return fmt.Errorf("delete s3://%s/%s after copy: %w", s.bucket, srcKey, err)
	}
	s.logger.Debug("moved object", "from", srcKey, "to", dstKey)
	return nil
}

func (s *S3) FileExists(ctx context.Context, directory, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(directory, name)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("head s3://%s/%s: %w", s.bucket, s.key(directory, name), err)
	}
	return true, nil
}

func (s *S3) DeleteFile(ctx context.Context, directory, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(directory, name)),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, s.key(directory, name), err)
	}
	return nil
}
