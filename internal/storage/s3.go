package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config S3 或兼容服务（如 MinIO）的存储配置
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint 为兼容服务的自定义地址，为空时使用 AWS 默认地址
	Endpoint     string
	UsePathStyle bool
	// PublicBaseURL 为对象公开访问的前缀，为空时根据 Endpoint 与 Bucket 推导
	PublicBaseURL string
	// Prefix 为所有对象 key 添加的目录前缀
	Prefix string
}

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Deleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend 基于 aws-sdk-go-v2 的对象存储实现。
type S3Backend struct {
	uploader      s3Uploader
	client        s3Deleter
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewS3Backend creates a new S3 storage backend
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Backend(manager.NewUploader(client), client, cfg), nil
}

func newS3Backend(uploader s3Uploader, client s3Deleter, cfg S3Config) *S3Backend {
	return &S3Backend{
		uploader:      uploader,
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: s3PublicBaseURL(cfg),
	}
}

func s3PublicBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}

func (b *S3Backend) objectKey(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if b.prefix == "" {
		return cleaned, nil
	}
	return b.prefix + "/" + cleaned, nil
}

// Upload 使用 manager.Uploader 上传，大文件会自动分片
func (b *S3Backend) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (b *S3Backend) Delete(ctx context.Context, key string) error {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return err
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *S3Backend) URL(key string) string {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return ""
	}
	return joinURL(b.publicBaseURL, objectKey)
}

func (b *S3Backend) Filename(key string) string {
	return baseName(key)
}
