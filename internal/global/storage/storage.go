// Package storage 对接 S3 兼容的对象存储，存放活动封面和头像
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"social-event-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("对象存储未配置")

var Default *Storage

type Storage struct {
	Bucket       string
	Prefix       string
	BaseURL      string
	Endpoint     string
	UsePathStyle bool

	client   *s3.Client
	uploader *manager.Uploader
}

// Init 未配置 bucket 时跳过，上传接口会返回 ErrNotConfigured
func Init() error {
	cfg := config.Get().S3
	if cfg.Bucket == "" {
		return nil
	}
	s, err := New(context.Background(), cfg)
	if err != nil {
		return err
	}
	Default = s
	return nil
}

func New(ctx context.Context, cfg config.S3) (*Storage, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Storage{
		Bucket:       cfg.Bucket,
		Prefix:       cfg.Prefix,
		BaseURL:      cfg.BaseURL,
		Endpoint:     cfg.Endpoint,
		UsePathStyle: cfg.UsePathStyle,
		client:       client,
		uploader:     manager.NewUploader(client),
	}, nil
}

// ObjectKey 生成唯一对象 key：<prefix>/<dir>/<uuid><ext>
func (s *Storage) ObjectKey(dir, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := path.Join(strings.Trim(s.Prefix, "/"), strings.Trim(dir, "/"), uuid.NewString()+ext)
	return strings.TrimLeft(key, "/")
}

// PublicURL 对象的访问地址
func (s *Storage) PublicURL(key string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.Endpoint, "/")
	}
	if s.UsePathStyle {
		return base + "/" + s.Bucket + "/" + key
	}
	return base + "/" + key
}

type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Upload 服务端中转上传，大文件由 manager 自动分片
func (s *Storage) Upload(ctx context.Context, dir, filename, contentType string, body io.Reader) (*UploadResult, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.ObjectKey(dir, filename)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}
	return &UploadResult{Key: key, URL: s.PublicURL(key)}, nil
}

type PresignedUpload struct {
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// PresignUpload 生成预签名 PUT 地址，前端直传对象存储
func (s *Storage) PresignUpload(ctx context.Context, dir, filename, contentType string, expires time.Duration) (*PresignedUpload, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	if filename == "" {
		return nil, errors.New("文件名不能为空")
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.ObjectKey(dir, filename)

	req, err := s3.NewPresignClient(s.client).PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, fmt.Errorf("生成预签名 URL 失败: %w", err)
	}

	headers := map[string]string{"Content-Type": contentType}
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return &PresignedUpload{
		UploadURL: req.URL,
		FileKey:   key,
		FileURL:   s.PublicURL(key),
		ExpiresAt: time.Now().Add(expires),
		Method:    req.Method,
		Headers:   headers,
	}, nil
}
