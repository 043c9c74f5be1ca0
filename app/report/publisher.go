package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"DocAnalystAI/app/configs"
)

const objectPrefix = "reports"

// Publisher copies a written report somewhere else and returns where it landed.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinioPublisher struct {
	client objectStore
	base   *url.URL
	bucket string
	region string
}

func NewMinioPublisher(cfg configs.MinIOConfig) (*MinioPublisher, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioPublisher{client: cli, base: cli.EndpointURL(), bucket: cfg.Bucket, region: cfg.Region}, nil
}

func (p *MinioPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", p.bucket, err)
		}
	}

	key := path.Join(objectPrefix, filepath.Base(localPath))
	if _, err = p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/markdown; charset=utf-8",
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	location := p.base.JoinPath(p.bucket, key).String()
	slog.Info("☁️ Report published", "url", location)
	return location, nil
}
