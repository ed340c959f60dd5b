package s3client

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "samplefetch/config"
	"samplefetch/pkg/utils"
)

type Client struct {
	s3Client   *s3.Client
	downloader *manager.Downloader
}

func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	// One part at a time; downloads stay sequential.
	downloader := manager.NewDownloader(s3Client, func(d *manager.Downloader) {
		d.Concurrency = 1
	})

	return &Client{
		s3Client:   s3Client,
		downloader: downloader,
	}, nil
}

// OpenObject downloads bucket/key into a temporary file and returns it.
// Closing the returned reader removes the file.
func (c *Client) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	file, err := os.CreateTemp("", "samplefetch-s3-*.zip")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = c.downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		file.Close()
		utils.CleanupTempFile(file.Name())
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		utils.CleanupTempFile(file.Name())
		return nil, fmt.Errorf("failed to rewind %s: %w", file.Name(), err)
	}

	return &tempObject{File: file}, nil
}

type tempObject struct {
	*os.File
}

func (t *tempObject) Close() error {
	err := t.File.Close()
	if cleanupErr := utils.CleanupTempFile(t.Name()); err == nil {
		err = cleanupErr
	}
	return err
}

// Lazy defers loading the AWS configuration until the first object is
// opened, so registries that only serve HTTP archives never touch it.
type Lazy struct {
	cfg    *appConfig.Config
	once   sync.Once
	client *Client
	err    error
}

func NewLazy(cfg *appConfig.Config) *Lazy {
	return &Lazy{cfg: cfg}
}

func (l *Lazy) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	l.once.Do(func() {
		l.client, l.err = New(ctx, l.cfg)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.OpenObject(ctx, bucket, key)
}
