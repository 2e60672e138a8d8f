package reliability

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aristath/tradejournal/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

const defaultUploadTries = 4

// objectAPI is the part of the S3 client the backup code uses
type objectAPI interface {
	s3.ListObjectsV2APIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// objectUploader is satisfied by *manager.Uploader
type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// R2Client talks to a Cloudflare R2 bucket through its S3-compatible API
type R2Client struct {
	api          objectAPI
	uploader     objectUploader
	bucket       string
	maxTries     uint
	retryInitial time.Duration
	log          zerolog.Logger
}

// NewR2Client creates a client for the bucket configured in cfg
func NewR2Client(ctx context.Context, cfg *config.BackupConfig, log zerolog.Logger) (*R2Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("r2 backup is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint())
		o.UsePathStyle = true
	})

	return newR2Client(client, manager.NewUploader(client), cfg.Bucket, log), nil
}

func newR2Client(api objectAPI, uploader objectUploader, bucket string, log zerolog.Logger) *R2Client {
	return &R2Client{
		api:          api,
		uploader:     uploader,
		bucket:       bucket,
		maxTries:     defaultUploadTries,
		retryInitial: time.Second,
		log:          log.With().Str("client", "r2").Logger(),
	}
}

// Bucket returns the bucket name
func (c *R2Client) Bucket() string {
	return c.bucket
}

// Upload stores body under key, retrying transient failures with exponential backoff.
// body is rewound before every attempt.
func (c *R2Client) Upload(ctx context.Context, key string, body io.ReadSeeker, size int64) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.MaxInterval = c.retryInitial * 10

	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Str("key", key).Dur("backoff", wait).Msg("Retrying upload")
	}

	operation := func() (*manager.UploadOutput, error) {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to rewind upload body: %w", err))
		}
		return c.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentLength: aws.Int64(size),
		})
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	c.log.Debug().Str("key", key).Int64("size_bytes", size).Msg("Uploaded object")
	return nil
}

// List returns every object whose key starts with prefix
func (c *R2Client) List(ctx context.Context, prefix string) ([]types.Object, error) {
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []types.Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		objects = append(objects, page.Contents...)
	}
	return objects, nil
}

// Delete removes the object stored under key
func (c *R2Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
