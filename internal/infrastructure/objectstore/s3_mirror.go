package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3MirrorConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Logger          *logging.Logger
}

// S3Mirror copies the artifacts of a run into an S3 compatible bucket under
// <prefix>/<date>/<file name>.
type S3Mirror struct {
	client putObjectAPI
	bucket string
	prefix string
	logger *logging.Logger
}

func NewS3Mirror(ctx context.Context, cfg S3MirrorConfig) (*S3Mirror, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("%w: mirror bucket is required", usecase.ErrInvalidInput)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Mirror(client, cfg.Bucket, cfg.Prefix, cfg.Logger), nil
}

func newS3Mirror(client putObjectAPI, bucket, prefix string, logger *logging.Logger) *S3Mirror {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Mirror{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Mirror uploads every written artifact. A failed upload does not stop the others.
func (m *S3Mirror) Mirror(ctx context.Context, set usecase.ArtifactSet) error {
	var errs []error
	for _, local := range set.Written() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		key := m.objectKey(set.Date, filepath.Base(local))
		if err := m.upload(ctx, local, key); err != nil {
			m.logger.WarnContext(ctx, "mirror artifact failed", "path", local, "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		m.logger.DebugContext(ctx, "artifact mirrored", "bucket", m.bucket, "key", key)
	}
	return errors.Join(errs...)
}

func (m *S3Mirror) upload(ctx context.Context, local, key string) error {
	file, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", local, err)
	}
	defer file.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(local)),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (m *S3Mirror) objectKey(date, name string) string {
	if m.prefix == "" {
		return path.Join(date, name)
	}
	return path.Join(m.prefix, date, name)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
