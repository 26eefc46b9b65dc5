package s3

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/yadgarautos/jobfiles/internal/config"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/sentry"
)

const (
	defaultPresignExpiryDuration = 15 * time.Minute
)

// Service is the blob store for job photos and invoice PDFs
type Service interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) error
	GetPublicURL(ctx context.Context, path string) (string, error)
	GetObject(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}

type s3ServiceImpl struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    config.S3Config
	sentry    *sentry.Service
}

// NewService falls back to process memory when s3 is disabled, which is only
// meant for local runs
func NewService(cfg *config.Configuration, log *logger.Logger, sentry *sentry.Service) (Service, error) {
	if !cfg.S3.Enabled {
		log.Warn("s3 is disabled, blobs are kept in memory")
		return NewMemoryService(cfg.S3.PublicBaseURL), nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.S3.Region)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	client := config.NewS3Client(awsCfg, cfg.S3)
	return &s3ServiceImpl{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    cfg.S3,
		sentry:    sentry,
	}, nil
}

func (s *s3ServiceImpl) Upload(ctx context.Context, path string, content []byte, contentType string) (err error) {
	span, ctx := s.sentry.StartBlobSpan(ctx, "s3.upload", map[string]interface{}{"key": path, "size": len(content)})
	defer func() { sentry.FinishSpan(span, err) }()

	if s.config.MaxUploadSize > 0 && int64(len(content)) > s.config.MaxUploadSize {
		return ierr.NewErrorf("upload of %d bytes exceeds limit", len(content)).
			WithHintf("Files must be smaller than %d bytes", s.config.MaxUploadSize).
			Mark(ierr.ErrValidation)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ierr.WithError(err).WithHint("failed to upload file").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, path).
			Mark(ierr.ErrStoreUnavailable)
	}
	return nil
}

// GetPublicURL prefers the configured public base url, otherwise presigns a GET
func (s *s3ServiceImpl) GetPublicURL(ctx context.Context, path string) (string, error) {
	if s.config.PublicBaseURL != "" {
		return joinURL(s.config.PublicBaseURL, path)
	}

	expiry := s.config.PresignExpiry
	if expiry <= 0 {
		expiry = defaultPresignExpiryDuration
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, path).
			Mark(ierr.ErrHTTPClient)
	}
	return result.URL, nil
}

func (s *s3ServiceImpl) GetObject(ctx context.Context, path string) (data []byte, err error) {
	span, ctx := s.sentry.StartBlobSpan(ctx, "s3.get", map[string]interface{}{"key": path})
	defer func() { sentry.FinishSpan(span, err) }()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ierr.WithError(err).
				WithHintf("File %s not found", path).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("failed to get file").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, path).
			Mark(ierr.ErrStoreUnavailable)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (s *s3ServiceImpl) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		var nf *s3types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("failed to check if file exists").
			Mark(ierr.ErrStoreUnavailable)
	}
	return true, nil
}

func joinURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("s3.public_base_url is not a valid url").
			Mark(ierr.ErrSystem)
	}
	return u.JoinPath(strings.Split(path, "/")...).String(), nil
}
