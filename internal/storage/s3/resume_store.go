package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"go-candidate-tracker/config"
	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/pkg/apperror"
	"go-candidate-tracker/pkg/sanitize"
)

const maxResumeSize = 10 << 20 // 10 MiB

// Client is the subset of the S3 API the resume store needs; the
// indirection exists so tests can substitute a fake.
type Client interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// ResumeStore keeps resume blobs in a dedicated bucket, keyed by
// {ownerID}/{sanitized filename}. Locators it hands out resolve under
// publicBase/object/public/{bucket}/.
type ResumeStore struct {
	client     Client
	bucket     string
	publicBase string
}

// NewClient builds an S3 client from the application config. A custom
// endpoint with path-style addressing covers S3-compatible providers.
func NewClient(ctx context.Context, cfg *config.Config) (*awss3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return client, nil
}

func NewResumeStore(client Client, bucket, publicBase string) domain.ResumeStore {
	return &ResumeStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Upload validates the file, writes it under the owner's prefix and returns
// the public locator. The put is non-overwriting: a key collision surfaces
// as a StorageError instead of silently replacing the existing object.
func (s *ResumeStore) Upload(ctx context.Context, ownerID string, file domain.ResumeFile) (string, error) {
	if file.ContentType != "application/pdf" {
		return "", apperror.Validation("only PDF files are allowed")
	}
	if file.Size > maxResumeSize {
		return "", apperror.Validation("file size must be less than 10MB")
	}

	key := ownerID + "/" + sanitize.Filename(file.Name)

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          file.Content,
		ContentType:   aws.String(file.ContentType),
		ContentLength: aws.Int64(file.Size),
		CacheControl:  aws.String("max-age=3600"),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return "", apperror.Storage("a file with this name already exists", err)
		}
		return "", apperror.Storage("failed to upload file", err)
	}

	return s.publicURL(key), nil
}

// Delete parses a public locator, checks it falls under the resume
// collection's public prefix and issues a best-effort remove. A missing
// object is not an error.
func (s *ResumeStore) Delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperror.Storage("failed to delete file", err)
	}
	return nil
}

func (s *ResumeStore) publicURL(key string) string {
	return s.publicBase + "/object/public/" + s.bucket + "/" + key
}

// keyFromURL validates the locator format before extracting the object key,
// so a malformed or foreign URL can never delete an arbitrary path.
func (s *ResumeStore) keyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", apperror.Validation("invalid file URL")
	}

	var basePath string
	if base, err := url.Parse(s.publicBase); err == nil {
		basePath = base.Path
	}
	prefix := basePath + "/object/public/" + s.bucket + "/"

	if !strings.HasPrefix(u.Path, prefix) {
		return "", apperror.Validation("invalid file URL format for resume storage")
	}

	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" {
		return "", apperror.Validation("invalid file URL format for resume storage")
	}
	return key, nil
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "PreconditionFailed"
	}
	return false
}
