package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
)

const uploadsPrefix = "uploads/"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes files straight to a bucket and registers the public URL
// with the content API.
type S3Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
	registrar apiClient
}

// NewS3Client builds a client for an S3-compatible endpoint with static keys.
func NewS3Client(ctx context.Context, cfg config.S3Config, accessKeyID, secretKey string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Uploader(client objectPutter, bucket, publicURL string, registrar apiClient) *S3Uploader {
	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		registrar: registrar,
	}
}

// Key is the object key for a file: its slugged name plus a random suffix.
func Key(filename string) string {
	base := strings.TrimSuffix(filename, ".jpg")
	return uploadsPrefix + base + "-" + uuid.NewString() + ".jpg"
}

func (u *S3Uploader) Upload(ctx context.Context, f File) (*model.MediaItem, error) {
	key := Key(f.Filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(f.Size)),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	mediaLogger.Debug().Str("bucket", u.bucket).Str("key", key).Msg("Object stored")

	return u.registrar.RegisterMedia(ctx, model.MediaItem{
		URL:     u.publicURL + "/" + key,
		Type:    model.MediaImage,
		Title:   f.Title,
		AltText: f.AltText,
	})
}
