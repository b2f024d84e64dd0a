package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores attachments in an S3 bucket under attachments/<uuid><ext>.
type S3Uploader struct {
	uploader *manager.Uploader
	bucket   string
	region   string
}

func NewS3Uploader(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		region:   region,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*Upload, error) {
	key := "attachments/" + uuid.NewString() + path.Ext(filename)

	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &Upload{
		URL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, url.PathEscape(key)),
		Kind: KindFromContentType(contentType),
	}, nil
}
