// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// R2Bucket is a Cloudflare R2 bucket reached through the S3 API.
type R2Bucket struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

// NewR2BucketFromEnv returns nil, nil when R2 is not configured.
func NewR2BucketFromEnv(ctx context.Context) (*R2Bucket, error) {
	accountID := GetEnv("CLOUDFLARE_ACCOUNT_ID", "")
	accessKeyID := GetEnv("R2_ACCESS_KEY_ID", "")
	accessKeySecret := GetEnv("R2_ACCESS_KEY_SECRET", "")
	bucket := GetEnv("R2_BUCKET_NAME", "")
	if accountID == "" || bucket == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	cdnBaseURL := strings.TrimRight(GetEnv("CDN_BASE_URL", endpoint), "/")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2Bucket{client: client, bucket: bucket, cdnBaseURL: cdnBaseURL}, nil
}

// Upload stores a multipart file under key and returns its public URL.
func (b *R2Bucket) Upload(ctx context.Context, key string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", b.cdnBaseURL, key), nil
}

// DeletePrefix removes every object under prefix and returns how many went.
func (b *R2Bucket) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pager := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	deleted := 0
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("list %s: %w", prefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("delete under %s: %w", prefix, err)
		}
		deleted += len(ids)
	}
	return deleted, nil
}
