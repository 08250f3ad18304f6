package utils

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobObject is one stored file.
type BlobObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BlobConfig configures NewBlobStore.
type BlobConfig struct {
	Bucket string
	Region string
	// Endpoint points the client at an S3 compatible server (MinIO,
	// LocalStack) and switches to path style addressing.
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// BlobStore keeps uploaded files in an S3 bucket.
type BlobStore struct {
	client     s3API
	bucket     string
	publicBase string
	now        func() time.Time
}

// NewBlobStore initializes the S3 client from the default AWS config chain,
// overridden by static keys and a custom endpoint when set.
func NewBlobStore(ctx context.Context, cfg BlobConfig) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob store: bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, awsCfg.Region)
	}
	return newBlobStore(client, cfg.Bucket, base), nil
}

func newBlobStore(client s3API, bucket, publicBase string) *BlobStore {
	return &BlobStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// ObjectKey builds "<folder>/<unix millis>-<filename>" with whitespace runs
// in filename replaced by "-".
func ObjectKey(folder, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", folder, now.UnixMilli(), whitespace.ReplaceAllString(filename, "-"))
}

// URL returns the public URL of key.
func (b *BlobStore) URL(key string) string {
	return b.publicBase + "/" + key
}

// Upload stores body and returns its public URL.
func (b *BlobStore) Upload(ctx context.Context, folder, filename string, body io.Reader, contentType string) (string, error) {
	key := ObjectKey(folder, filename, b.now())
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return b.URL(key), nil
}

// Delete removes the object behind a URL returned by Upload.
func (b *BlobStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, b.publicBase+"/")
	if !ok || key == "" {
		return fmt.Errorf("delete %s: not a url of this bucket", url)
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List returns every object whose key starts with prefix.
func (b *BlobStore) List(ctx context.Context, prefix string) ([]BlobObject, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(b.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []BlobObject
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			objects = append(objects, BlobObject{
				Key:          key,
				URL:          b.URL(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}
