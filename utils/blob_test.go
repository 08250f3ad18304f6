package utils

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	pages   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Key)
	f.objects[key] = string(data)
	f.types[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ListObjectsV2 returns one object per page to exercise pagination.
func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.pages++
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) && key > aws.ToString(params.ContinuationToken) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil
	}
	first := keys[0]
	for _, key := range keys {
		if key < first {
			first = key
		}
	}
	return &s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String(first), Size: aws.Int64(int64(len(f.objects[first])))}},
		IsTruncated:           aws.Bool(len(keys) > 1),
		NextContinuationToken: aws.String(first),
	}, nil
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "products/1700000000123-my-lamp-photo.png", ObjectKey("products", "my lamp \t photo.png", now))
}

func TestBlobStoreUploadListDelete(t *testing.T) {
	client := newFakeS3()
	bs := newBlobStore(client, "bucket", "https://cdn.example.com/")
	bs.now = func() time.Time { return time.UnixMilli(1000) }
	ctx := context.Background()

	url, err := bs.Upload(ctx, "uploads", "a b.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/1000-a-b.png", url)
	assert.Equal(t, "png-bytes", client.objects["uploads/1000-a-b.png"])
	assert.Equal(t, "image/png", client.types["uploads/1000-a-b.png"])

	bs.now = func() time.Time { return time.UnixMilli(2000) }
	_, err = bs.Upload(ctx, "uploads", "c.png", strings.NewReader("c"), "")
	require.NoError(t, err)
	_, err = bs.Upload(ctx, "profiles", "me.png", strings.NewReader("me"), "")
	require.NoError(t, err)

	objects, err := bs.List(ctx, "uploads/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "uploads/1000-a-b.png", objects[0].Key)
	assert.Equal(t, int64(9), objects[0].Size)
	assert.Equal(t, "https://cdn.example.com/uploads/2000-c.png", objects[1].URL)

	require.NoError(t, bs.Delete(ctx, url))
	_, ok := client.objects["uploads/1000-a-b.png"]
	assert.False(t, ok)

	assert.Error(t, bs.Delete(ctx, "https://elsewhere.example.com/uploads/x.png"))
}
