package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	exists    bool
	made      []string
	putKey    string
	putBody   []byte
	putType   string
	putErr    error
	presigned time.Duration
}

func (f *fakeObjects) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return f.exists, nil
}

func (f *fakeObjects) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	f.made = append(f.made, bucketName)
	f.exists = true
	return nil
}

func (f *fakeObjects) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putKey = objectName
	f.putBody = body
	f.putType = opts.ContentType
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: size}, nil
}

func (f *fakeObjects) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	f.presigned = expires
	return url.Parse("https://minio.local/" + bucketName + "/" + objectName + "?X-Amz-Signature=abc")
}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	api := &fakeObjects{}
	client := newClient(api, config.StorageConfig{Bucket: "quotes"})

	require.NoError(t, client.ensureBucket(context.Background(), nil))
	assert.Equal(t, []string{"quotes"}, api.made)

	require.NoError(t, client.ensureBucket(context.Background(), nil))
	assert.Len(t, api.made, 1)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	api := &fakeObjects{exists: true}
	client := newClient(api, config.StorageConfig{Bucket: "quotes", PublicBaseURL: "https://cdn.example.com/"})

	got, err := client.Upload(context.Background(), "u/q.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/quotes/u/q.pdf", got)
	assert.Equal(t, "application/pdf", api.putType)
	assert.Equal(t, []byte("%PDF-1.3"), api.putBody)
}

func TestUploadFallsBackToPresignedURL(t *testing.T) {
	api := &fakeObjects{exists: true}
	client := newClient(api, config.StorageConfig{Bucket: "quotes"})

	got, err := client.Upload(context.Background(), "u/q.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, got, "X-Amz-Signature")
	assert.Equal(t, 24*time.Hour, api.presigned)
}

func TestUploadPropagatesErrors(t *testing.T) {
	api := &fakeObjects{putErr: errors.New("denied")}
	client := newClient(api, config.StorageConfig{Bucket: "quotes"})

	_, err := client.Upload(context.Background(), "k", []byte("x"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
