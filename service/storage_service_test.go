package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memObjectStore is an in-memory ObjectStore.
type memObjectStore struct {
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{buckets: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memObjectStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return s.buckets[bucket], nil
}

func (s *memObjectStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	s.buckets[bucket] = true
	return nil
}

func (s *memObjectStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if s.putErr != nil {
		return minio.UploadInfo{}, s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	s.objects[key] = data
	s.types[key] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (s *memObjectStore) RemoveObject(_ context.Context, _ string, key string, _ minio.RemoveObjectOptions) error {
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) PresignedGetObject(_ context.Context, bucket, key string, _ time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("http://storage.local/" + bucket + "/" + key + "?X-Amz-Signature=test")
}

func TestNewStorageService_CreatesBucket(t *testing.T) {
	store := newMemObjectStore()

	_, err := NewStorageService(context.Background(), store, "uploads")

	require.NoError(t, err)
	assert.True(t, store.buckets["uploads"])
}

func TestStorageService_Upload(t *testing.T) {
	store := newMemObjectStore()
	svc, err := NewStorageService(context.Background(), store, "uploads")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		content := []byte("\x89PNG\r\n\x1a\nfake")
		key, link, err := svc.Upload(ctx, 7, bytes.NewReader(content), int64(len(content)), "image/png")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "uploads/user-7/"))
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Contains(t, link, key)
		assert.Equal(t, content, store.objects[key])
		assert.Equal(t, "image/png", store.types[key])
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := svc.Upload(ctx, 7, strings.NewReader(""), maxUploadSize+1, "application/pdf")
		assert.ErrorIs(t, err, ErrFileTooBig)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, _, err := svc.Upload(ctx, 7, strings.NewReader("MZ"), 2, "application/x-msdownload")
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("store failure", func(t *testing.T) {
		store.putErr = errors.New("bucket unreachable")
		defer func() { store.putErr = nil }()

		_, _, err := svc.Upload(ctx, 7, strings.NewReader("%PDF"), 4, "application/pdf")
		assert.ErrorIs(t, err, store.putErr)
	})
}

func TestStorageService_Delete(t *testing.T) {
	store := newMemObjectStore()
	svc, err := NewStorageService(context.Background(), store, "uploads")
	require.NoError(t, err)
	ctx := context.Background()

	key, _, err := svc.Upload(ctx, 7, strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 8, key), ErrUploadNotOwned)
	assert.ErrorIs(t, svc.Delete(ctx, 7, "uploads/user-7/../user-8/x.pdf"), ErrUploadNotOwned)
	assert.Contains(t, store.objects, key)

	require.NoError(t, svc.Delete(ctx, 7, key))
	assert.NotContains(t, store.objects, key)
}
