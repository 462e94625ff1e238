package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"merchant-api/logger"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const (
	maxUploadSize   = 5 * 1024 * 1024
	presignedURLTTL = 15 * time.Minute
	uploadPrefix    = "uploads"
)

var (
	ErrFileTooBig      = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType = errors.New("invalid file type, only JPEG, PNG and PDF files are allowed")
	ErrUploadNotOwned  = errors.New("the file does not belong to this user")

	allowedContentTypes = map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	}
)

// ObjectStore is the subset of *minio.Client used by StorageService.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// StorageService stores user uploads in an S3 compatible bucket, namespaced per user.
type StorageService struct {
	client ObjectStore
	bucket string
}

// NewMinIOClient connects to the S3 compatible endpoint.
func NewMinIOClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// NewStorageService creates the service and makes sure the bucket exists.
func NewStorageService(ctx context.Context, client ObjectStore, bucket string) (*StorageService, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &StorageService{client: client, bucket: bucket}, nil
}

func userPrefix(userID int) string {
	return fmt.Sprintf("%s/user-%d/", uploadPrefix, userID)
}

// Upload stores the file and returns its object key and a presigned download URL.
func (s *StorageService) Upload(ctx context.Context, userID int, file io.Reader, size int64, contentType string) (string, string, error) {
	if size > maxUploadSize {
		return "", "", ErrFileTooBig
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", "", ErrInvalidFileType
	}

	key := userPrefix(userID) + uuid.NewString() + ext
	_, err := s.client.PutObject(ctx, s.bucket, key, file, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"User-ID":     strconv.Itoa(userID),
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("upload file: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "key": key, "size": size}).Info("File uploaded")

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignedURLTTL, nil)
	if err != nil {
		return key, "", fmt.Errorf("presign file url: %w", err)
	}
	return key, u.String(), nil
}

// Delete removes an object of the user. Keys outside the user's namespace are refused.
func (s *StorageService) Delete(ctx context.Context, userID int, key string) error {
	if !strings.HasPrefix(key, userPrefix(userID)) || strings.Contains(key, "..") {
		return ErrUploadNotOwned
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "key": key}).Info("File deleted")
	return nil
}
