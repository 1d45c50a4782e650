package services

import (
	"bytes"
	"context"
	"fmt"

	"vetdesk/internal/apperrors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// KeyStoreService stores vet key material as opaque objects. It is the
// second line of defense for public-key uniqueness: an object that
// already exists at the target path is reported as a Conflict even when
// the database pre-check passed.
type KeyStoreService interface {
	StorePublicKey(ctx context.Context, blob []byte, namespace, hint string) (string, error)
	StoreEncryptedPrivateKey(ctx context.Context, blob []byte, namespace, hint string) (string, error)
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioKeyStore struct {
	client *minio.Client
	bucket string
}

func NewMinioKeyStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (KeyStoreService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioKeyStore{client: client, bucket: bucket}, nil
}

func (m *minioKeyStore) StorePublicKey(ctx context.Context, blob []byte, namespace, hint string) (string, error) {
	objectName := fmt.Sprintf("%s/%s.pub", namespace, hint)
	return m.store(ctx, blob, objectName, apperrors.ErrPublicKeyExists)
}

func (m *minioKeyStore) StoreEncryptedPrivateKey(ctx context.Context, blob []byte, namespace, hint string) (string, error) {
	objectName := fmt.Sprintf("%s/%s.key.enc", namespace, hint)
	return m.store(ctx, blob, objectName, apperrors.ErrPrivateKeyExists)
}

// store writes the object unless it already exists; collision names the
// conflicting artifact for the caller.
func (m *minioKeyStore) store(ctx context.Context, blob []byte, objectName string, collision error) (string, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return "", collision
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return "", err
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", m.bucket, objectName), nil
}

func (m *minioKeyStore) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioKeyStore) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
