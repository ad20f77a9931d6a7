package inkpress

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// Blob is an opaque binary payload referenced by an identifier distinct
// from its content.
type Blob struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
}

// BlobStore stores and retrieves binary image payloads by opaque id.
type BlobStore interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Get(ctx context.Context, id string) (Blob, error)
	Delete(ctx context.Context, id string) error
}

// --- SQLite backend ---

// SQLiteBlobStore keeps blobs in the same database as posts and users, so
// a single file remains the whole installation.
type SQLiteBlobStore struct {
	db *sql.DB
}

// NewSQLiteBlobStore creates a blob store sharing the Store's database.
func NewSQLiteBlobStore(s *Store) *SQLiteBlobStore {
	return &SQLiteBlobStore{db: s.db}
}

func (b *SQLiteBlobStore) Put(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	id := uuid.NewString()
	_, err := b.db.ExecContext(ctx, `INSERT INTO blobs (id, filename, content_type, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, filename, contentType, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *SQLiteBlobStore) Get(ctx context.Context, id string) (Blob, error) {
	blob := Blob{ID: id}
	err := b.db.QueryRowContext(ctx, `SELECT filename, content_type, data FROM blobs WHERE id = ?`, id).
		Scan(&blob.Filename, &blob.ContentType, &blob.Data)
	if err == sql.ErrNoRows {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, err
	}
	return blob, nil
}

func (b *SQLiteBlobStore) Delete(ctx context.Context, id string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id)
	return err
}

// --- S3 backend ---

// S3BlobStore stores blobs in any S3-compatible object store (minio
// included) using static credentials and a base endpoint override.
type S3BlobStore struct {
	cfg    BlobConfig
	client *s3.Client
}

// NewS3BlobStore creates a blob store for the configured bucket. The
// client is built once and reused for every operation.
func NewS3BlobStore(cfg BlobConfig) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3BlobStore{cfg: cfg, client: client}, nil
}

func (b *S3BlobStore) Put(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("uploads/%d/%02d/%s", now.Year(), now.Month(), uuid.NewString())
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"filename": filename},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (b *S3BlobStore) Get(ctx context.Context, id string) (Blob, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.S3Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return Blob{}, ErrNotFound
		}
		return Blob{}, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Blob{}, err
	}
	blob := Blob{ID: id, Data: data}
	if out.ContentType != nil {
		blob.ContentType = *out.ContentType
	}
	if name, ok := out.Metadata["filename"]; ok {
		blob.Filename = name
	}
	return blob, nil
}

func (b *S3BlobStore) Delete(ctx context.Context, id string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.S3Bucket),
		Key:    aws.String(id),
	})
	return err
}

// isNoSuchKey reports whether err means the object does not exist, so both
// backends surface the same ErrNotFound to callers.
func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "NoSuchKey"
}
