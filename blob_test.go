package inkpress

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBlobStoreRoundTrip(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	blobs := NewSQLiteBlobStore(s)
	ctx := context.Background()

	id, err := blobs.Put(ctx, []byte("payload"), "cat.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	blob, err := blobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), blob.Data)
	assert.Equal(t, "cat.jpg", blob.Filename)
	assert.Equal(t, "image/jpeg", blob.ContentType)

	require.NoError(t, blobs.Delete(ctx, id))
	_, err = blobs.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an already-deleted blob is not an error.
	assert.NoError(t, blobs.Delete(ctx, id))
}

func TestSQLiteBlobStoreDistinctIDs(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	blobs := NewSQLiteBlobStore(s)
	ctx := context.Background()

	a, err := blobs.Put(ctx, []byte("one"), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	b, err := blobs.Put(ctx, []byte("two"), "b.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewS3BlobStoreBuildsClient(t *testing.T) {
	blobs, err := NewS3BlobStore(BlobConfig{
		Backend:     "s3",
		S3Region:    "us-east-1",
		S3Bucket:    "images",
		S3Endpoint:  "http://localhost:9000",
		S3AccessKey: "key",
		S3SecretKey: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, blobs.client)
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(&types.NoSuchKey{}))
	assert.True(t, isNoSuchKey(fmt.Errorf("get object: %w", &types.NoSuchKey{})))
	assert.True(t, isNoSuchKey(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNoSuchKey(errors.New("connection refused")))
	assert.False(t, isNoSuchKey(&smithy.GenericAPIError{Code: "AccessDenied"}))
}
