package minio

import (
	"context"
	"os"
	"testing"

	"github.com/hupe1980/kalman/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ blobstore.BlobStore = (*Store)(nil)

func TestStore_Keys(t *testing.T) {
	s, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket", "/replays/")
	require.NoError(t, err)

	assert.Equal(t, "replays/run/est.csv", s.key("run/est.csv"))
	assert.Equal(t, "run/est.csv", s.name("replays/run/est.csv"))

	bare := NewStore(s.client, "bucket", "")
	assert.Equal(t, "est.csv", bare.key("est.csv"))
	assert.Equal(t, "est.csv", bare.name("est.csv"))

	_, err = s.Open(context.Background(), "")
	assert.ErrorIs(t, err, blobstore.ErrInvalidName)
	_, err = s.Create(context.Background(), "")
	assert.ErrorIs(t, err, blobstore.ErrInvalidName)
}

func TestTranslate(t *testing.T) {
	err := translate(minio.ErrorResponse{Code: "NoSuchKey"})
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	other := minio.ErrorResponse{Code: "AccessDenied"}
	assert.Equal(t, other, translate(other))
}

// TestMinioStore_Integration requires a running MinIO instance.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "test-kalman"

	store, err := New(Config{Endpoint: endpoint, AccessKey: "minioadmin", SecretKey: "minioadmin"}, bucket, "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("0,1.5\n100,1.7\n")
	require.NoError(t, blobstore.WriteFile(ctx, store, "trace.csv", data))

	got, err := blobstore.ReadFile(ctx, store, "trace.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "trace.csv")

	require.NoError(t, store.Delete(ctx, "trace.csv"))
	_, err = store.Open(ctx, "trace.csv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	w, err := store.Create(ctx, "aborted.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	_, err = store.Open(ctx, "aborted.csv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
