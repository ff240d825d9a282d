package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/pkg/config"
)

func TestLocalDocumentStoreRoundTrip(t *testing.T) {
	files, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := NewLocalDocumentStore(files, NewSignedURLSigner("secret", time.Minute), "/api/v1/documents/")

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "results/ev-1.pdf", bytes.NewBufferString("%PDF-1.4"), 8, "application/pdf"))

	url, expiresAt, err := store.URL(ctx, "results/ev-1.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/api/v1/documents/doc."))
	require.True(t, expiresAt.After(time.Now()))

	token := strings.TrimPrefix(url, "/api/v1/documents/")
	file, key, err := store.Open(token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	require.Equal(t, "results/ev-1.pdf", key)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, store.Delete(ctx, "results/ev-1.pdf"))
	_, _, err = store.Open(token)
	require.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	files, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = files.Save("../escape.txt", []byte("x"))
	require.Error(t, err)
	_, err = files.Save("/etc/passwd", []byte("x"))
	require.Error(t, err)
}

func TestS3DocumentStorePresign(t *testing.T) {
	store, err := NewS3DocumentStore(config.S3Config{
		Bucket:          "donations",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
		KeyPrefix:       "evaluations/",
	}, 15*time.Minute)
	require.NoError(t, err)

	url, _, err := store.URL(context.Background(), "ev-1/result.pdf")
	require.NoError(t, err)
	require.Contains(t, url, "http://localhost:9000/donations/evaluations/ev-1/result.pdf")
	require.Contains(t, url, "X-Amz-Expires=900")
}

func TestS3DocumentStoreRequiresBucket(t *testing.T) {
	_, err := NewS3DocumentStore(config.S3Config{Region: "us-east-1"}, time.Minute)
	require.Error(t, err)
}
