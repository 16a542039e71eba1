package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		useSSL   bool
		endpoint string
		secure   bool
	}{
		{"https://s3.example.com", false, "s3.example.com", true},
		{"http://localhost:9000", true, "localhost:9000", false},
		{"minio:9000", true, "minio:9000", true},
		{"//minio:9000", false, "minio:9000", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			endpoint, secure := normalizeEndpoint(tt.raw, tt.useSSL)
			assert.Equal(t, tt.endpoint, endpoint)
			assert.Equal(t, tt.secure, secure)
		})
	}
}

func TestNewS3Client_RequiresSettings(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Client(ctx, config.StorageConfig{})
	assert.EqualError(t, err, "storage endpoint must be provided")

	_, err = NewS3Client(ctx, config.StorageConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "storage credentials must be provided")

	_, err = NewS3Client(ctx, config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "storage bucket must be provided")
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.UploadObject(ctx, "reports/2024-04-01/a.xlsx", []byte("abc"), "text/plain"))
	require.NoError(t, s.UploadObject(ctx, "reports/2024-04-02/b.xlsx", []byte("de"), "text/plain"))
	require.NoError(t, s.UploadObject(ctx, "other/c.txt", []byte("x"), "text/plain"))

	objects, err := s.ListObjects(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []ObjectInfo{
		{Key: "reports/2024-04-01/a.xlsx", Size: 3},
		{Key: "reports/2024-04-02/b.xlsx", Size: 2},
	}, objects)

	dest := filepath.Join(t.TempDir(), "nested", "a.xlsx")
	require.NoError(t, s.DownloadObject(ctx, "reports/2024-04-01/a.xlsx", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	assert.Error(t, s.DownloadObject(ctx, "missing", dest))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root)

	objects, err := s.ListObjects(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, objects)

	require.NoError(t, s.UploadObject(ctx, "reports/2024-04-01/a.xlsx", []byte("abcd"), "text/plain"))
	require.NoError(t, s.UploadObject(ctx, "misc/b.txt", []byte("b"), "text/plain"))

	objects, err = s.ListObjects(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []ObjectInfo{{Key: "reports/2024-04-01/a.xlsx", Size: 4}}, objects)

	dest := filepath.Join(t.TempDir(), "a.xlsx")
	require.NoError(t, s.DownloadObject(ctx, "reports/2024-04-01/a.xlsx", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	assert.Error(t, s.UploadObject(ctx, "../escape.txt", []byte("x"), "text/plain"))
}

func TestLocalStorage_MissingRoot(t *testing.T) {
	s := NewLocalStorage(filepath.Join(t.TempDir(), "absent"))

	objects, err := s.ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objects)
}
