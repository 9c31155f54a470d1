package tryon

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/storage"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"data:image/png;base64,AAAA", "png"},
		{"data:image/jpeg;base64,AAAA", "jpg"},
		{"data:image/webp;base64,AAAA", "webp"},
		{"data:image/gif;base64,AAAA", "png"},
		{"https://cdn.example.com/out/result.JPG?token=abc", "jpg"},
		{"https://cdn.example.com/out/result.jpeg", "jpeg"},
		{"https://cdn.example.com/out/result.webp", "webp"},
		{"https://cdn.example.com/out/result.gif", "png"},
		{"https://cdn.example.com/out/result", "png"},
		{"", "png"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Extension(tc.uri), tc.uri)
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "try-on-2026-01-01T20-04-05-000Z.webp", Filename("data:image/webp;base64,AA", ts))
}

func TestSaveDataURIAndURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	key, err := Save(context.Background(), store, srv.Client(), "data:image/png;base64,aGVsbG8=", now)
	require.NoError(t, err)
	assert.Equal(t, "try-on-2026-10-17T08-00-00-000Z.png", key)
	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	key, err = Save(context.Background(), store, srv.Client(), srv.URL+"/out.jpg", now)
	require.NoError(t, err)
	assert.Equal(t, "try-on-2026-10-17T08-00-00-000Z.jpg", key)

	_, err = Save(context.Background(), store, srv.Client(), srv.URL+"/missing.png", now)
	require.Error(t, err)
	_, err = Artifact(context.Background(), nil, "")
	require.Error(t, err)
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24))))
	return buf.Bytes()
}
