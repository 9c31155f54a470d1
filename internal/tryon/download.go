package tryon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wardrobe/internal/imageref"
	"wardrobe/internal/storage"
)

var knownExtensions = map[string]bool{"png": true, "jpg": true, "jpeg": true, "webp": true}

// Filename derives the download name for a result image:
// try-on-<UTC ISO-8601 with ':' and '.' replaced by '-'>.<ext>.
func Filename(uri string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "try-on-" + ts + "." + Extension(uri)
}

// Extension infers the file extension from a data URI MIME type or a URL
// path, defaulting to png.
func Extension(uri string) string {
	switch {
	case strings.HasPrefix(uri, "data:image/jpeg"):
		return "jpg"
	case strings.HasPrefix(uri, "data:image/webp"):
		return "webp"
	case strings.HasPrefix(uri, "data:"):
		return "png"
	}
	path, _, _ := strings.Cut(uri, "?")
	if i := strings.LastIndex(path, "."); i >= 0 {
		ext := strings.ToLower(path[i+1:])
		if knownExtensions[ext] {
			return ext
		}
	}
	return "png"
}

// Artifact returns the bytes behind a result image URI.
func Artifact(ctx context.Context, httpClient *http.Client, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, err := base64.StdEncoding.DecodeString(imageref.Payload(uri))
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		return data, nil
	}
	if uri == "" {
		return nil, errors.New("no image to download")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Save writes the result image to store under its derived filename and
// returns the storage key.
func Save(ctx context.Context, store *storage.FileStore, httpClient *http.Client, uri string, now time.Time) (string, error) {
	data, err := Artifact(ctx, httpClient, uri)
	if err != nil {
		return "", err
	}
	return store.Write(ctx, Filename(uri, now), data)
}
