package capture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
)

// ErrStopped is returned when a frame is requested from a released device.
var ErrStopped = errors.New("capture: device stopped")

// Device is an exclusive image source such as a camera. Exactly one owner may
// hold it; the owner must call Stop when done.
type Device interface {
	Frame(ctx context.Context) (data []byte, mime string, err error)
	Stop()
}

// FileDevice serves frames from an image file on disk.
type FileDevice struct {
	path string

	mu      sync.Mutex
	stopped bool
}

// OpenFile opens a file-backed device. The file must exist.
func OpenFile(path string) (*FileDevice, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("capture: path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	return &FileDevice{path: path}, nil
}

// Frame reads the current file contents.
func (d *FileDevice) Frame(ctx context.Context) ([]byte, string, error) {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if stopped {
		return nil, "", ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, "", fmt.Errorf("capture: read frame: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

// Stop releases the device. It is safe to call more than once.
func (d *FileDevice) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Stopped reports whether the device has been released.
func (d *FileDevice) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

var _ Device = (*FileDevice)(nil)
