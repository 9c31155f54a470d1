package imageref

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Kind enumerates where the bytes of an image reference live.
type Kind int

const (
	KindRemote Kind = iota
	KindInline
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindStorage:
		return "storage"
	default:
		return "remote"
	}
}

const (
	dataPrefix    = "data:"
	storageScheme = "storage://"
)

// Ref is an image reference of heterogeneous origin: inline encoded data,
// a remote or site-relative URL, or an object in the storage backend.
type Ref struct {
	Kind Kind
	// Inline
	Data string
	MIME string
	// Remote
	URL string
	// Storage
	Bucket string
	Path   string
}

// Parse classifies a raw reference string.
func Parse(raw string) Ref {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, dataPrefix):
		return Ref{Kind: KindInline, Data: raw, MIME: mimeFromDataURI(raw)}
	case strings.HasPrefix(raw, storageScheme):
		rest := strings.TrimPrefix(raw, storageScheme)
		bucket, path, _ := strings.Cut(rest, "/")
		return Ref{Kind: KindStorage, Bucket: bucket, Path: strings.TrimLeft(path, "/")}
	default:
		return Ref{Kind: KindRemote, URL: raw}
	}
}

// FromBytes wraps raw image bytes into an inline data URI reference.
func FromBytes(data []byte, mime string) Ref {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = "image/jpeg"
	}
	uri := DataURI(mime, base64.StdEncoding.EncodeToString(data))
	return Ref{Kind: KindInline, Data: uri, MIME: mime}
}

// Storage builds a reference to an object in a storage bucket.
func Storage(bucket, path string) Ref {
	return Ref{Kind: KindStorage, Bucket: strings.Trim(bucket, "/"), Path: strings.TrimLeft(path, "/")}
}

// ClothesImage is the canonical main image of a wardrobe item.
func ClothesImage(id int64) Ref {
	return Storage("clothes", fmt.Sprintf("%d/main.jpg", id))
}

// String returns the canonical identifier, used for equality between references.
func (r Ref) String() string {
	switch r.Kind {
	case KindInline:
		return r.Data
	case KindStorage:
		return storageScheme + r.Bucket + "/" + r.Path
	default:
		return r.URL
	}
}

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool {
	if r.Kind == KindStorage {
		return r.Bucket == "" || r.Path == ""
	}
	return r.String() == ""
}

// DataURI assembles a base64 data URI.
func DataURI(mime, payload string) string {
	return "data:" + mime + ";base64," + payload
}

// Payload returns the part of a data URI after the header, or "" when the
// string is not a data URI.
func Payload(uri string) string {
	if !strings.HasPrefix(uri, dataPrefix) {
		return ""
	}
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return ""
	}
	return payload
}

func mimeFromDataURI(uri string) string {
	header, _, _ := strings.Cut(strings.TrimPrefix(uri, dataPrefix), ",")
	mime, _, _ := strings.Cut(header, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}
