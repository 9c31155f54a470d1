package imageref

import (
	"net/url"
	"strings"
)

// Resolver turns references into fetchable URLs.
type Resolver struct {
	// StorageBaseURL is the backend base URL that serves public storage objects.
	StorageBaseURL string
	// Origin resolves site-relative paths such as "/images/outfit1.jpg".
	Origin string
}

// URL returns the fetchable URL for remote and storage references. Inline
// references have no URL.
func (r Resolver) URL(ref Ref) string {
	switch ref.Kind {
	case KindInline:
		return ""
	case KindStorage:
		base := strings.TrimRight(r.StorageBaseURL, "/")
		if base == "" || ref.Bucket == "" || ref.Path == "" {
			return ""
		}
		return base + "/storage/v1/object/public/" + url.PathEscape(ref.Bucket) + "/" + escapePath(ref.Path)
	default:
		raw := strings.TrimSpace(ref.URL)
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			origin := strings.TrimRight(r.Origin, "/")
			if origin == "" {
				return ""
			}
			return origin + raw
		}
		return raw
	}
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
