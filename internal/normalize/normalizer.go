package normalize

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wardrobe/internal/imageref"
	"wardrobe/internal/infra"
)

// Options configures a Normalizer.
type Options struct {
	HTTPClient *http.Client
	Resolver   imageref.Resolver
	Logger     *infra.Logger
	// MaxBytes bounds a fetched image body. Zero means 20 MiB.
	MaxBytes int64
}

// Normalizer converts image references into bare base64 payloads suitable for
// the try-on request body.
type Normalizer struct {
	httpClient *http.Client
	resolver   imageref.Resolver
	logger     *infra.Logger
	maxBytes   int64
}

// New constructs a Normalizer with defaults for any unset option.
func New(opts Options) *Normalizer {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Normalizer{httpClient: httpClient, resolver: opts.Resolver, logger: logger, maxBytes: maxBytes}
}

// Payload returns the base64 payload of raw with no MIME header. Inline data
// URIs are stripped without re-encoding; everything else is fetched. Any
// failure yields "".
func (n *Normalizer) Payload(ctx context.Context, raw string) string {
	if raw == "" {
		return ""
	}
	ref := imageref.Parse(raw)
	if ref.Kind == imageref.KindInline {
		return imageref.Payload(ref.Data)
	}
	target := n.resolver.URL(ref)
	if target == "" {
		n.logger.Warn().Str("ref", raw).Msg("normalize: unresolvable image reference")
		return ""
	}
	data, err := n.fetch(ctx, target)
	if err != nil {
		n.logger.Warn().Err(err).Str("url", target).Msg("normalize: fetch image failed")
		return ""
	}
	if len(data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// PayloadAll normalizes refs concurrently, preserving order and dropping
// references that could not be prepared.
func (n *Normalizer) PayloadAll(ctx context.Context, refs []string) []string {
	payloads := make([]string, len(refs))
	var g errgroup.Group
	for i, raw := range refs {
		i, raw := i, raw
		g.Go(func() error {
			payloads[i] = n.Payload(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (n *Normalizer) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, n.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > n.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", n.maxBytes)
	}
	return data, nil
}
