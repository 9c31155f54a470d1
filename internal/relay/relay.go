package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wardrobe/internal/infra"
)

// Edge functions exposed by the backend.
const (
	FunctionTryOn        = "try-on"
	FunctionExtractItems = "extract-items"
)

// ErrMissingBaseURL indicates the relay has nowhere to forward to.
var ErrMissingBaseURL = errors.New("relay: backend base url is required")

var emptyObject = json.RawMessage(`{}`)

// Options configures a Relay.
type Options struct {
	BaseURL    string
	AnonKey    string
	ClientInfo string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Relay forwards request bodies to backend functions, attaching the
// credentials that must stay out of client code.
type Relay struct {
	baseURL    string
	anonKey    string
	clientInfo string
	httpClient *http.Client
	logger     *infra.Logger
}

// New constructs a Relay.
func New(opts Options) (*Relay, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No client-side timeout: the upstream function governs latency.
		httpClient = &http.Client{}
	}
	clientInfo := strings.TrimSpace(opts.ClientInfo)
	if clientInfo == "" {
		clientInfo = "go-proxy"
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Relay{
		baseURL:    base,
		anonKey:    strings.TrimSpace(opts.AnonKey),
		clientInfo: clientInfo,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Endpoint returns the upstream URL for a function.
func (r *Relay) Endpoint(function string) string {
	return r.baseURL + "/functions/v1/" + strings.Trim(function, "/")
}

// Forward posts body unmodified to the function and returns the upstream
// status and JSON body. A body that is not JSON is replaced by {}.
func (r *Relay) Forward(ctx context.Context, function string, body []byte) (int, json.RawMessage, error) {
	endpoint := r.Endpoint(function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("relay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.anonKey)
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("x-client-info", r.clientInfo)

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("relay: %s: %w", function, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	payload := json.RawMessage(emptyObject)
	if err == nil && json.Valid(raw) {
		payload = json.RawMessage(raw)
	}
	r.logger.Debug().
		Str("function", function).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("relay: upstream responded")
	return resp.StatusCode, payload, nil
}
