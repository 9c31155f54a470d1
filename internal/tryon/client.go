package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"wardrobe/internal/metrics"
	"wardrobe/internal/relay"
)

// Request is the body sent to the try-on proxy.
type Request struct {
	SubjectImage  string   `json:"base64_person"`
	GarmentImages []string `json:"base64_clothing"`
}

// Valid reports whether the request may be sent.
func (r Request) Valid() bool {
	return r.SubjectImage != "" && len(r.GarmentImages) > 0
}

// Response is the proxy's raw answer.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client sends a single try-on request. A returned error means the request
// did not complete at the transport level.
type Client interface {
	TryOn(ctx context.Context, req Request) (Response, error)
}

// ProxyClient posts requests to the same-origin proxy endpoint.
type ProxyClient struct {
	URL        string
	HTTPClient *http.Client
}

// NewProxyClient returns a client for the proxy at url.
func NewProxyClient(url string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ProxyClient{URL: strings.TrimSpace(url), HTTPClient: httpClient}
}

// TryOn fulfils Client.
func (c *ProxyClient) TryOn(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{Status: resp.StatusCode, Body: raw}, nil
}

// RelayClient calls the backend function directly through a Relay, for
// callers already on the server side of the proxy.
type RelayClient struct {
	Relay *relay.Relay
}

// TryOn fulfils Client.
func (c RelayClient) TryOn(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	status, payload, err := c.Relay.Forward(ctx, relay.FunctionTryOn, body)
	metrics.RecordRelay(relay.FunctionTryOn, status)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: status, Body: payload}, nil
}

// upstreamMessage prefers the error string supplied by the server.
func upstreamMessage(resp Response) string {
	if gjson.ValidBytes(resp.Body) {
		errVal := gjson.GetBytes(resp.Body, "error")
		switch {
		case errVal.Type == gjson.String && strings.TrimSpace(errVal.Str) != "":
			return errVal.Str
		case errVal.IsObject():
			if msg := errVal.Get("message"); msg.Type == gjson.String && msg.Str != "" {
				return msg.Str
			}
		}
	}
	return fmt.Sprintf("Request failed with status %d", resp.Status)
}

var (
	_ Client = (*ProxyClient)(nil)
	_ Client = RelayClient{}
)
