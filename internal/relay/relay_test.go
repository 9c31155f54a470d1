package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardAttachesCredentialsAndPassesThrough(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"urls":["http://x/y.png"]}`))
	}))
	defer srv.Close()

	r, err := New(Options{BaseURL: srv.URL + "/", AnonKey: "anon", HTTPClient: srv.Client()})
	require.NoError(t, err)

	body := `{"base64_person":"P","base64_clothing":["G"]}`
	status, payload, err := r.Forward(context.Background(), FunctionTryOn, []byte(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"urls":["http://x/y.png"]}`, string(payload))
	assert.Equal(t, "/functions/v1/try-on", gotPath)
	assert.Equal(t, "Bearer anon", gotAuth)
	assert.Equal(t, "anon", gotKey)
	assert.Equal(t, body, gotBody)
}

func TestForwardNonJSONBecomesEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	r, err := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	status, payload, err := r.Forward(context.Background(), FunctionTryOn, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "{}", string(payload))
}

func TestForwardTransportError(t *testing.T) {
	r, err := New(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, _, err = r.Forward(context.Background(), FunctionTryOn, []byte(`{}`))
	require.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, ErrMissingBaseURL)
}
