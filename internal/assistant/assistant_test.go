package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(Config{BaseURL: srv.URL + "/v1beta/", APIKey: "k", Model: "m1"})
	reply, err := g.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, "/v1beta/models/m1:generateContent", gotPath)
	assert.Equal(t, "k", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "hi", gotReq.Contents[0].Parts[0].Text)
}

func TestGeminiUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer srv.Close()

	g := NewGemini(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := g.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestGeminiEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := NewGemini(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := g.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestGeminiTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewGemini(Config{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 50 * time.Millisecond})
	_, err := g.Complete(context.Background(), "hi")
	assert.Error(t, err)
}

func TestGeminiNotConfigured(t *testing.T) {
	g := NewGemini(Config{BaseURL: "http://x", Model: "m"})
	_, err := g.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilClient *Gemini
	assert.False(t, nilClient.Configured())
}
