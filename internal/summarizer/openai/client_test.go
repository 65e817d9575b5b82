package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}

func TestSummarizeReturnsMessageContent(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		require.Nil(t, req.ResponseFormat)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Acme builds widgets."}},
			},
		})
	})

	client, err := New(Config{
		Endpoint: srv.URL,
		APIKey:   "test-key",
		Model:    "test-model",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	summary, err := client.Summarize(context.Background(), "Website: acme.com")
	require.NoError(t, err)
	require.Equal(t, "Acme builds widgets.", summary)
}

func TestStructureProfileRequiresValidJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		require.Equal(t, "json_object", req.ResponseFormat.Type)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "not json"}},
			},
		})
	})

	client, err := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.StructureProfile(context.Background(), "Website: acme.com")
	require.ErrorContains(t, err, "invalid json")
}

func TestStructureProfileReturnsRawJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"name":"Acme"}`}},
			},
		})
	})

	client, err := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	raw, err := client.StructureProfile(context.Background(), "Website: acme.com")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Acme"}`, string(raw))
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	})

	client, err := New(Config{Endpoint: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), "Website: acme.com")
	require.ErrorContains(t, err, "rate limited")
}
