package gist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gists", r.URL.Path)
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		var req createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "my map", req.Description)
		assert.False(t, req.Public)
		assert.Equal(t, `{"type":"Point","coordinates":[1,2]}`, req.Files["point.geojson"].Content)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"html_url": "https://gist.github.com/abc123",
		})
	}))
	defer srv.Close()

	client := New("token123", WithBaseURL(srv.URL))
	url, err := client.Publish(context.Background(), map[string]string{
		"point.geojson": `{"type":"Point","coordinates":[1,2]}`,
	}, "my map", false)
	require.NoError(t, err)
	assert.Equal(t, "https://gist.github.com/abc123", url)
}

func TestPublishAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
	}))
	defer srv.Close()

	client := New("bad-token", WithBaseURL(srv.URL))
	_, err := client.Publish(context.Background(), map[string]string{"a.geojson": "{}"}, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestPublishNoFiles(t *testing.T) {
	t.Parallel()

	client := New("token")
	_, err := client.Publish(context.Background(), nil, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files")
}

func TestPublishMissingURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New("token", WithBaseURL(srv.URL))
	_, err := client.Publish(context.Background(), map[string]string{"a.geojson": "{}"}, "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html_url")
}
