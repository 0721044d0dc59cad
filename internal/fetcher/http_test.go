package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"type":"Point","coordinates":[1,2]}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test-agent"})
	body, err := f.Download(context.Background(), srv.URL+"/data.geojson")
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Point")
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()
	assert.EqualValues(t, 3, calls.Load())
}

func TestDownloadExhaustsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 2})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestDownloadNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Download(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadToFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.bin")
	f := NewHTTPFetcher(HTTPOptions{})

	n, err := f.DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestDownloadToFileFailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.bin")
	f := NewHTTPFetcher(HTTPOptions{})

	_, err := f.DownloadToFile(context.Background(), srv.URL, path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadTempKeepsExtension(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zipzip"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{TempDir: t.TempDir()})
	path, err := f.DownloadTemp(context.Background(), srv.URL+"/archive/data.zip?v=2")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Equal(t, ".zip", filepath.Ext(path))
	assert.FileExists(t, path)
}

func TestUpload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("upload")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "file body", string(content))
		assert.Equal(t, "input.kml", header.Filename)

		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "input.kml")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))

	f := NewHTTPFetcher(HTTPOptions{})
	resp, err := f.Upload(context.Background(), srv.URL, "upload", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
}

func TestUploadErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusBadRequest)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "input.kml")
	require.NoError(t, os.WriteFile(path, []byte("body"), 0o644))

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Upload(context.Background(), srv.URL, "upload", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "...", "long bodies are truncated")
}

func TestParseFTPURL(t *testing.T) {
	t.Parallel()

	addr, path, err := parseFTPURL("ftp://ftp.example.com/pub/data.zip")
	require.NoError(t, err)
	assert.Equal(t, "ftp.example.com:21", addr)
	assert.Equal(t, "/pub/data.zip", path)

	addr, _, err = parseFTPURL("ftp://ftp.example.com:2121/x")
	require.NoError(t, err)
	assert.Equal(t, "ftp.example.com:2121", addr)

	_, _, err = parseFTPURL("https://example.com/x")
	require.Error(t, err)
}
