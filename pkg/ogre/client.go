// Package ogre provides a client for the Ogre web conversion service,
// which transforms uploaded vector files (shapefile archives, KML, GML)
// into GeoJSON.
package ogre

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the public Ogre endpoint.
const DefaultBaseURL = "https://ogre.adc4gis.com"

// ErrConversionFailed is returned when the service rejects the upload or
// reports conversion errors. The service's message is attached.
var ErrConversionFailed = eris.New("ogre conversion failed")

// Client defines the Ogre conversion operations.
type Client interface {
	// Convert uploads a vector file and returns the GeoJSON text the
	// service produced.
	Convert(ctx context.Context, filePath string) ([]byte, error)
}

// Option configures the Ogre client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// New creates an Ogre client.
func New(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Convert(ctx context.Context, filePath string) ([]byte, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		src, err := os.Open(filePath)
		if err != nil {
			_ = pw.CloseWithError(eris.Wrapf(err, "ogre: open %s", filePath))
			return
		}
		defer func() { _ = src.Close() }()

		part, err := mw.CreateFormFile("upload", filepath.Base(filePath))
		if err != nil {
			_ = pw.CloseWithError(eris.Wrap(err, "ogre: create form file"))
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			_ = pw.CloseWithError(eris.Wrap(err, "ogre: stream upload"))
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", pr)
	if err != nil {
		return nil, eris.Wrap(err, "ogre: create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(ErrConversionFailed, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ogre: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrConversionFailed, "ogre: http %d: %s", resp.StatusCode, serviceMessage(body))
	}
	if msg := serviceErrors(body); msg != "" {
		return nil, eris.Wrapf(ErrConversionFailed, "ogre: %s", msg)
	}

	return body, nil
}

// serviceErrors extracts the "errors" array Ogre embeds in an otherwise
// 200 response when conversion fails.
func serviceErrors(body []byte) string {
	var probe struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return strings.Join(probe.Errors, "; ")
}

func serviceMessage(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
