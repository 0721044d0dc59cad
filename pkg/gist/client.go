// Package gist provides a client for publishing files as GitHub gists.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client defines the gist publishing operations.
type Client interface {
	// Publish creates a gist from the named file contents and returns the
	// hosted URL.
	Publish(ctx context.Context, files map[string]string, description string, public bool) (string, error)
}

// Option configures the gist client.
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
	token   string
	baseURL string
	http    *http.Client
}

// New creates a gist client authenticating with the given token.
func New(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gistFile struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type createResponse struct {
	HTMLURL string `json:"html_url"`
	Message string `json:"message"`
}

func (c *httpClient) Publish(ctx context.Context, files map[string]string, description string, public bool) (string, error) {
	if len(files) == 0 {
		return "", eris.New("gist: no files to publish")
	}

	payload := createRequest{
		Description: description,
		Public:      public,
		Files:       make(map[string]gistFile, len(files)),
	}
	for name, content := range files {
		payload.Files[name] = gistFile{Content: content}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "gist: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gists", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "gist: create request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "gist: post")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "gist: read response")
	}

	var parsed createResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", eris.Wrapf(err, "gist: parse response (http %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusCreated {
		return "", eris.Errorf("gist: http %d: %s", resp.StatusCode, parsed.Message)
	}
	if parsed.HTMLURL == "" {
		return "", eris.New("gist: response missing html_url")
	}
	return parsed.HTMLURL, nil
}
