// Package fetcher moves files between the engine and remote services over
// HTTP and FTP. The conversion core never talks to the network directly.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the transfer operations the conversion paths consume.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// DownloadTemp fetches the URL into a temporary file and returns its
	// path. The caller removes the file when done.
	DownloadTemp(ctx context.Context, url string) (string, error)

	// Upload posts the file as a multipart form field to the URL and
	// returns the response body.
	Upload(ctx context.Context, url, field, filePath string) ([]byte, error)
}
