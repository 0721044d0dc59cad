package convert

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileResult pairs an input reference with its conversion outcome.
type FileResult struct {
	Input  string
	Result *Result
	Err    error
}

// ConvertFiles converts multiple file or URL inputs concurrently. Each
// input writes to its own destination derived from Options.Dest (treated
// as a directory when set). Per-input failures are collected, not fatal.
func (e *Engine) ConvertFiles(ctx context.Context, inputs []string, opts Options, concurrency int) []FileResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]FileResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			perFile := opts
			if opts.Dest != "" {
				perFile.Dest = filepath.Join(opts.Dest, outputName(input, opts.Format))
			}
			res, err := e.Convert(ctx, input, perFile)
			results[i] = FileResult{Input: input, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// outputName derives the output filename for an input reference.
func outputName(input, outFormat string) string {
	base := filepath.Base(refPath(input))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "output"
	}
	if outFormat == FormatTopoJSON {
		return stem + ".topojson"
	}
	return stem + ".geojson"
}
