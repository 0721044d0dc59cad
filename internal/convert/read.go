package convert

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/format"
	"github.com/sells-group/geoconv/internal/geojson"
	"github.com/sells-group/geoconv/internal/igv"
	"github.com/sells-group/geoconv/internal/table"
)

// ReadOptions configures a read call.
type ReadOptions struct {
	// Table requests a flattened tabular reconstruction.
	Table bool
}

// ReadResult is the outcome of a read.
type ReadResult struct {
	IGV   *igv.IGV
	Text  []byte
	Table *table.Table
}

// Read parses a GeoJSON or TopoJSON source into an IGV. The source may be
// inline text, a local file path, or a URL; non-JSON vector formats are
// delegated to the format converters first.
func (e *Engine) Read(ctx context.Context, source string, opts ReadOptions) (*ReadResult, error) {
	data, err := e.sourceBytes(ctx, source)
	if err != nil {
		return nil, err
	}

	if isTopology(data) {
		geoText, err := e.topo.ToGeo(ctx, data)
		if err != nil {
			return nil, err
		}
		data = geoText
	}

	g, err := geojson.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	res := &ReadResult{IGV: g, Text: data}
	if opts.Table {
		t, err := geojson.Flatten(g)
		if err != nil {
			return nil, err
		}
		res.Table = t
	}
	return res, nil
}

// sourceBytes resolves a read source to raw bytes. Inline JSON is used as
// given; files and URLs go through the same reference pipeline as Convert,
// with non-JSON formats converted to GeoJSON on the way in.
func (e *Engine) sourceBytes(ctx context.Context, source string) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return []byte(trimmed), nil
	}

	path := source
	if isRemote(source) {
		if err := format.CheckExtension(refPath(source)); err != nil {
			return nil, err
		}
		tmp, err := e.fetch.DownloadTemp(ctx, source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.Remove(tmp) }()
		path = tmp
		return e.fileBytes(ctx, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "convert: source %s", path)
	}
	return e.fileBytes(ctx, path)
}

func (e *Engine) fileBytes(ctx context.Context, path string) ([]byte, error) {
	if err := format.CheckExtension(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".topojson":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: read %s", path)
		}
		return data, nil
	}

	// A non-JSON vector format: convert it to an IGV first, then hand the
	// serialized form to the reader.
	g, err := e.convertRef(ctx, path, Options{})
	if err != nil {
		return nil, err
	}
	return geojson.Marshal(g)
}

// isTopology reports whether JSON text declares a TopoJSON topology.
func isTopology(data []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Type == "Topology"
}
