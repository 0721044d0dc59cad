// Package convert orchestrates the full conversion pipeline: classify an
// input, build its intermediate geographic value, serialize it, and route
// the result to a file or an in-memory structure. File and URL inputs are
// resolved through the format converters and the fetcher.
package convert

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geoconv/internal/fetcher"
	"github.com/sells-group/geoconv/internal/format"
	"github.com/sells-group/geoconv/internal/geojson"
	"github.com/sells-group/geoconv/internal/igv"
	"github.com/sells-group/geoconv/internal/spatial"
	"github.com/sells-group/geoconv/internal/table"
	"github.com/sells-group/geoconv/internal/topo"
	"github.com/sells-group/geoconv/pkg/ogre"
)

// Conversion methods for file inputs.
const (
	MethodLocal = "local"
	MethodWeb   = "web"
)

// Output formats.
const (
	FormatGeoJSON  = "geojson"
	FormatTopoJSON = "topojson"
)

// Options configures one conversion call. The embedded igv.Options steers
// classification and building; the rest selects method, format, and
// destination.
type Options struct {
	igv.Options

	// Method selects local or web conversion for file inputs.
	Method string
	// Format selects GeoJSON (default) or TopoJSON output.
	Format string
	// Dest is the output file path. Empty means in-memory: the Result
	// carries text and, when requested, a parsed or tabular form.
	Dest string
	// Parse requests the parsed map form in in-memory mode.
	Parse bool
	// Table requests a flattened tabular form in in-memory mode.
	Table bool
}

// Result is the outcome of a conversion.
type Result struct {
	// IGV is the intermediate value, nil for TopoJSON output.
	IGV *igv.IGV
	// Text is the serialized document.
	Text []byte
	// Parsed is set when Options.Parse was requested.
	Parsed map[string]any
	// Table is set when Options.Table was requested.
	Table *table.Table
	// Path is the written file, empty in in-memory mode.
	Path string
}

// Engine ties the conversion core to its collaborators. Each call owns its
// own IGV tree; an Engine is safe for concurrent use.
type Engine struct {
	fetch fetcher.Fetcher
	web   ogre.Client
	topo  topo.Converter
}

// New creates an Engine with the given collaborators.
func New(f fetcher.Fetcher, web ogre.Client, tc topo.Converter) *Engine {
	return &Engine{fetch: f, web: web, topo: tc}
}

// Convert runs the full pipeline for a single input value.
func (e *Engine) Convert(ctx context.Context, input any, opts Options) (*Result, error) {
	g, err := e.toIGV(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	text, err := geojson.Marshal(g)
	if err != nil {
		return nil, err
	}

	if opts.Format == FormatTopoJSON {
		topoText, err := e.topo.ToTopo(ctx, text)
		if err != nil {
			return nil, err
		}
		return e.deliver(&Result{Text: topoText}, opts)
	}

	return e.deliver(&Result{IGV: g, Text: text}, opts)
}

// toIGV resolves any supported input to an intermediate geographic value.
func (e *Engine) toIGV(ctx context.Context, input any, opts Options) (*igv.IGV, error) {
	if obj, ok := spatial.Adapt(input); ok {
		input = obj
	}

	cat, err := igv.Classify(input, opts.Options)
	if err != nil {
		return nil, err
	}

	if cat == igv.CategoryFileOrURLRef {
		return e.convertRef(ctx, input.(string), opts)
	}
	return igv.Build(cat, input, opts.Options)
}

// convertRef converts a file path or URL input. The extension allow-list
// is enforced before any download or collaborator call.
func (e *Engine) convertRef(ctx context.Context, ref string, opts Options) (*igv.IGV, error) {
	if err := format.CheckExtension(refPath(ref)); err != nil {
		return nil, err
	}

	path := ref
	if isRemote(ref) {
		tmp, err := e.fetch.DownloadTemp(ctx, ref)
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.Remove(tmp) }()
		path = tmp
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: open %s", path)
		}
		defer func() { _ = f.Close() }()
		t, err := table.ReadCSV(f, table.CSVOptions{TrimSpace: true})
		if err != nil {
			return nil, err
		}
		return igv.Build(igv.CategoryRecordRows, t, opts.Options)

	case ".xlsx":
		t, err := table.ReadXLSX(path, table.XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return igv.Build(igv.CategoryRecordRows, t, opts.Options)

	case ".topojson":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: read %s", path)
		}
		geoText, err := e.topo.ToGeo(ctx, data)
		if err != nil {
			return nil, err
		}
		return geojson.Unmarshal(geoText)
	}

	method := opts.Method
	if method == "" {
		if format.LocalSupported(path) {
			method = MethodLocal
		} else {
			method = MethodWeb
		}
	}
	if method == MethodWeb {
		return e.convertWeb(ctx, path)
	}
	return format.ConvertLocal(path)
}

func (e *Engine) convertWeb(ctx context.Context, path string) (*igv.IGV, error) {
	text, err := e.web.Convert(ctx, path)
	if err != nil {
		return nil, err
	}
	return geojson.Unmarshal(text)
}

// deliver routes a serialized result to its destination. In-memory mode
// attaches the requested parsed or tabular forms; file mode writes
// atomically so a failure leaves no partial output behind.
func (e *Engine) deliver(res *Result, opts Options) (*Result, error) {
	if opts.Dest == "" {
		if opts.Parse {
			var parsed map[string]any
			var err error
			if res.IGV != nil {
				parsed, err = geojson.ToMap(res.IGV)
			} else {
				parsed, err = parseText(res.Text)
			}
			if err != nil {
				return nil, err
			}
			res.Parsed = parsed
		}
		if opts.Table {
			if res.IGV == nil {
				return nil, eris.New("convert: tabular form needs GeoJSON output")
			}
			t, err := geojson.Flatten(res.IGV)
			if err != nil {
				return nil, err
			}
			res.Table = t
		}
		return res, nil
	}

	if err := writeAtomic(opts.Dest, res.Text); err != nil {
		return nil, err
	}
	res.Path = opts.Dest

	zap.L().Debug("convert: wrote output",
		zap.String("path", opts.Dest),
		zap.Int("bytes", len(res.Text)),
	)
	return res, nil
}

func parseText(text []byte) (map[string]any, error) {
	g, err := geojson.Unmarshal(text)
	if err == nil {
		return geojson.ToMap(g)
	}
	// TopoJSON text is not IGV-parseable; fall back to a raw decode.
	return rawMap(text)
}

func rawMap(text []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(text, &out); err != nil {
		return nil, eris.Wrap(err, "convert: parse output text")
	}
	return out, nil
}

// writeAtomic writes through a uniquely named sibling temp file and
// renames it into place. No partial file survives an error.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "convert: create %s", dir)
	}

	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "convert: write %s", dest)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "convert: rename into %s", dest)
	}
	return nil
}

func isRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return u.Host != ""
	}
	return false
}

func refPath(ref string) string {
	if !isRemote(ref) {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.Path
}
