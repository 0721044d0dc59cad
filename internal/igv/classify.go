package igv

import (
	"net/url"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/sells-group/geoconv/internal/table"
)

// Category is the closed set of input shapes the engine accepts.
type Category string

// Input categories, in classification order.
const (
	CategoryNumericPair      Category = "NumericPair"
	CategoryNumericRing      Category = "NumericRing"
	CategoryLabeledPointList Category = "LabeledPointList"
	CategoryRecordRows       Category = "RecordRows"
	CategoryPreBuiltGeometry Category = "PreBuiltGeometry"
	CategoryFileOrURLRef     Category = "FileOrURLRef"
	CategoryOpaqueText       Category = "OpaqueText"
)

// Geometry hints accepted in Options.Geometry.
const (
	GeometryPoint   = "point"
	GeometryPolygon = "polygon"
)

// Collection types accepted in Options.CollectionType.
const (
	CollectionFeature  = "FeatureCollection"
	CollectionGeometry = "GeometryCollection"
)

// Options steers classification and building. The zero value uses the
// defaults: geometry guessed from shape, lat/lon fields guessed from common
// names, FeatureCollection wrapping.
type Options struct {
	// Geometry forces point or polygon interpretation of numeric and
	// tabular inputs. It short-circuits the numeric length heuristics.
	Geometry string
	// LatField and LonField name the coordinate columns of tabular input.
	// When empty, common names (lat/latitude, lon/lng/long/longitude) are
	// tried.
	LatField string
	LonField string
	// GroupField assembles rows sharing a value into one multi-part
	// geometry instead of one geometry per row.
	GroupField string
	// GeometryField names an optional per-row geometry column. Rows of one
	// group must agree on its value.
	GeometryField string
	// CollectionType selects FeatureCollection (default) or
	// GeometryCollection wrapping for attribute-carrying geometry objects.
	CollectionType string
	// LatFirst declares that numeric pairs arrive latitude first and must
	// be reordered to GeoJSON lon/lat axis order.
	LatFirst bool
}

// Classify determines which category an input value belongs to. Rules are
// evaluated in order and the first match wins; an explicit Geometry hint
// overrides the numeric length heuristics. Inputs matching no category fail
// with ErrUnsupportedInputKind naming the value's Go type.
func Classify(input any, opts Options) (Category, error) {
	if nums, ok := toFloats(input); ok {
		return classifyNumeric(nums, opts)
	}

	if recs, ok := toRecords(input); ok {
		if len(recs) > 0 && allHaveCoordinates(recs, opts) {
			return CategoryLabeledPointList, nil
		}
		return CategoryRecordRows, nil
	}

	switch v := input.(type) {
	case *table.Table:
		return CategoryRecordRows, nil
	case SpatialObject:
		return CategoryPreBuiltGeometry, nil
	case string:
		if isURL(v) {
			return CategoryFileOrURLRef, nil
		}
		if _, err := os.Stat(v); err == nil {
			return CategoryFileOrURLRef, nil
		}
		return CategoryOpaqueText, nil
	}

	return "", eris.Wrapf(ErrUnsupportedInputKind, "igv: %T", input)
}

func classifyNumeric(nums []float64, opts Options) (Category, error) {
	switch opts.Geometry {
	case GeometryPoint:
		if len(nums) != 2 {
			return "", eris.Wrapf(ErrUnsupportedInputKind,
				"igv: point hint wants 2 numbers, got %d", len(nums))
		}
		return CategoryNumericPair, nil
	case GeometryPolygon:
		if len(nums) < 4 || len(nums)%2 != 0 {
			return "", eris.Wrapf(ErrUnsupportedInputKind,
				"igv: polygon hint wants an even numeric sequence of at least 4, got %d", len(nums))
		}
		return CategoryNumericRing, nil
	}

	switch {
	case len(nums) == 2:
		return CategoryNumericPair, nil
	case len(nums) > 2 && len(nums)%2 == 0:
		return CategoryNumericRing, nil
	}
	return "", eris.Wrapf(ErrUnsupportedInputKind,
		"igv: numeric sequence of unsupported length %d", len(nums))
}

// toFloats coerces flat numeric sequences. Coercion is explicit and total:
// a sequence with any non-numeric element is not numeric at all.
func toFloats(input any) ([]float64, bool) {
	switch v := input.(type) {
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			f, err := cast.ToFloat64E(e)
			if err != nil {
				return nil, false
			}
			out[i] = f
		}
		return out, len(v) > 0
	}
	return nil, false
}

func toRecords(input any) ([]map[string]any, bool) {
	switch v := input.(type) {
	case []map[string]any:
		return v, true
	case []map[string]string:
		out := make([]map[string]any, len(v))
		for i, rec := range v {
			m := make(map[string]any, len(rec))
			for k, val := range rec {
				m[k] = val
			}
			out[i] = m
		}
		return out, true
	case []any:
		// The shape a generic JSON decode produces: every element must be a
		// map for the sequence to count as records.
		out := make([]map[string]any, len(v))
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, false
			}
			out[i] = m
		}
		return out, len(v) > 0
	}
	return nil, false
}

func allHaveCoordinates(recs []map[string]any, opts Options) bool {
	for _, rec := range recs {
		if _, ok := findField(rec, opts.LatField, latFieldNames); !ok {
			return false
		}
		if _, ok := findField(rec, opts.LonField, lonFieldNames); !ok {
			return false
		}
	}
	return true
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return u.Host != ""
	}
	return false
}
