// Package geojson serializes intermediate geographic values to RFC 7946
// GeoJSON text and parses GeoJSON text back into IGVs.
package geojson

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/igv"
)

// Marshal emits the GeoJSON document for an IGV. The output is
// deterministic: property keys keep their insertion order and coordinates
// are formatted with the shortest fixed-point representation, never
// scientific notation.
func Marshal(g *igv.IGV) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeIGV(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeIGV(buf *bytes.Buffer, g *igv.IGV) error {
	switch g.Kind {
	case igv.KindFeature:
		buf.WriteString(`{"type":"Feature","geometry":`)
		if err := writeIGV(buf, g.Geometry); err != nil {
			return err
		}
		buf.WriteString(`,"properties":`)
		if err := writeProperties(buf, g.Properties); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil

	case igv.KindFeatureCollection:
		buf.WriteString(`{"type":"FeatureCollection","features":[`)
		for i, m := range g.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeIGV(buf, m); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
		return nil

	case igv.KindGeometryCollection:
		buf.WriteString(`{"type":"GeometryCollection","geometries":[`)
		for i, m := range g.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeIGV(buf, m); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
		return nil
	}

	buf.WriteString(`{"type":"`)
	buf.WriteString(string(g.Kind))
	buf.WriteString(`","coordinates":`)
	if err := writeCoordinates(buf, g.Coordinates); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeCoordinates(buf *bytes.Buffer, coords any) error {
	switch v := coords.(type) {
	case igv.Position:
		writePosition(buf, v)
	case []igv.Position:
		buf.WriteByte('[')
		for i, p := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			writePosition(buf, p)
		}
		buf.WriteByte(']')
	case [][]igv.Position:
		buf.WriteByte('[')
		for i, line := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCoordinates(buf, line); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case [][][]igv.Position:
		buf.WriteByte('[')
		for i, poly := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCoordinates(buf, poly); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return eris.Errorf("geojson: cannot encode coordinates of type %T", coords)
	}
	return nil
}

func writePosition(buf *bytes.Buffer, p igv.Position) {
	buf.WriteByte('[')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(formatOrdinate(f))
	}
	buf.WriteByte(']')
}

// formatOrdinate renders a coordinate value without formatting drift: the
// shortest decimal that round-trips, in fixed-point form.
func formatOrdinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeProperties(buf *bytes.Buffer, props *igv.Properties) error {
	buf.WriteByte('{')
	for i, k := range props.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return eris.Wrapf(err, "geojson: encode property key %q", k)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		v, _ := props.Get(k)
		valJSON, err := json.Marshal(v)
		if err != nil {
			return eris.Wrapf(err, "geojson: encode property %q", k)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return nil
}

// ToMap returns the parsed in-memory form of an IGV, used by the in-memory
// destination mode.
func ToMap(g *igv.IGV) (map[string]any, error) {
	text, err := Marshal(g)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(text, &out); err != nil {
		return nil, eris.Wrap(err, "geojson: reparse for map form")
	}
	return out, nil
}
