package format

import (
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/sells-group/geoconv/internal/igv"
)

// ConvertShapefile reads a shapefile through the external geospatial
// library and returns a FeatureCollection: one feature per record with the
// DBF attributes as properties.
func ConvertShapefile(shpPath string) (*igv.IGV, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "format: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	var features []*igv.IGV
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		geometry := shapeToIGV(shape)
		if geometry == nil {
			skipped++
			continue
		}

		props := igv.NewProperties()
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val == "" {
				props.Set(name, nil)
				continue
			}
			props.Set(name, decodeDBFString(val))
		}

		features = append(features, &igv.IGV{
			Kind:       igv.KindFeature,
			Geometry:   geometry,
			Properties: props,
		})
	}

	if skipped > 0 {
		zap.L().Debug("format: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	if len(features) == 0 {
		return nil, eris.Wrapf(ErrConversionFailed, "format: %s has no usable records", shpPath)
	}

	return &igv.IGV{
		Kind:       igv.KindFeatureCollection,
		Members:    features,
		SourceType: "shapefile",
	}, nil
}

// shapeToIGV converts a go-shp shape to a geometry IGV. Unsupported or nil
// shapes return nil and are skipped by the caller.
func shapeToIGV(shape shp.Shape) *igv.IGV {
	switch s := shape.(type) {
	case *shp.Point:
		return &igv.IGV{Kind: igv.KindPoint, Coordinates: igv.Position{s.X, s.Y}}

	case *shp.PolyLine:
		lines := partPositions(s.NumParts, s.Parts, s.Points)
		if len(lines) == 0 {
			return nil
		}
		if len(lines) == 1 {
			return &igv.IGV{Kind: igv.KindLineString, Coordinates: lines[0]}
		}
		return &igv.IGV{Kind: igv.KindMultiLineString, Coordinates: lines}

	case *shp.Polygon:
		parts := partPositions(s.NumParts, s.Parts, s.Points)
		if len(parts) == 0 {
			return nil
		}
		rings := make([][]igv.Position, len(parts))
		for i, p := range parts {
			rings[i] = igv.CloseRing(p)
		}
		return &igv.IGV{Kind: igv.KindPolygon, Coordinates: rings}
	}
	return nil
}

// partPositions splits the flat point array of a multi-part shape record
// into per-part position sequences.
func partPositions(numParts int32, parts []int32, points []shp.Point) [][]igv.Position {
	if numParts == 0 || len(points) == 0 {
		return nil
	}
	out := make([][]igv.Position, 0, numParts)
	for i := int32(0); i < numParts; i++ {
		start := parts[i]
		end := int32(len(points))
		if i+1 < numParts {
			end = parts[i+1]
		}
		positions := make([]igv.Position, 0, end-start)
		for j := start; j < end; j++ {
			positions = append(positions, igv.Position{points[j].X, points[j].Y})
		}
		out = append(out, positions)
	}
	return out
}

// decodeDBFString reinterprets a DBF attribute as Latin-1 when it is not
// valid UTF-8. DBF files commonly predate Unicode.
func decodeDBFString(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
