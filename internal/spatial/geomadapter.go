package spatial

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geoconv/internal/igv"
)

// geomObject adapts a twpayne/go-geom geometry, optionally carrying
// attribute rows (the data-frame flavored variant).
type geomObject struct {
	kind   igv.Kind
	coords any
	attrs  []map[string]any
}

// FromGeom wraps a go-geom geometry as a spatial object. attrs may be nil
// for a bare geometry.
func FromGeom(g geom.T, attrs []map[string]any) (igv.SpatialObject, error) {
	var kind igv.Kind
	var coords any

	switch v := g.(type) {
	case *geom.Point:
		kind = igv.KindPoint
		coords = coordToPosition(v.Coords())
	case *geom.MultiPoint:
		kind = igv.KindMultiPoint
		coords = coordsToPositions(v.Coords())
	case *geom.LineString:
		kind = igv.KindLineString
		coords = coordsToPositions(v.Coords())
	case *geom.MultiLineString:
		kind = igv.KindMultiLineString
		coords = nestedToPositions(v.Coords())
	case *geom.Polygon:
		kind = igv.KindPolygon
		coords = nestedToPositions(v.Coords())
	case *geom.MultiPolygon:
		kind = igv.KindMultiPolygon
		coords = deepToPositions(v.Coords())
	default:
		return nil, eris.Errorf("spatial: unsupported go-geom type %T", g)
	}

	return &geomObject{kind: kind, coords: coords, attrs: attrs}, nil
}

func (o *geomObject) GeometryKind() igv.Kind { return o.kind }

func (o *geomObject) ExtractCoordinates() any { return o.coords }

func (o *geomObject) ExtractAttributes() []map[string]any { return o.attrs }

func (o *geomObject) SourceType() string { return "geom" }

func coordToPosition(c geom.Coord) igv.Position {
	out := make(igv.Position, len(c))
	copy(out, c)
	return out
}

func coordsToPositions(cs []geom.Coord) []igv.Position {
	out := make([]igv.Position, len(cs))
	for i, c := range cs {
		out[i] = coordToPosition(c)
	}
	return out
}

func nestedToPositions(cs [][]geom.Coord) [][]igv.Position {
	out := make([][]igv.Position, len(cs))
	for i, c := range cs {
		out[i] = coordsToPositions(c)
	}
	return out
}

func deepToPositions(cs [][][]geom.Coord) [][][]igv.Position {
	out := make([][][]igv.Position, len(cs))
	for i, c := range cs {
		out[i] = nestedToPositions(c)
	}
	return out
}
