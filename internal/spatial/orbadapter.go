package spatial

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/igv"
)

// orbObject adapts a paulmach/orb geometry, optionally carrying attribute
// rows.
type orbObject struct {
	kind   igv.Kind
	coords any
	attrs  []map[string]any
}

// FromOrb wraps an orb geometry as a spatial object. attrs may be nil for
// a bare geometry.
func FromOrb(g orb.Geometry, attrs []map[string]any) (igv.SpatialObject, error) {
	var kind igv.Kind
	var coords any

	switch v := g.(type) {
	case orb.Point:
		kind = igv.KindPoint
		coords = pointToPosition(v)
	case orb.MultiPoint:
		kind = igv.KindMultiPoint
		coords = pointsToPositions(v)
	case orb.LineString:
		kind = igv.KindLineString
		coords = pointsToPositions(v)
	case orb.MultiLineString:
		kind = igv.KindMultiLineString
		out := make([][]igv.Position, len(v))
		for i, ls := range v {
			out[i] = pointsToPositions(ls)
		}
		coords = out
	case orb.Ring:
		kind = igv.KindPolygon
		coords = [][]igv.Position{pointsToPositions(v)}
	case orb.Polygon:
		kind = igv.KindPolygon
		coords = ringsToPositions(v)
	case orb.MultiPolygon:
		kind = igv.KindMultiPolygon
		out := make([][][]igv.Position, len(v))
		for i, p := range v {
			out[i] = ringsToPositions(p)
		}
		coords = out
	default:
		return nil, eris.Errorf("spatial: unsupported orb type %T", g)
	}

	return &orbObject{kind: kind, coords: coords, attrs: attrs}, nil
}

func (o *orbObject) GeometryKind() igv.Kind { return o.kind }

func (o *orbObject) ExtractCoordinates() any { return o.coords }

func (o *orbObject) ExtractAttributes() []map[string]any { return o.attrs }

func (o *orbObject) SourceType() string { return "orb" }

func pointToPosition(p orb.Point) igv.Position {
	return igv.Position{p[0], p[1]}
}

func pointsToPositions(pts []orb.Point) []igv.Position {
	out := make([]igv.Position, len(pts))
	for i, p := range pts {
		out[i] = pointToPosition(p)
	}
	return out
}

func ringsToPositions(rings []orb.Ring) [][]igv.Position {
	out := make([][]igv.Position, len(rings))
	for i, r := range rings {
		out[i] = pointsToPositions(r)
	}
	return out
}
