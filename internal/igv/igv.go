// Package igv defines the intermediate geographic value: the canonical
// in-memory representation every supported input is converted into before
// GeoJSON serialization. It also holds the input classifier and the
// geometry builder that produce it.
package igv

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
)

// Kind identifies the GeoJSON type an IGV serializes to.
type Kind string

// GeoJSON kinds.
const (
	KindPoint              Kind = "Point"
	KindMultiPoint         Kind = "MultiPoint"
	KindLineString         Kind = "LineString"
	KindMultiLineString    Kind = "MultiLineString"
	KindPolygon            Kind = "Polygon"
	KindMultiPolygon       Kind = "MultiPolygon"
	KindFeature            Kind = "Feature"
	KindFeatureCollection  Kind = "FeatureCollection"
	KindGeometryCollection Kind = "GeometryCollection"
)

// ParseKind returns the Kind for a GeoJSON type tag.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPoint, KindMultiPoint, KindLineString, KindMultiLineString,
		KindPolygon, KindMultiPolygon, KindFeature, KindFeatureCollection,
		KindGeometryCollection:
		return Kind(s), true
	}
	return "", false
}

// Position is a single coordinate, longitude first per RFC 7946.
type Position []float64

// Equal reports whether two positions have identical ordinates.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// CoordinateDepth returns the coordinate nesting depth required by a
// geometry kind, or -1 for non-geometry kinds.
func CoordinateDepth(k Kind) int {
	switch k {
	case KindPoint:
		return 0
	case KindMultiPoint, KindLineString:
		return 1
	case KindPolygon, KindMultiLineString:
		return 2
	case KindMultiPolygon:
		return 3
	default:
		return -1
	}
}

// IGV is the intermediate geographic value. Coordinates holds one of
// Position, []Position, [][]Position or [][][]Position depending on Kind.
// Geometry is set for Features, Members for the two collection kinds.
// An IGV is immutable once returned by Build or the GeoJSON decoder.
type IGV struct {
	Kind        Kind
	Coordinates any
	Geometry    *IGV
	Properties  *Properties
	Members     []*IGV
	SourceType  string
}

// Validate checks the structural invariants: coordinate nesting depth
// matches the kind, and every polygon ring is closed.
func (g *IGV) Validate() error {
	switch g.Kind {
	case KindFeature:
		if g.Geometry == nil {
			return eris.New("igv: feature without geometry")
		}
		return g.Geometry.Validate()
	case KindFeatureCollection, KindGeometryCollection:
		for _, m := range g.Members {
			if err := m.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	switch CoordinateDepth(g.Kind) {
	case 0:
		if _, ok := g.Coordinates.(Position); !ok {
			return eris.Errorf("igv: %s wants a bare position, got %T", g.Kind, g.Coordinates)
		}
	case 1:
		if _, ok := g.Coordinates.([]Position); !ok {
			return eris.Errorf("igv: %s wants a position sequence, got %T", g.Kind, g.Coordinates)
		}
	case 2:
		rings, ok := g.Coordinates.([][]Position)
		if !ok {
			return eris.Errorf("igv: %s wants nested position sequences, got %T", g.Kind, g.Coordinates)
		}
		if g.Kind == KindPolygon {
			for _, r := range rings {
				if !RingClosed(r) {
					return eris.New("igv: open polygon ring")
				}
			}
		}
	case 3:
		polys, ok := g.Coordinates.([][][]Position)
		if !ok {
			return eris.Errorf("igv: %s wants doubly nested position sequences, got %T", g.Kind, g.Coordinates)
		}
		for _, p := range polys {
			for _, r := range p {
				if !RingClosed(r) {
					return eris.New("igv: open polygon ring")
				}
			}
		}
	default:
		return eris.Errorf("igv: unknown kind %q", g.Kind)
	}
	return nil
}

// RingClosed reports whether the first and last positions of a ring match.
func RingClosed(ring []Position) bool {
	if len(ring) < 2 {
		return false
	}
	return ring[0].Equal(ring[len(ring)-1])
}

// CloseRing appends the first position to an open ring. Closed rings are
// returned unchanged.
func CloseRing(ring []Position) []Position {
	if len(ring) == 0 || RingClosed(ring) {
		return ring
	}
	out := make([]Position, len(ring), len(ring)+1)
	copy(out, ring)
	return append(out, ring[0])
}

// Equal reports structural equality between two IGVs. Property key order is
// ignored; coordinate values compare exactly.
func Equal(a, b *IGV) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if !coordsEqual(a.Coordinates, b.Coordinates) {
		return false
	}
	if !Equal(a.Geometry, b.Geometry) {
		return false
	}
	if !a.Properties.equal(b.Properties) {
		return false
	}
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if !Equal(a.Members[i], b.Members[i]) {
			return false
		}
	}
	return true
}

func coordsEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Position:
		bv, ok := b.(Position)
		return ok && av.Equal(bv)
	case []Position:
		bv, ok := b.([]Position)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case [][]Position:
		bv, ok := b.([][]Position)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !coordsEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case [][][]Position:
		bv, ok := b.([][][]Position)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !coordsEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Properties is an ordered attribute mapping attached to a Feature.
// Insertion order is preserved for deterministic serialization.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// Set stores a value, appending the key on first use.
func (p *Properties) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for a key and whether it is present.
func (p *Properties) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Len returns the number of entries.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Properties) equal(q *Properties) bool {
	if p.Len() != q.Len() {
		return false
	}
	for _, k := range p.Keys() {
		pv, _ := p.Get(k)
		qv, ok := q.Get(k)
		if !ok || !valueEqual(pv, qv) {
			return false
		}
	}
	return true
}

// valueEqual compares property values across a serialization round trip.
// JSON decoding widens every number to float64 and rebuilds nested values
// as []any and map[string]any, so numbers compare numerically and
// containers compare element-wise.
func valueEqual(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && na == nb
	}
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !valueEqual(v, w) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// toNumber reports whether a value is numeric and widens it to float64.
// Strings are never numbers here; "125" and 125 must stay distinct.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// SortedKeys returns the keys in lexical order, used by the decoder where no
// source ordering exists.
func (p *Properties) SortedKeys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	sort.Strings(out)
	return out
}

// SpatialObject is the capability surface a pre-built geometry adapter
// exposes. Adapters for concrete geometry libraries live in
// internal/spatial; the builder depends only on this interface.
type SpatialObject interface {
	// GeometryKind returns the geometry kind the object maps to.
	GeometryKind() Kind
	// ExtractCoordinates returns the coordinates with the nesting required
	// by GeometryKind.
	ExtractCoordinates() any
	// ExtractAttributes returns per-part attribute rows, or nil when the
	// object carries no attribute table.
	ExtractAttributes() []map[string]any
	// SourceType names the originating library for round-trip display.
	SourceType() string
}
