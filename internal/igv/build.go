package igv

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/sells-group/geoconv/internal/table"
)

// Common coordinate column names tried when Options leave LatField or
// LonField empty.
var (
	latFieldNames = []string{"lat", "latitude", "y"}
	lonFieldNames = []string{"lon", "lng", "long", "longitude", "x"}
)

// Source type tags recorded on built IGVs.
const (
	SourceNumeric = "numeric"
	SourceRecords = "records"
	SourceTable   = "table"
)

// BuildValue classifies an input and builds its IGV in one step.
func BuildValue(input any, opts Options) (*IGV, error) {
	cat, err := Classify(input, opts)
	if err != nil {
		return nil, err
	}
	return Build(cat, input, opts)
}

// Build constructs the intermediate geographic value for a classified
// input. The returned IGV is fully validated: nesting depth matches the
// kind and every polygon ring is closed.
func Build(cat Category, input any, opts Options) (*IGV, error) {
	switch cat {
	case CategoryNumericPair:
		nums, ok := toFloats(input)
		if !ok || len(nums) != 2 {
			return nil, eris.Wrapf(ErrUnsupportedInputKind, "igv: %T is not a numeric pair", input)
		}
		return &IGV{
			Kind:        KindPoint,
			Coordinates: pairToPosition(nums[0], nums[1], opts.LatFirst),
			SourceType:  SourceNumeric,
		}, nil

	case CategoryNumericRing:
		nums, ok := toFloats(input)
		if !ok || len(nums) < 4 || len(nums)%2 != 0 {
			return nil, eris.Wrapf(ErrUnsupportedInputKind, "igv: %T is not a numeric ring", input)
		}
		ring := make([]Position, 0, len(nums)/2+1)
		for i := 0; i < len(nums); i += 2 {
			ring = append(ring, pairToPosition(nums[i], nums[i+1], opts.LatFirst))
		}
		return &IGV{
			Kind:        KindPolygon,
			Coordinates: [][]Position{CloseRing(ring)},
			SourceType:  SourceNumeric,
		}, nil

	case CategoryLabeledPointList:
		recs, ok := toRecords(input)
		if !ok {
			return nil, eris.Wrapf(ErrUnsupportedInputKind, "igv: %T is not a record sequence", input)
		}
		rs := rowsFromRecords(recs)
		return buildRows(rs, opts, SourceRecords)

	case CategoryRecordRows:
		rs, src, err := rowsFromInput(input)
		if err != nil {
			return nil, err
		}
		return buildRows(rs, opts, src)

	case CategoryPreBuiltGeometry:
		obj, ok := input.(SpatialObject)
		if !ok {
			return nil, eris.Wrapf(ErrUnsupportedInputKind, "igv: %T is not a spatial object", input)
		}
		return buildSpatial(obj, opts)

	case CategoryFileOrURLRef, CategoryOpaqueText:
		return nil, eris.Wrapf(ErrNotBuildable, "igv: %s", cat)
	}

	return nil, eris.Wrapf(ErrUnsupportedInputKind, "igv: unknown category %q", cat)
}

func pairToPosition(a, b float64, latFirst bool) Position {
	if latFirst {
		return Position{b, a}
	}
	return Position{a, b}
}

// rowset is the builder's uniform view of tabular input: named columns in a
// stable order plus one map per row.
type rowset struct {
	cols []string
	rows []map[string]any
}

func rowsFromInput(input any) (rowset, string, error) {
	switch v := input.(type) {
	case *table.Table:
		return rowset{cols: v.Columns(), rows: v.Records()}, SourceTable, nil
	default:
		recs, ok := toRecords(input)
		if !ok {
			return rowset{}, "", eris.Wrapf(ErrUnsupportedInputKind, "igv: %T is not tabular", input)
		}
		return rowsFromRecords(recs), SourceRecords, nil
	}
}

// rowsFromRecords derives a stable column order from the union of record
// keys. Map iteration order is random, so the union is sorted.
func rowsFromRecords(recs []map[string]any) rowset {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range recs {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return rowset{cols: cols, rows: recs}
}

// buildRows assembles tabular rows into a FeatureCollection: one Point per
// row by default, multi-part geometries per group when GroupField is set,
// one Polygon per group (or one overall) under the polygon hint.
func buildRows(rs rowset, opts Options, src string) (*IGV, error) {
	if len(rs.rows) == 0 {
		return nil, eris.Wrap(ErrEmptyInput, "igv: zero rows")
	}

	geometry := opts.Geometry
	if geometry == "" {
		geometry = GeometryPoint
	}

	propCols := propertyColumns(rs.cols, opts)

	var features []*IGV
	var err error
	switch {
	case opts.GroupField != "":
		features, err = buildGroupedFeatures(rs, opts, geometry, propCols)
	case geometry == GeometryPolygon:
		features, err = buildSinglePolygonFeature(rs, opts, propCols)
	default:
		features, err = buildPointFeatures(rs, opts, propCols)
	}
	if err != nil {
		return nil, err
	}

	return &IGV{Kind: KindFeatureCollection, Members: features, SourceType: src}, nil
}

// propertyColumns returns the columns copied into feature properties: all
// columns except the coordinate and per-row geometry columns.
func propertyColumns(cols []string, opts Options) []string {
	latKey := coordKey(cols, opts.LatField, latFieldNames)
	lonKey := coordKey(cols, opts.LonField, lonFieldNames)

	var out []string
	for _, c := range cols {
		if c == latKey || c == lonKey {
			continue
		}
		if opts.GeometryField != "" && c == opts.GeometryField {
			continue
		}
		out = append(out, c)
	}
	return out
}

func coordKey(cols []string, explicit string, candidates []string) string {
	if explicit != "" {
		return explicit
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	for _, c := range candidates {
		if have[c] {
			return c
		}
	}
	return ""
}

func buildPointFeatures(rs rowset, opts Options, propCols []string) ([]*IGV, error) {
	features := make([]*IGV, 0, len(rs.rows))
	for i, row := range rs.rows {
		pos, err := rowPosition(row, i, opts)
		if err != nil {
			return nil, err
		}
		features = append(features, &IGV{
			Kind:       KindFeature,
			Geometry:   &IGV{Kind: KindPoint, Coordinates: pos},
			Properties: rowProperties(row, propCols),
		})
	}
	return features, nil
}

func buildSinglePolygonFeature(rs rowset, opts Options, _ []string) ([]*IGV, error) {
	ring := make([]Position, 0, len(rs.rows)+1)
	for i, row := range rs.rows {
		pos, err := rowPosition(row, i, opts)
		if err != nil {
			return nil, err
		}
		ring = append(ring, pos)
	}
	return []*IGV{{
		Kind:       KindFeature,
		Geometry:   &IGV{Kind: KindPolygon, Coordinates: [][]Position{CloseRing(ring)}},
		Properties: NewProperties(),
	}}, nil
}

// buildGroupedFeatures assembles one multi-part feature per group value,
// preserving both first-seen group order and row order within a group.
// Properties are taken from the first row of each group.
func buildGroupedFeatures(rs rowset, opts Options, geometry string, propCols []string) ([]*IGV, error) {
	type group struct {
		key      any
		kind     string
		coords   []Position
		firstRow map[string]any
	}

	var order []string
	groups := make(map[string]*group)

	for i, row := range rs.rows {
		key, ok := row[opts.GroupField]
		if !ok {
			return nil, eris.Wrapf(ErrMissingCoordinateField,
				"igv: row %d lacks group field %q", i, opts.GroupField)
		}
		keyStr := cast.ToString(key)

		rowKind := geometry
		if opts.GeometryField != "" {
			raw, ok := row[opts.GeometryField]
			if !ok {
				return nil, eris.Wrapf(ErrInconsistentGroupGeometry,
					"igv: row %d lacks geometry field %q", i, opts.GeometryField)
			}
			rowKind = cast.ToString(raw)
			if rowKind != GeometryPoint && rowKind != GeometryPolygon {
				return nil, eris.Wrapf(ErrInconsistentGroupGeometry,
					"igv: row %d has unknown geometry %q", i, rowKind)
			}
		}

		pos, err := rowPosition(row, i, opts)
		if err != nil {
			return nil, err
		}

		g, ok := groups[keyStr]
		if !ok {
			g = &group{key: key, kind: rowKind, firstRow: row}
			groups[keyStr] = g
			order = append(order, keyStr)
		} else if g.kind != rowKind {
			return nil, eris.Wrapf(ErrInconsistentGroupGeometry,
				"igv: group %q mixes %s and %s", keyStr, g.kind, rowKind)
		}
		g.coords = append(g.coords, pos)
	}

	features := make([]*IGV, 0, len(order))
	for _, keyStr := range order {
		g := groups[keyStr]

		var geomIGV *IGV
		switch g.kind {
		case GeometryPolygon:
			geomIGV = &IGV{Kind: KindPolygon, Coordinates: [][]Position{CloseRing(g.coords)}}
		default:
			geomIGV = &IGV{Kind: KindMultiPoint, Coordinates: g.coords}
		}

		features = append(features, &IGV{
			Kind:       KindFeature,
			Geometry:   geomIGV,
			Properties: rowProperties(g.firstRow, propCols),
		})
	}
	return features, nil
}

// rowPosition extracts the [lon, lat] position from a row. The missing or
// non-numeric field is named in the error.
func rowPosition(row map[string]any, idx int, opts Options) (Position, error) {
	lat, err := coordValue(row, idx, opts.LatField, latFieldNames)
	if err != nil {
		return nil, err
	}
	lon, err := coordValue(row, idx, opts.LonField, lonFieldNames)
	if err != nil {
		return nil, err
	}
	return Position{lon, lat}, nil
}

func coordValue(row map[string]any, idx int, explicit string, candidates []string) (float64, error) {
	key, ok := findField(row, explicit, candidates)
	if !ok {
		name := explicit
		if name == "" {
			name = candidates[0]
		}
		return 0, eris.Wrapf(ErrMissingCoordinateField, "igv: row %d lacks field %q", idx, name)
	}
	f, err := cast.ToFloat64E(row[key])
	if err != nil {
		return 0, eris.Wrapf(ErrMissingCoordinateField,
			"igv: row %d field %q is not numeric: %v", idx, key, row[key])
	}
	return f, nil
}

func findField(row map[string]any, explicit string, candidates []string) (string, bool) {
	if explicit != "" {
		_, ok := row[explicit]
		return explicit, ok
	}
	for _, c := range candidates {
		if _, ok := row[c]; ok {
			return c, true
		}
	}
	return "", false
}

// rowProperties copies the property columns of a row in column order.
// Missing values become an explicit null so every feature of a collection
// carries the same key set.
func rowProperties(row map[string]any, propCols []string) *Properties {
	props := NewProperties()
	for _, c := range propCols {
		if v, ok := row[c]; ok {
			props.Set(c, v)
		} else {
			props.Set(c, nil)
		}
	}
	return props
}

// buildSpatial converts a pre-built geometry object through its capability
// interface. Ring closure is re-validated at this boundary rather than
// trusted from the source library.
func buildSpatial(obj SpatialObject, opts Options) (*IGV, error) {
	kind := obj.GeometryKind()
	coords := closeRings(kind, obj.ExtractCoordinates())

	g := &IGV{Kind: kind, Coordinates: coords, SourceType: obj.SourceType()}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	attrs := obj.ExtractAttributes()
	if attrs == nil {
		return g, nil
	}

	// One attribute row per part splits the multi geometry into single-part
	// members; otherwise the whole geometry stays one member.
	parts := splitParts(g)
	if len(attrs) != len(parts) {
		parts = []*IGV{g}
	}

	if opts.CollectionType == CollectionGeometry {
		members := make([]*IGV, len(parts))
		for i, p := range parts {
			members[i] = &IGV{Kind: p.Kind, Coordinates: p.Coordinates}
		}
		return &IGV{Kind: KindGeometryCollection, Members: members, SourceType: obj.SourceType()}, nil
	}

	features := make([]*IGV, len(parts))
	for i, p := range parts {
		props := NewProperties()
		if i < len(attrs) {
			keys := make([]string, 0, len(attrs[i]))
			for k := range attrs[i] {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				props.Set(k, attrs[i][k])
			}
		}
		features[i] = &IGV{
			Kind:       KindFeature,
			Geometry:   &IGV{Kind: p.Kind, Coordinates: p.Coordinates},
			Properties: props,
		}
	}
	return &IGV{Kind: KindFeatureCollection, Members: features, SourceType: obj.SourceType()}, nil
}

func closeRings(kind Kind, coords any) any {
	switch kind {
	case KindPolygon:
		if rings, ok := coords.([][]Position); ok {
			out := make([][]Position, len(rings))
			for i, r := range rings {
				out[i] = CloseRing(r)
			}
			return out
		}
	case KindMultiPolygon:
		if polys, ok := coords.([][][]Position); ok {
			out := make([][][]Position, len(polys))
			for i, p := range polys {
				rings := make([][]Position, len(p))
				for j, r := range p {
					rings[j] = CloseRing(r)
				}
				out[i] = rings
			}
			return out
		}
	}
	return coords
}

// splitParts breaks a multi-part geometry into its single-part pieces so
// attribute rows can attach one per part. Single geometries are one part.
func splitParts(g *IGV) []*IGV {
	switch g.Kind {
	case KindMultiPoint:
		pts := g.Coordinates.([]Position)
		out := make([]*IGV, len(pts))
		for i, p := range pts {
			out[i] = &IGV{Kind: KindPoint, Coordinates: p}
		}
		return out
	case KindMultiLineString:
		lines := g.Coordinates.([][]Position)
		out := make([]*IGV, len(lines))
		for i, l := range lines {
			out[i] = &IGV{Kind: KindLineString, Coordinates: l}
		}
		return out
	case KindMultiPolygon:
		polys := g.Coordinates.([][][]Position)
		out := make([]*IGV, len(polys))
		for i, p := range polys {
			out[i] = &IGV{Kind: KindPolygon, Coordinates: p}
		}
		return out
	}
	return []*IGV{g}
}
