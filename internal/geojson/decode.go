package geojson

import (
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/sells-group/geoconv/internal/igv"
)

// ErrInvalidGeoJSON is returned when parsed text lacks a recognized GeoJSON
// structure.
var ErrInvalidGeoJSON = eris.New("invalid GeoJSON")

// Unmarshal parses GeoJSON text into an IGV. The structure is validated at
// this boundary: unknown or missing type tags fail, nesting depth must
// match the declared type, and open polygon rings are closed the same way
// the builder closes them.
func Unmarshal(data []byte) (*igv.IGV, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(ErrInvalidGeoJSON, err.Error())
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: top-level value is %T, not an object", raw)
	}
	g, err := decodeObject(obj)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, eris.Wrap(ErrInvalidGeoJSON, err.Error())
	}
	return g, nil
}

func decodeObject(obj map[string]any) (*igv.IGV, error) {
	typeTag, ok := obj["type"].(string)
	if !ok {
		return nil, eris.Wrap(ErrInvalidGeoJSON, "geojson: object has no type tag")
	}
	kind, ok := igv.ParseKind(typeTag)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: unknown type %q", typeTag)
	}

	switch kind {
	case igv.KindFeature:
		geomRaw, ok := obj["geometry"].(map[string]any)
		if !ok {
			return nil, eris.Wrap(ErrInvalidGeoJSON, "geojson: feature has no geometry object")
		}
		geometry, err := decodeObject(geomRaw)
		if err != nil {
			return nil, err
		}
		props, err := decodeProperties(obj["properties"])
		if err != nil {
			return nil, err
		}
		return &igv.IGV{Kind: kind, Geometry: geometry, Properties: props, SourceType: "geojson"}, nil

	case igv.KindFeatureCollection:
		return decodeCollection(kind, obj, "features")

	case igv.KindGeometryCollection:
		return decodeCollection(kind, obj, "geometries")
	}

	coords, err := decodeCoordinates(kind, obj["coordinates"])
	if err != nil {
		return nil, err
	}
	return &igv.IGV{Kind: kind, Coordinates: coords, SourceType: "geojson"}, nil
}

func decodeCollection(kind igv.Kind, obj map[string]any, field string) (*igv.IGV, error) {
	rawList, ok := obj[field].([]any)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s has no %s array", kind, field)
	}
	members := make([]*igv.IGV, 0, len(rawList))
	for i, raw := range rawList {
		memberObj, ok := raw.(map[string]any)
		if !ok {
			return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s member %d is %T", kind, i, raw)
		}
		m, err := decodeObject(memberObj)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return &igv.IGV{Kind: kind, Members: members, SourceType: "geojson"}, nil
}

func decodeProperties(raw any) (*igv.Properties, error) {
	props := igv.NewProperties()
	if raw == nil {
		return props, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: properties is %T, not an object", raw)
	}
	// JSON object key order is not observable through the decoder; sort for
	// a stable result.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		props.Set(k, m[k])
	}
	return props, nil
}

func decodeCoordinates(kind igv.Kind, raw any) (any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s has no coordinates array", kind)
	}

	switch igv.CoordinateDepth(kind) {
	case 0:
		return decodePosition(list)
	case 1:
		return decodePositionList(list)
	case 2:
		out := make([][]igv.Position, len(list))
		for i, e := range list {
			inner, ok := e.([]any)
			if !ok {
				return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s coordinate element %d is %T", kind, i, e)
			}
			line, err := decodePositionList(inner)
			if err != nil {
				return nil, err
			}
			if kind == igv.KindPolygon {
				line = igv.CloseRing(line)
			}
			out[i] = line
		}
		return out, nil
	case 3:
		out := make([][][]igv.Position, len(list))
		for i, e := range list {
			inner, ok := e.([]any)
			if !ok {
				return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s coordinate element %d is %T", kind, i, e)
			}
			rings := make([][]igv.Position, len(inner))
			for j, re := range inner {
				ringRaw, ok := re.([]any)
				if !ok {
					return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s ring %d.%d is %T", kind, i, j, re)
				}
				ring, err := decodePositionList(ringRaw)
				if err != nil {
					return nil, err
				}
				rings[j] = igv.CloseRing(ring)
			}
			out[i] = rings
		}
		return out, nil
	}
	return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: %s carries no coordinates", kind)
}

func decodePositionList(list []any) ([]igv.Position, error) {
	out := make([]igv.Position, len(list))
	for i, e := range list {
		pair, ok := e.([]any)
		if !ok {
			return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: position %d is %T", i, e)
		}
		pos, err := decodePosition(pair)
		if err != nil {
			return nil, err
		}
		out[i] = pos
	}
	return out, nil
}

func decodePosition(list []any) (igv.Position, error) {
	if len(list) < 2 {
		return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: position has %d ordinates", len(list))
	}
	pos := make(igv.Position, len(list))
	for i, e := range list {
		f, err := cast.ToFloat64E(e)
		if err != nil {
			return nil, eris.Wrapf(ErrInvalidGeoJSON, "geojson: ordinate %d is %T", i, e)
		}
		pos[i] = f
	}
	return pos, nil
}
