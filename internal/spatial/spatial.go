// Package spatial adapts pre-built geometry objects from third-party
// geometry libraries to the narrow capability interface the builder
// consumes. Two stacks are supported: twpayne/go-geom and paulmach/orb.
package spatial

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geoconv/internal/igv"
)

// Adapt wraps a geometry library value as a spatial object. Values already
// implementing the capability interface pass through unchanged; anything
// else reports false.
func Adapt(v any) (igv.SpatialObject, bool) {
	switch g := v.(type) {
	case igv.SpatialObject:
		return g, true
	case geom.T:
		obj, err := FromGeom(g, nil)
		return obj, err == nil
	case orb.Geometry:
		obj, err := FromOrb(g, nil)
		return obj, err == nil
	}
	return nil, false
}
