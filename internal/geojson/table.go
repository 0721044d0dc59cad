package geojson

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/igv"
	"github.com/sells-group/geoconv/internal/table"
)

// Flatten reconstructs tabular data from a FeatureCollection of Points:
// one row per feature with long/lat columns followed by the property
// columns of the first feature.
func Flatten(g *igv.IGV) (*table.Table, error) {
	if g.Kind != igv.KindFeatureCollection {
		return nil, eris.Errorf("geojson: cannot flatten %s to a table", g.Kind)
	}
	if len(g.Members) == 0 {
		return nil, eris.New("geojson: cannot flatten an empty FeatureCollection")
	}

	cols := []string{"long", "lat"}
	propKeys := g.Members[0].Properties.SortedKeys()
	cols = append(cols, propKeys...)

	t := table.New(cols)
	for i, f := range g.Members {
		if f.Kind != igv.KindFeature || f.Geometry == nil {
			return nil, eris.Errorf("geojson: member %d is not a feature", i)
		}
		if f.Geometry.Kind != igv.KindPoint {
			return nil, eris.Errorf("geojson: member %d is a %s, only Point features flatten", i, f.Geometry.Kind)
		}
		pos, ok := f.Geometry.Coordinates.(igv.Position)
		if !ok || len(pos) < 2 {
			return nil, eris.Errorf("geojson: member %d has malformed coordinates", i)
		}

		row := make([]any, 0, len(cols))
		row = append(row, pos[0], pos[1])
		for _, k := range propKeys {
			v, _ := f.Properties.Get(k)
			row = append(row, v)
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
