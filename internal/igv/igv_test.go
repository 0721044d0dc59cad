package igv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		g       *IGV
		wantErr string
	}{
		{
			name: "valid point",
			g:    &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
		},
		{
			name: "valid closed polygon",
			g: &IGV{Kind: KindPolygon, Coordinates: [][]Position{
				{{0, 0}, {0, 1}, {1, 1}, {0, 0}},
			}},
		},
		{
			name: "open polygon ring",
			g: &IGV{Kind: KindPolygon, Coordinates: [][]Position{
				{{0, 0}, {0, 1}, {1, 1}},
			}},
			wantErr: "open polygon ring",
		},
		{
			name:    "point with wrong nesting",
			g:       &IGV{Kind: KindPoint, Coordinates: []Position{{1, 2}}},
			wantErr: "bare position",
		},
		{
			name:    "feature without geometry",
			g:       &IGV{Kind: KindFeature},
			wantErr: "feature without geometry",
		},
		{
			name: "collection validates members",
			g: &IGV{Kind: KindFeatureCollection, Members: []*IGV{
				{Kind: KindFeature, Geometry: &IGV{Kind: KindPoint, Coordinates: []Position{{1, 2}}}},
			}},
			wantErr: "bare position",
		},
		{
			name:    "unknown kind",
			g:       &IGV{Kind: Kind("Blob")},
			wantErr: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.g.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCloseRing(t *testing.T) {
	t.Parallel()

	open := []Position{{0, 0}, {0, 1}, {1, 1}}
	closed := CloseRing(open)
	assert.Len(t, closed, 4)
	assert.Equal(t, closed[0], closed[3])
	assert.Len(t, open, 3, "input ring is not mutated")

	same := CloseRing(closed)
	assert.Len(t, same, 4)
}

func TestEqualIgnoresSourceAndPropertyOrder(t *testing.T) {
	t.Parallel()

	propsA := NewProperties()
	propsA.Set("name", "x")
	propsA.Set("pop", 12)

	propsB := NewProperties()
	propsB.Set("pop", 12)
	propsB.Set("name", "x")

	a := &IGV{
		Kind: KindFeatureCollection,
		Members: []*IGV{{
			Kind:       KindFeature,
			Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
			Properties: propsA,
		}},
		SourceType: "numeric",
	}
	b := &IGV{
		Kind: KindFeatureCollection,
		Members: []*IGV{{
			Kind:       KindFeature,
			Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
			Properties: propsB,
		}},
		SourceType: "geojson",
	}

	assert.True(t, Equal(a, b))

	propsB.Set("pop", 13)
	assert.False(t, Equal(a, b))
}

func TestEqualNumericProperties(t *testing.T) {
	t.Parallel()

	// Decoding widens numbers to float64; equality must be numeric, not
	// type-identical.
	propsA := NewProperties()
	propsA.Set("pop", 125)
	propsB := NewProperties()
	propsB.Set("pop", 125.0)

	a := &IGV{
		Kind:       KindFeature,
		Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
		Properties: propsA,
	}
	b := &IGV{
		Kind:       KindFeature,
		Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
		Properties: propsB,
	}
	assert.True(t, Equal(a, b))

	// A numeric string is not a number.
	propsB.Set("pop", "125")
	assert.False(t, Equal(a, b))
}

func TestEqualNestedProperties(t *testing.T) {
	t.Parallel()

	propsA := NewProperties()
	propsA.Set("tags", []any{"a", "b"})
	propsA.Set("meta", map[string]any{"count": 2})

	propsB := NewProperties()
	propsB.Set("tags", []any{"a", "b"})
	propsB.Set("meta", map[string]any{"count": 2.0})

	a := &IGV{
		Kind:       KindFeature,
		Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
		Properties: propsA,
	}
	b := &IGV{
		Kind:       KindFeature,
		Geometry:   &IGV{Kind: KindPoint, Coordinates: Position{1, 2}},
		Properties: propsB,
	}

	assert.NotPanics(t, func() {
		assert.True(t, Equal(a, b))
	})

	propsB.Set("tags", []any{"a", "c"})
	assert.False(t, Equal(a, b))
}

func TestEqualCoordinates(t *testing.T) {
	t.Parallel()

	a := &IGV{Kind: KindLineString, Coordinates: []Position{{1, 2}, {3, 4}}}
	b := &IGV{Kind: KindLineString, Coordinates: []Position{{1, 2}, {3, 4}}}
	assert.True(t, Equal(a, b))

	c := &IGV{Kind: KindLineString, Coordinates: []Position{{1, 2}, {3, 5}}}
	assert.False(t, Equal(a, c))

	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}

func TestPropertiesOrder(t *testing.T) {
	t.Parallel()

	p := NewProperties()
	p.Set("z", 1)
	p.Set("a", 2)
	p.Set("z", 3)

	assert.Equal(t, []string{"z", "a"}, p.Keys(), "re-set keeps the original slot")
	assert.Equal(t, []string{"a", "z"}, p.SortedKeys())
	assert.Equal(t, 2, p.Len())

	v, ok := p.Get("z")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	var nilProps *Properties
	assert.Equal(t, 0, nilProps.Len())
	assert.Nil(t, nilProps.Keys())
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, ok := ParseKind("MultiPolygon")
	require.True(t, ok)
	assert.Equal(t, KindMultiPolygon, k)

	_, ok = ParseKind("Topology")
	assert.False(t, ok)
}
