package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geoconv/internal/format"
	"github.com/sells-group/geoconv/internal/geojson"
	"github.com/sells-group/geoconv/internal/igv"
)

func TestReadInlineText(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	res, err := e.Read(context.Background(), ` {"type":"Point","coordinates":[30,10]}`, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, igv.KindPoint, res.IGV.Kind)
	assert.Equal(t, igv.Position{30, 10}, res.IGV.Coordinates)
}

func TestReadInlineInvalid(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	_, err := e.Read(context.Background(), `{"type":"Nope"}`, ReadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, geojson.ErrInvalidGeoJSON)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fc.geojson")
	text := `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[30,10]},"properties":{"name":"a"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	e, _, _, _ := newTestEngine()
	res, err := e.Read(context.Background(), path, ReadOptions{Table: true})
	require.NoError(t, err)

	require.NotNil(t, res.Table)
	assert.Equal(t, []string{"long", "lat", "name"}, res.Table.Columns())
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, 30.0, res.Table.Row(0)["long"])
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	_, err := e.Read(context.Background(), filepath.Join(t.TempDir(), "gone.geojson"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.geojson")
}

func TestReadTopology(t *testing.T) {
	t.Parallel()

	e, _, _, tc := newTestEngine()
	tc.geoText = []byte(`{"type":"Point","coordinates":[1,2]}`)

	res, err := e.Read(context.Background(),
		`{"type":"Topology","objects":{"o":{}},"arcs":[]}`, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, igv.KindPoint, res.IGV.Kind)
	assert.Equal(t, string(tc.geoText), string(res.Text))
}

func TestReadRemoteRejectedExtension(t *testing.T) {
	t.Parallel()

	e, f, _, _ := newTestEngine()
	_, err := e.Read(context.Background(), "https://example.com/notes.txt", ReadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrUnsupportedFileExtension)
	assert.Empty(t, f.calls)
}

func TestReadNonJSONFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("lat,long\n10,30\n"), 0o644))

	e, _, _, _ := newTestEngine()
	res, err := e.Read(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, igv.KindFeatureCollection, res.IGV.Kind)
	require.Len(t, res.IGV.Members, 1)
}

func TestIsTopology(t *testing.T) {
	t.Parallel()

	assert.True(t, isTopology([]byte(`{"type":"Topology","objects":{}}`)))
	assert.False(t, isTopology([]byte(`{"type":"FeatureCollection"}`)))
	assert.False(t, isTopology([]byte(`not json`)))
}
