package convert

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geoconv/internal/format"
	"github.com/sells-group/geoconv/internal/igv"
)

// stubFetcher serves canned bytes for DownloadTemp and records the URLs it
// was asked for.
type stubFetcher struct {
	content []byte
	ext     string
	calls   []string
	err     error
}

func (s *stubFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(nil), nil
}

func (s *stubFetcher) DownloadToFile(_ context.Context, url, path string) (int64, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.content)), os.WriteFile(path, s.content, 0o644)
}

func (s *stubFetcher) DownloadTemp(_ context.Context, url string) (string, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return "", s.err
	}
	f, err := os.CreateTemp("", "stub-*"+s.ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(s.content); err != nil {
		return "", err
	}
	return f.Name(), f.Close()
}

func (s *stubFetcher) Upload(_ context.Context, url, _, _ string) ([]byte, error) {
	s.calls = append(s.calls, url)
	return s.content, s.err
}

// stubOgre returns canned GeoJSON for web conversions.
type stubOgre struct {
	text  []byte
	calls int
	err   error
}

func (s *stubOgre) Convert(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.text, s.err
}

// stubTopo fakes the topology tools.
type stubTopo struct {
	topoText []byte
	geoText  []byte
	err      error
}

func (s *stubTopo) ToTopo(_ context.Context, _ []byte) ([]byte, error) {
	return s.topoText, s.err
}

func (s *stubTopo) ToGeo(_ context.Context, _ []byte) ([]byte, error) {
	return s.geoText, s.err
}

func newTestEngine() (*Engine, *stubFetcher, *stubOgre, *stubTopo) {
	f := &stubFetcher{}
	w := &stubOgre{}
	tc := &stubTopo{}
	return New(f, w, tc), f, w, tc
}

func TestConvertInMemory(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	res, err := e.Convert(context.Background(), []float64{-99.74, 32.45}, Options{})
	require.NoError(t, err)

	assert.Equal(t, `{"type":"Point","coordinates":[-99.74,32.45]}`, string(res.Text))
	assert.Empty(t, res.Path)
	assert.Nil(t, res.Parsed)
	require.NotNil(t, res.IGV)
	assert.Equal(t, igv.KindPoint, res.IGV.Kind)
}

func TestConvertParse(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	res, err := e.Convert(context.Background(), []float64{30, 10}, Options{Parse: true})
	require.NoError(t, err)
	require.NotNil(t, res.Parsed)
	assert.Equal(t, "Point", res.Parsed["type"])
}

func TestConvertToFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out", "point.geojson")
	e, _, _, _ := newTestEngine()

	res, err := e.Convert(context.Background(), []float64{30, 10}, Options{Dest: dest})
	require.NoError(t, err)
	assert.Equal(t, dest, res.Path)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Point","coordinates":[30,10]}`, string(content))
}

func TestConvertFailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.geojson")
	e, _, _, _ := newTestEngine()

	// An unbuildable input fails before anything is written.
	_, err := e.Convert(context.Background(), []float64{1, 2, 3}, Options{Dest: dest})
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no partial output may survive a failure")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no stray temp files either")
}

func TestConvertSpatialInput(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newTestEngine()
	res, err := e.Convert(context.Background(), orb.Point{1, 2}, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Point","coordinates":[1,2]}`, string(res.Text))
}

func TestConvertTopoJSON(t *testing.T) {
	t.Parallel()

	e, _, _, tc := newTestEngine()
	tc.topoText = []byte(`{"type":"Topology","objects":{"o":{}},"arcs":[]}`)

	res, err := e.Convert(context.Background(), []float64{30, 10}, Options{Format: FormatTopoJSON})
	require.NoError(t, err)
	assert.Equal(t, string(tc.topoText), string(res.Text))
	assert.Nil(t, res.IGV)
}

func TestConvertRemoteRejectedBeforeDownload(t *testing.T) {
	t.Parallel()

	e, f, w, _ := newTestEngine()
	_, err := e.Convert(context.Background(), "https://example.com/report.docx", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrUnsupportedFileExtension)
	assert.Empty(t, f.calls, "nothing may be downloaded for a rejected extension")
	assert.Zero(t, w.calls)
}

func TestConvertRemoteGeoJSON(t *testing.T) {
	t.Parallel()

	e, f, _, _ := newTestEngine()
	f.content = []byte(`{"type":"Point","coordinates":[5,6]}`)
	f.ext = ".geojson"

	res, err := e.Convert(context.Background(), "https://example.com/data.geojson", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/data.geojson"}, f.calls)
	assert.Equal(t, `{"type":"Point","coordinates":[5,6]}`, string(res.Text))
}

func TestConvertCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("name,lat,long\na,10,30\nb,20,40\n"), 0o644))

	e, _, _, _ := newTestEngine()
	res, err := e.Convert(context.Background(), path, Options{})
	require.NoError(t, err)

	require.Equal(t, igv.KindFeatureCollection, res.IGV.Kind)
	require.Len(t, res.IGV.Members, 2)
	assert.Equal(t, igv.Position{30, 10}, res.IGV.Members[0].Geometry.Coordinates)
	v, _ := res.IGV.Members[0].Properties.Get("name")
	assert.Equal(t, "a", v)
}

func TestConvertWebMethod(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "placemark.kml")
	require.NoError(t, os.WriteFile(path, []byte("<kml/>"), 0o644))

	e, _, w, _ := newTestEngine()
	w.text = []byte(`{"type":"Point","coordinates":[7,8]}`)

	// KML is not locally convertible, so an unset method falls back to web.
	res, err := e.Convert(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, `{"type":"Point","coordinates":[7,8]}`, string(res.Text))
}

func TestConvertWebFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "placemark.kml")
	require.NoError(t, os.WriteFile(path, []byte("<kml/>"), 0o644))

	e, _, w, _ := newTestEngine()
	w.err = eris.New("service said no")

	_, err := e.Convert(context.Background(), path, Options{Method: MethodWeb})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service said no")
}

func TestConvertFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "point.geojson")
	require.NoError(t, os.WriteFile(good, []byte(`{"type":"Point","coordinates":[1,2]}`), 0o644))
	bad := filepath.Join(dir, "broken.geojson")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":"Nope"}`), 0o644))

	outDir := filepath.Join(dir, "out")
	e, _, _, _ := newTestEngine()

	results := e.ConvertFiles(context.Background(), []string{good, bad}, Options{Dest: outDir}, 2)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, filepath.Join(outDir, "point.geojson"), results[0].Result.Path)
	assert.FileExists(t, results[0].Result.Path)

	// One failure does not stop the batch.
	assert.Error(t, results[1].Err)
	assert.Equal(t, bad, results[1].Input)
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cities.geojson", outputName("/tmp/cities.csv", FormatGeoJSON))
	assert.Equal(t, "cities.topojson", outputName("cities.shp", FormatTopoJSON))
	assert.Equal(t, "data.geojson", outputName("https://example.com/pub/data.zip", FormatGeoJSON))
}
