package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAppend(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"name", "lat", "long"})
	require.NoError(t, tbl.Append([]any{"a", 10.0, 30.0}))

	err := tbl.Append([]any{"too", "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3")

	assert.Equal(t, 1, tbl.Len())
	row := tbl.Row(0)
	assert.Equal(t, "a", row["name"])
	assert.Equal(t, 10.0, row["lat"])
}

func TestAppendStringsPadsRagged(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"a", "b", "c"})
	tbl.AppendStrings([]string{"1", "2"})
	tbl.AppendStrings([]string{"1", "2", "3", "4"})

	row := tbl.Row(0)
	assert.Equal(t, "2", row["b"])
	assert.Nil(t, row["c"])

	row = tbl.Row(1)
	assert.Equal(t, "3", row["c"])
}

func TestRecords(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"x"})
	require.NoError(t, tbl.Append([]any{1}))
	require.NoError(t, tbl.Append([]any{2}))

	recs := tbl.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0]["x"])
	assert.Equal(t, 2, recs[1]["x"])
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	src := "name,lat,long\nabilene,32.45,-99.74\nboerne,29.79,-98.73\n"
	tbl, err := ReadCSV(strings.NewReader(src), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "lat", "long"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "32.45", tbl.Row(0)["lat"])
	assert.Equal(t, "boerne", tbl.Row(1)["name"])
}

func TestReadCSVOptions(t *testing.T) {
	t.Parallel()

	src := "# comment line\nname; lat\na; 1\n"
	tbl, err := ReadCSV(strings.NewReader(src), CSVOptions{
		Delimiter: ';',
		Comment:   '#',
		TrimSpace: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "lat"}, tbl.Columns())
	assert.Equal(t, "1", tbl.Row(0)["lat"])
}

func TestReadCSVRagged(t *testing.T) {
	t.Parallel()

	src := "a,b,c\n1,2\n1,2,3\n"
	tbl, err := ReadCSV(strings.NewReader(src), CSVOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Row(0)["c"])
	assert.Equal(t, "3", tbl.Row(1)["c"])
}

func TestReadCSVEmpty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}
