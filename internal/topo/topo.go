// Package topo delegates TopoJSON conversion to external topology tools.
// Shared-arc extraction is never reimplemented here; the geo2topo and
// topo2geo CLIs own it.
package topo

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Converter turns GeoJSON text into TopoJSON text and back.
type Converter interface {
	// ToTopo converts GeoJSON text to TopoJSON text with shared-arc
	// extraction.
	ToTopo(ctx context.Context, geojsonText []byte) ([]byte, error)
	// ToGeo resolves a TopoJSON topology back to GeoJSON text.
	ToGeo(ctx context.Context, topojsonText []byte) ([]byte, error)
}

// ExecConverter shells out to the geo2topo and topo2geo CLI tools.
type ExecConverter struct {
	geo2topoPath string
	topo2geoPath string
}

// NewExecConverter creates a converter using the given tool paths. Empty
// paths fall back to the tool names resolved via PATH.
func NewExecConverter(geo2topoPath, topo2geoPath string) *ExecConverter {
	if geo2topoPath == "" {
		geo2topoPath = "geo2topo"
	}
	if topo2geoPath == "" {
		topo2geoPath = "topo2geo"
	}
	return &ExecConverter{geo2topoPath: geo2topoPath, topo2geoPath: topo2geoPath}
}

// ToTopo runs geo2topo with the GeoJSON on stdin and returns stdout.
func (c *ExecConverter) ToTopo(ctx context.Context, geojsonText []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.geo2topoPath)
	cmd.Stdin = bytes.NewReader(geojsonText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "topo: geo2topo failed: %s", stderr.String())
	}
	return stdout.Bytes(), nil
}

// ToGeo runs topo2geo for the topology's first named object and returns
// the resulting GeoJSON. Only the object name is read from the input; the
// topology itself stays opaque.
func (c *ExecConverter) ToGeo(ctx context.Context, topojsonText []byte) ([]byte, error) {
	object, err := firstObjectName(topojsonText)
	if err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "geoconv-topo-")
	if err != nil {
		return nil, eris.Wrap(err, "topo: create temp dir")
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	outPath := filepath.Join(outDir, "object.geojson")
	cmd := exec.CommandContext(ctx, c.topo2geoPath, object+"="+outPath)
	cmd.Stdin = bytes.NewReader(topojsonText)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "topo: topo2geo failed: %s", stderr.String())
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, eris.Wrap(err, "topo: read topo2geo output")
	}
	return out, nil
}

// firstObjectName returns the lexically first key of the topology's objects
// map, which topo2geo needs to select an output.
func firstObjectName(topojsonText []byte) (string, error) {
	var doc struct {
		Type    string                     `json:"type"`
		Objects map[string]json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(topojsonText, &doc); err != nil {
		return "", eris.Wrap(err, "topo: parse topology header")
	}
	if doc.Type != "Topology" || len(doc.Objects) == 0 {
		return "", eris.New("topo: input is not a topology with objects")
	}

	name := ""
	for k := range doc.Objects {
		if name == "" || k < name {
			name = k
		}
	}
	return name, nil
}
