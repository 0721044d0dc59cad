// Package format converts on-disk vector formats to the intermediate
// geographic value. Shapefiles are handled locally through the external
// geospatial library; KML and GML are delegated to the web conversion
// service by the orchestration layer.
package format

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/geojson"
	"github.com/sells-group/geoconv/internal/igv"
)

// Conversion errors.
var (
	// ErrUnsupportedFileExtension is returned before any collaborator call
	// when a file's extension is not on the allow-list.
	ErrUnsupportedFileExtension = eris.New("unsupported file extension")

	// ErrConversionFailed is returned when a format collaborator cannot
	// produce GeoJSON from the input.
	ErrConversionFailed = eris.New("conversion failed")
)

// allowedExtensions is the fixed allow-list of convertible inputs.
var allowedExtensions = map[string]bool{
	".geojson":  true,
	".json":     true,
	".topojson": true,
	".shp":      true,
	".zip":      true,
	".kml":      true,
	".gml":      true,
	".csv":      true,
	".xlsx":     true,
}

// Extensions handled by ConvertLocal without the web service.
var localExtensions = map[string]bool{
	".geojson": true,
	".json":    true,
	".shp":     true,
	".zip":     true,
}

// CheckExtension validates a path against the extension allow-list.
func CheckExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return eris.Wrapf(ErrUnsupportedFileExtension, "format: %q", ext)
	}
	return nil
}

// LocalSupported reports whether ConvertLocal can handle the path without
// delegating to the web service.
func LocalSupported(path string) bool {
	return localExtensions[strings.ToLower(filepath.Ext(path))]
}

// ConvertLocal converts a local vector file to an IGV. The extension is
// checked before anything is opened.
func ConvertLocal(path string) (*igv.IGV, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "format: read %s", path)
		}
		return geojson.Unmarshal(data)

	case ".shp":
		return ConvertShapefile(path)

	case ".zip":
		return convertZippedShapefile(path)
	}

	return nil, eris.Wrapf(ErrConversionFailed,
		"format: %s is not convertible locally, use the web method", filepath.Base(path))
}
