package format

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geoconv/internal/igv"
)

// convertZippedShapefile extracts a zipped shapefile to a temporary
// directory and converts the .shp it contains.
func convertZippedShapefile(zipPath string) (*igv.IGV, error) {
	destDir, err := os.MkdirTemp("", "geoconv-shp-")
	if err != nil {
		return nil, eris.Wrap(err, "format: create temp dir")
	}
	defer func() { _ = os.RemoveAll(destDir) }()

	extracted, err := extractZIP(zipPath, destDir)
	if err != nil {
		return nil, err
	}

	for _, path := range extracted {
		if strings.EqualFold(filepath.Ext(path), ".shp") {
			return ConvertShapefile(path)
		}
	}
	return nil, eris.Wrapf(ErrConversionFailed, "format: %s contains no shapefile", filepath.Base(zipPath))
}

// extractZIP extracts all files from a ZIP archive to the destination
// directory and returns the extracted paths.
func extractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "format: open zip archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}
	return extracted, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	// Sanitize against zip slip.
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("format: illegal zip path %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "format: create directory")
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "format: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "format: open zip entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "format: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "format: write file")
	}
	return destPath, nil
}
