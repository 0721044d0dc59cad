package igv

import "github.com/rotisserie/eris"

// Sentinel errors for classification and building. Callers match them with
// eris.Is; wrapped messages carry the offending value or field name.
var (
	// ErrUnsupportedInputKind is returned when an input matches no category.
	ErrUnsupportedInputKind = eris.New("unsupported input kind")

	// ErrNotBuildable is returned when a category is classifiable but cannot
	// be turned into a geometry by the builder (file references, opaque text).
	ErrNotBuildable = eris.New("input category is not buildable")

	// ErrMissingCoordinateField is returned when a row or record lacks a
	// configured latitude or longitude field.
	ErrMissingCoordinateField = eris.New("missing coordinate field")

	// ErrEmptyInput is returned when a row or record sequence has no elements.
	ErrEmptyInput = eris.New("empty input")

	// ErrInconsistentGroupGeometry is returned when rows sharing a group value
	// disagree on their geometry kind.
	ErrInconsistentGroupGeometry = eris.New("inconsistent geometry within group")
)
