package layout

import "errors"

// Error taxonomy shared by the codecs, the logits snapshots and the
// alignment reconstructor. Callers are expected to test with errors.Is
// since every failure site wraps these with context.
var (
	// ErrMalformedDocument marks a structurally invalid source document:
	// unparseable coordinates, missing required elements. The model is
	// never partially populated when this is returned.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingPrerequisite marks a line lacking logits, alphabet or
	// baseline when word geometry reconstruction is requested for it.
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	// ErrMissingLineData marks a logits snapshot with no entry for a
	// line present in the page.
	ErrMissingLineData = errors.New("missing line data")
)
