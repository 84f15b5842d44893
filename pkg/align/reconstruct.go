package align

import (
	"fmt"
	"strings"

	"github.com/ocralign/pagealign/pkg/layout"
	"github.com/ocralign/pagealign/pkg/logits"
)

// DefaultDownsample is the frame downsampling factor of the recognition
// model: one alignment frame covers this many pixels along the line.
const DefaultDownsample = 16

// Config holds the collaborators and tuning values for line
// reconstruction.
type Config struct {
	Aligner          Aligner // Forced-alignment collaborator (required)
	Cropper          Cropper // Line-crop collaborator (required)
	Downsample       int     // Frame downsampling factor, DefaultDownsample when 0
	MissingLogit     float32 // Dense substitute for unstored logits, logits.DefaultMissingLogit when 0
	LiberalNarrowing bool    // Rewrite run tails to blank-1 instead of blank
}

// ReconstructLine computes word and gap bounding boxes for one line.
// The line must carry a baseline, heights, logits and an alphabet;
// anything missing fails with a wrapped ErrMissingPrerequisite. The line
// itself is never modified, so reconstruction is idempotent and lines
// can be processed independently.
func ReconstructLine(line *layout.TextLine, cfg Config) ([]WordBox, error) {
	if cfg.Aligner == nil || cfg.Cropper == nil {
		return nil, fmt.Errorf("reconstructing line %s: aligner and cropper are required", line.ID)
	}
	if len(line.Baseline) == 0 {
		return nil, fmt.Errorf("%w: line %s has no baseline", layout.ErrMissingPrerequisite, line.ID)
	}
	if line.Heights == nil {
		return nil, fmt.Errorf("%w: line %s has no heights", layout.ErrMissingPrerequisite, line.ID)
	}
	if line.Logits == nil {
		return nil, fmt.Errorf("%w: line %s has no logits", layout.ErrMissingPrerequisite, line.ID)
	}
	if len(line.Alphabet) == 0 {
		return nil, fmt.Errorf("%w: line %s has no alphabet", layout.ErrMissingPrerequisite, line.ID)
	}

	text := line.Text()
	if text == "" {
		return nil, nil
	}

	labels, err := Labels(text, line.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("labeling line %s: %w", line.ID, err)
	}

	missing := cfg.MissingLogit
	if missing == 0 {
		missing = logits.DefaultMissingLogit
	}
	downsample := cfg.Downsample
	if downsample == 0 {
		downsample = DefaultDownsample
	}

	// The aligner consumes -log(p); flip the normalized log probabilities.
	neg := logits.LogProbs(line.Logits, missing)
	for _, row := range neg {
		for c := range row {
			row[c] = -row[c]
		}
	}

	blank := len(line.Alphabet)
	path, err := cfg.Aligner.Align(neg, labels, blank)
	if err != nil {
		return nil, fmt.Errorf("aligning line %s: %w", line.ID, err)
	}
	// Whitespace symbols carry no label (see Labels), but a space-bearing
	// alphabet still permits separator frames in the returned path. The
	// boundary walk counts every non-blank frame as a word letter, so
	// such frames are folded into blank first.
	for i, symbol := range line.Alphabet {
		if symbol == "" || strings.TrimSpace(symbol) != "" {
			continue
		}
		for f, label := range path {
			if label == i {
				path[f] = blank
			}
		}
	}
	if cfg.LiberalNarrowing {
		NarrowLiberal(path, blank)
	} else {
		Narrow(path, blank)
	}

	grid, err := cfg.Cropper.CropInputs(line.Baseline, *line.Heights, downsample)
	if err != nil {
		return nil, fmt.Errorf("cropping line %s: %w", line.ID, err)
	}

	return WordGeometry(text, path, blank, grid), nil
}
