// Package align reconstructs word-level pixel geometry for a text line
// from a forced-alignment label path.
//
// The recognition model emits one label per alignment frame. A
// sentence-level forced alignment can hold the same character over a run
// of consecutive frames, so the path is first narrowed to pin each
// character to a single frame. A boundary walk over the narrowed path
// then finds the start and end column of every whitespace-delimited word
// of the transcription, and the columns are projected through the line's
// curved crop coordinate grid to obtain pixel bounding boxes for each
// word and each inter-word gap.
//
// The forced-alignment primitive and the line cropper are external
// collaborators consumed through the Aligner and Cropper interfaces.
package align

import (
	"fmt"
	"math"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Aligner is the forced-alignment collaborator. It consumes negative log
// probabilities of shape (frames × alphabet size + blank), the label
// sequence as alphabet indices and the blank index, and returns one label
// per frame, values in [0, blank].
type Aligner interface {
	Align(negLogProbs [][]float32, labels []int, blank int) ([]int, error)
}

// Cropper is the curved-line crop collaborator. It maps a baseline,
// the line heights and the model's downsampling factor to the line's
// crop coordinate grid.
type Cropper interface {
	CropInputs(baseline []geometry.Point, heights layout.Heights, downsample int) (Grid, error)
}

// Grid is a line's crop coordinate grid: rows of pixel points with one
// column per quarter frame of alignment resolution. It maps an alignment
// column back to the actual pixel location on the curved line.
type Grid [][]geometry.Point

// Cols returns the number of grid columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Labels maps a transcription to alphabet indices, one per character.
// Both the transcription and the alphabet symbols are NFC-normalized
// before lookup. Whitespace separates words and is never aligned: the
// boundary walk locates inter-word gaps from blank frames, so space
// characters produce no label even when the alphabet carries a space
// symbol. Any other character with no alphabet entry fails with a
// wrapped ErrMissingPrerequisite since the alignment cannot cover it.
func Labels(transcription string, alphabet []string) ([]int, error) {
	index := make(map[string]int, len(alphabet))
	for i, symbol := range alphabet {
		index[norm.NFC.String(symbol)] = i
	}
	var labels []int
	for _, r := range norm.NFC.String(transcription) {
		if unicode.IsSpace(r) {
			continue
		}
		i, ok := index[string(r)]
		if !ok {
			return nil, fmt.Errorf("%w: character %q not in alphabet", layout.ErrMissingPrerequisite, r)
		}
		labels = append(labels, i)
	}
	return labels, nil
}

// MostConfidentFrame returns the frame among the candidates with the
// highest logit for the given symbol, -1 when there are no candidates.
//
// It exists as an alternative narrowing policy, picking the most
// confident frame of a run instead of the first one. Narrow is the
// active policy.
func MostConfidentFrame(logProbs [][]float32, frames []int, symbol int) int {
	best := -1
	max := math.Inf(-1)
	for _, f := range frames {
		if float64(logProbs[f][symbol]) > max {
			max = float64(logProbs[f][symbol])
			best = f
		}
	}
	return best
}
