package align

import (
	"math"
	"strings"

	"github.com/ocralign/pagealign/pkg/geometry"
)

// WordBox is the reconstructed pixel geometry of one word. Gap bounds
// the inter-word whitespace following the word and is nil for the
// line's last word, or when the alignment signal ran out before the
// next word was found.
type WordBox struct {
	Text string
	Box  geometry.Box
	Gap  *geometry.Box
}

// WordGeometry walks the narrowed alignment path and recovers a pixel
// bounding box for every whitespace-delimited word of the transcription,
// plus one for each inter-word gap.
//
// Each word's scan restarts at frame 0 and counts non-blank frames,
// skipping the letters already consumed by earlier words. The word
// starts at the frame of its first letter and ends at the frame of its
// last one; columns are frame index × 4. A word whose letters never all
// appear ends at the full path width, and once the path runs out of
// non-blank frames the remaining words collapse to zero-width boxes at
// the last known column. Alignment columns are scaled by
// gridWidth / (4 × frames) before sampling the grid.
func WordGeometry(transcription string, path []int, blank int, grid Grid) []WordBox {
	words := strings.Fields(transcription)
	if len(words) == 0 {
		return nil
	}

	frames := len(path)
	scale := 0.0
	if frames > 0 {
		scale = float64(grid.Cols()) / float64(4*frames)
	}

	boxes := make([]WordBox, 0, len(words))
	consumed := 0
	exhausted := false
	cursor := 0

	for w, word := range words {
		if exhausted {
			// No alignment signal left for this word.
			boxes = append(boxes, WordBox{Text: word, Box: columnBox(grid, cursor, 0, scale)})
			continue
		}

		wordLen := len([]rune(word))
		hpos, end, next := 0, 0, -1
		seen := 0
		final := false

		for a, label := range path {
			if label == blank {
				continue
			}
			if final {
				next = 4 * a
				break
			}
			if seen-consumed == 0 {
				hpos = 4 * a
			}
			seen++
			if seen-consumed == wordLen {
				end = 4 * a
				final = true
			}
		}

		if !final {
			end = 4 * frames
			exhausted = true
		} else if next < 0 {
			// Completed, but nothing follows: this word closes the line
			// regardless of how many words the transcription still holds.
			exhausted = true
		}

		box := WordBox{Text: word, Box: columnBox(grid, hpos, end-hpos, scale)}
		if w != len(words)-1 && next >= 0 {
			gap := columnBox(grid, end, next-end, scale)
			box.Gap = &gap
			consumed += wordLen
		}
		cursor = end
		boxes = append(boxes, box)
	}
	return boxes
}

// columnBox bounds the grid points in the alignment column range
// [start, start+width), both scaled to grid columns. Degenerate ranges
// yield the zero box.
func columnBox(grid Grid, start, width int, scale float64) geometry.Box {
	lo := int(float64(start) * scale)
	hi := lo + int(float64(width)*scale)
	if lo < 0 {
		lo = 0
	}
	if hi > grid.Cols() {
		hi = grid.Cols()
	}
	if len(grid) == 0 || lo >= hi {
		return geometry.Box{}
	}
	box := geometry.Box{
		X1: math.Inf(1), Y1: math.Inf(1),
		X2: math.Inf(-1), Y2: math.Inf(-1),
	}
	for _, row := range grid {
		for _, p := range row[lo:hi] {
			box.X1 = math.Min(box.X1, p.X)
			box.Y1 = math.Min(box.Y1, p.Y)
			box.X2 = math.Max(box.X2, p.X)
			box.Y2 = math.Max(box.Y2, p.Y)
		}
	}
	return box
}
