// Package layout defines the in-memory page layout model produced by OCR:
// a Page holding ordered Regions, each holding ordered TextLines with
// baseline, bounding polygon, height metadata, transcription and optional
// per-character recognition probabilities.
//
// The model is the neutral structure shared by the format codecs
// (pagexml, altoxml) and the alignment reconstructor (align). Codecs
// construct and populate it; the reconstructor only reads it.
package layout

import (
	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/logits"
)

// Heights describes the vertical extent of a text line relative to
// its baseline, both in pixels.
type Heights struct {
	Ascent  float64 // Extent above the baseline
	Descent float64 // Extent below the baseline
}

// TextLine is a single recognized line of text.
//
// The ID is unique within the whole page: it is the key under which
// logits snapshots store the line's probability matrix, so a collision
// silently attaches another line's data.
//
// Transcription is nil when the line carries no annotation at all;
// a pointer to an empty string means the line was annotated as blank.
type TextLine struct {
	ID            string           // Page-unique identifier
	Baseline      []geometry.Point // Polyline approximating the writing line
	Polygon       []geometry.Point // Polygon bounding the line's ink
	Heights       *Heights         // Line height metadata, nil if unknown
	Transcription *string          // Recognized text, nil if absent
	Logits        *logits.Sparse   // Per-character log probabilities, nil if not attached
	Alphabet      []string         // Symbols indexing the logit columns, nil if not attached
}

// Text returns the transcription, or "" when absent.
func (l *TextLine) Text() string {
	if l.Transcription == nil {
		return ""
	}
	return *l.Transcription
}

// Region is a geometric region of the page holding text lines.
type Region struct {
	ID            string           // Page-unique identifier
	Polygon       []geometry.Point // Bounding polygon, at least 3 points
	Transcription *string          // Whole-region text, nil if absent
	Lines         []*TextLine      // Lines in export order
}

// Page is the root of the layout model for a single page image.
// Region order is export order and does not necessarily follow
// reading order.
type Page struct {
	ID      string    // Source image name
	Height  int       // Page height in pixels
	Width   int       // Page width in pixels
	Regions []*Region // Regions in export order
}

// Lines returns every line of the page in region order.
func (p *Page) Lines() []*TextLine {
	var lines []*TextLine
	for _, region := range p.Regions {
		lines = append(lines, region.Lines...)
	}
	return lines
}

// Line looks up a line by its identifier, returning nil when absent.
func (p *Page) Line(id string) *TextLine {
	for _, region := range p.Regions {
		for _, line := range region.Lines {
			if line.ID == id {
				return line
			}
		}
	}
	return nil
}

// String returns a *string for the given value, for populating the
// optional transcription fields.
func String(s string) *string { return &s }
