package layout

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ocralign/pagealign/pkg/logits"
)

// snapshot is the serialized container for a whole page's logits: the
// sparse matrices keyed by line ID plus a parallel mapping from line ID
// to that line's alphabet. Legacy snapshots were written before the
// alphabet mapping existed and decode with a nil Alphabets map.
type snapshot struct {
	Logits    map[string]*logits.Sparse
	Alphabets map[string][]string
}

// SaveLogits writes the logits of every line of the page as a single
// binary snapshot. Every line must have both logits and an alphabet
// attached.
func (p *Page) SaveLogits(w io.Writer) error {
	snap := snapshot{
		Logits:    make(map[string]*logits.Sparse),
		Alphabets: make(map[string][]string),
	}
	for _, line := range p.Lines() {
		if line.Logits == nil {
			return fmt.Errorf("%w: no logits for line %s", ErrMissingPrerequisite, line.ID)
		}
		if line.Alphabet == nil {
			return fmt.Errorf("%w: no alphabet for line %s", ErrMissingPrerequisite, line.ID)
		}
		snap.Logits[line.ID] = line.Logits
		snap.Alphabets[line.ID] = line.Alphabet
	}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encoding logits snapshot: %w", err)
	}
	return nil
}

// LoadLogits reads a snapshot written by SaveLogits and attaches the
// matrices and alphabets to the page's lines. Every line of the page
// must have an entry in the snapshot; lines from legacy snapshots
// without alphabet data get an empty alphabet.
func (p *Page) LoadLogits(r io.Reader) error {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding logits snapshot: %w", err)
	}
	for _, line := range p.Lines() {
		mat, ok := snap.Logits[line.ID]
		if !ok {
			return fmt.Errorf("%w: line %s has no entry in snapshot", ErrMissingLineData, line.ID)
		}
		line.Logits = mat
		if alphabet, ok := snap.Alphabets[line.ID]; ok {
			line.Alphabet = alphabet
		} else {
			line.Alphabet = []string{}
		}
	}
	return nil
}
