package layout

import (
	"testing"

	"github.com/ocralign/pagealign/pkg/geometry"
)

// makePage creates a two-region test page with three lines
func makePage() *Page {
	return &Page{
		ID:     "scan_0001.jpg",
		Height: 1000,
		Width:  800,
		Regions: []*Region{
			{
				ID:      "r1",
				Polygon: []geometry.Point{{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 400, Y: 500}, {X: 0, Y: 500}},
				Lines: []*TextLine{
					{ID: "r1-l1"},
					{ID: "r1-l2"},
				},
			},
			{
				ID:      "r2",
				Polygon: []geometry.Point{{X: 0, Y: 500}, {X: 400, Y: 500}, {X: 400, Y: 1000}, {X: 0, Y: 1000}},
				Lines: []*TextLine{
					{ID: "r2-l1"},
				},
			},
		},
	}
}

func TestPageLines_Order(t *testing.T) {
	page := makePage()
	lines := page.Lines()

	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	wantOrder := []string{"r1-l1", "r1-l2", "r2-l1"}
	for i, line := range lines {
		if line.ID != wantOrder[i] {
			t.Errorf("Line %d: expected id %s, got %s", i, wantOrder[i], line.ID)
		}
	}
}

func TestPageLine_Lookup(t *testing.T) {
	page := makePage()

	if line := page.Line("r2-l1"); line == nil || line.ID != "r2-l1" {
		t.Errorf("Expected to find r2-l1, got %v", line)
	}
	if line := page.Line("missing"); line != nil {
		t.Errorf("Expected nil for unknown id, got %v", line)
	}
}

func TestTextLine_AbsentVersusEmptyTranscription(t *testing.T) {
	absent := &TextLine{ID: "a"}
	empty := &TextLine{ID: "b", Transcription: String("")}

	if absent.Transcription != nil {
		t.Error("Expected absent transcription to be nil")
	}
	if absent.Text() != "" {
		t.Errorf("Expected empty text for absent transcription, got %q", absent.Text())
	}
	if empty.Transcription == nil || *empty.Transcription != "" {
		t.Error("Expected empty transcription to be a pointer to \"\"")
	}
}
