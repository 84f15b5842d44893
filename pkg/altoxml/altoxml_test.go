package altoxml

import (
	"errors"
	"strings"
	"testing"

	"github.com/ocralign/pagealign/pkg/align"
	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
	"github.com/ocralign/pagealign/pkg/logits"
)

type fixedAligner struct {
	path []int
}

func (a *fixedAligner) Align(negLogProbs [][]float32, labels []int, blank int) ([]int, error) {
	return append([]int(nil), a.path...), nil
}

type fixedCropper struct {
	grid align.Grid
}

func (c *fixedCropper) CropInputs(baseline []geometry.Point, heights layout.Heights, downsample int) (align.Grid, error) {
	return c.grid, nil
}

func makeGrid(rows, cols int) align.Grid {
	grid := make(align.Grid, rows)
	for r := range grid {
		grid[r] = make([]geometry.Point, cols)
		for c := range grid[r] {
			grid[r][c] = geometry.Point{X: float64(c), Y: float64(10 * r)}
		}
	}
	return grid
}

func makeLine(id, text string) *layout.TextLine {
	dense := make([][]float32, 8)
	for r := range dense {
		dense[r] = []float32{0.2, 0.3, 0.4, 0.1}
	}
	return &layout.TextLine{
		ID:            id,
		Polygon:       []geometry.Point{{X: 10, Y: 20}, {X: 200, Y: 20}, {X: 200, Y: 60}, {X: 10, Y: 60}},
		Baseline:      []geometry.Point{{X: 10, Y: 50}, {X: 200, Y: 52}},
		Heights:       &layout.Heights{Ascent: 30, Descent: 10},
		Transcription: layout.String(text),
		Logits:        logits.FromDense(dense),
		Alphabet:      []string{"h", "i", "o"},
	}
}

func makePage(lines ...*layout.TextLine) *layout.Page {
	return &layout.Page{
		ID:     "scan_001",
		Width:  800,
		Height: 1200,
		Regions: []*layout.Region{
			{
				ID:      "r1",
				Polygon: []geometry.Point{{X: 10, Y: 20}, {X: 400, Y: 20}, {X: 400, Y: 300}, {X: 10, Y: 300}},
				Lines:   lines,
			},
		},
	}
}

func TestEncodeLineLevel(t *testing.T) {
	enc := &Encoder{}
	data, err := enc.EncodeBytes(makePage(makeLine("l1", "hello there")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	doc := string(data)

	if !strings.Contains(doc, `ID="id_scan_001"`) {
		t.Error("Expected prefixed page ID in output")
	}
	if !strings.Contains(doc, `<TextBlock ID="r1"`) {
		t.Error("Expected TextBlock for the region")
	}
	if !strings.Contains(doc, `BASELINE="51"`) {
		t.Errorf("Expected averaged baseline attribute, output:\n%s", doc)
	}
	// Without collaborators the words keep their CONTENT but no
	// geometry is attempted, even though the line carries logits.
	if !strings.Contains(doc, `CONTENT="hello"`) || !strings.Contains(doc, `CONTENT="there"`) {
		t.Errorf("Expected content-only String elements, output:\n%s", doc)
	}
	if strings.Contains(doc, "<SP") {
		t.Error("Expected no SP elements without collaborators")
	}
}

func TestEncodeSkipsEmptyLines(t *testing.T) {
	empty := makeLine("l-empty", "")
	var noText *layout.TextLine = makeLine("l-none", "x")
	noText.Transcription = nil

	enc := &Encoder{}
	data, err := enc.EncodeBytes(makePage(empty, noText))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Contains(string(data), "<TextLine") {
		t.Error("Expected lines without text to be skipped")
	}
}

func TestEncodeWordGeometry(t *testing.T) {
	// Alphabet {h:0, i:1, o:2}, blank 3: the raw path aligns "hi ho"
	// with a gap between the words.
	enc := &Encoder{
		Aligner: &fixedAligner{path: []int{0, 1, 3, 3, 0, 2, 3, 3}},
		Cropper: &fixedCropper{grid: makeGrid(2, 32)},
	}

	data, err := enc.EncodeBytes(makePage(makeLine("l1", "hi ho")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	doc := string(data)

	if !strings.Contains(doc, `<String CONTENT="hi" HEIGHT="10" WIDTH="3" VPOS="0" HPOS="0"`) {
		t.Errorf("Expected first word String element, output:\n%s", doc)
	}
	if !strings.Contains(doc, `<SP WIDTH="11" VPOS="0" HPOS="4"`) {
		t.Errorf("Expected inter-word SP element, output:\n%s", doc)
	}
	if !strings.Contains(doc, `<String CONTENT="ho" HEIGHT="10" WIDTH="3" VPOS="0" HPOS="16"`) {
		t.Errorf("Expected second word String element, output:\n%s", doc)
	}
	if strings.Count(doc, "<SP ") != 1 {
		t.Error("Expected exactly one SP element")
	}
}

func TestEncodeMissingPrerequisites(t *testing.T) {
	enc := &Encoder{
		Aligner: &fixedAligner{path: []int{0, 3}},
		Cropper: &fixedCropper{grid: makeGrid(1, 8)},
	}

	noLogits := makeLine("l1", "hi")
	noLogits.Logits = nil
	if _, err := enc.EncodeBytes(makePage(noLogits)); !errors.Is(err, layout.ErrMissingPrerequisite) {
		t.Errorf("Missing logits: expected ErrMissingPrerequisite, got %v", err)
	}

	noBaseline := makeLine("l1", "hi")
	noBaseline.Baseline = nil
	if _, err := enc.EncodeBytes(makePage(noBaseline)); !errors.Is(err, layout.ErrMissingPrerequisite) {
		t.Errorf("Missing baseline: expected ErrMissingPrerequisite, got %v", err)
	}

	noPolygon := makeLine("l1", "hi")
	noPolygon.Polygon = nil
	if _, err := (&Encoder{}).EncodeBytes(makePage(noPolygon)); !errors.Is(err, layout.ErrMissingPrerequisite) {
		t.Errorf("Missing polygon: expected ErrMissingPrerequisite, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := &Encoder{}
	data, err := enc.EncodeBytes(makePage(makeLine("l1", "hello there")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	page, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if page.ID != "scan_001" {
		t.Errorf("Expected page ID scan_001, got %q", page.ID)
	}
	if page.Width != 800 || page.Height != 1200 {
		t.Errorf("Expected 800x1200, got %dx%d", page.Width, page.Height)
	}
	if len(page.Regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(page.Regions))
	}

	region := page.Regions[0]
	if region.ID != "r1" {
		t.Errorf("Expected region r1, got %q", region.ID)
	}
	// Region polygons come back as axis-aligned rectangles.
	want := geometry.Rect(geometry.Box{X1: 10, Y1: 20, X2: 400, Y2: 300})
	if len(region.Polygon) != 4 {
		t.Fatalf("Expected rectangle polygon, got %v", region.Polygon)
	}
	for i := range want {
		if region.Polygon[i] != want[i] {
			t.Errorf("Polygon corner %d: expected %v, got %v", i, want[i], region.Polygon[i])
		}
	}

	if len(region.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(region.Lines))
	}
	line := region.Lines[0]
	if line.ID != "r1_line_0" {
		t.Errorf("Expected synthesized line ID r1_line_0, got %q", line.ID)
	}
	if line.Text() != "hello there" {
		t.Errorf("Expected transcription from String contents, got %q", line.Text())
	}
	if len(line.Baseline) != 2 || line.Baseline[0].Y != 51 {
		t.Errorf("Expected baseline at y=51, got %v", line.Baseline)
	}
	if line.Heights == nil || line.Heights.Ascent != 31 || line.Heights.Descent != 9 {
		t.Errorf("Expected heights derived from the box and baseline, got %v", line.Heights)
	}
}

func TestDecodeWordContents(t *testing.T) {
	doc := `<?xml version="1.0"?>
<alto xmlns="` + Namespace + `">
  <Layout>
    <Page ID="id_p1" PHYSICAL_IMG_NR="1" HEIGHT="100" WIDTH="200">
      <PrintSpace HEIGHT="100" WIDTH="200" VPOS="0" HPOS="0">
        <TextBlock ID="b1" HEIGHT="50" WIDTH="200" VPOS="0" HPOS="0">
          <TextLine BASELINE="40" VPOS="10" HPOS="5" HEIGHT="40" WIDTH="190">
            <String CONTENT="two" HEIGHT="30" WIDTH="40" VPOS="10" HPOS="5"/>
            <SP WIDTH="10" VPOS="10" HPOS="45"/>
            <String CONTENT="words" HEIGHT="30" WIDTH="60" VPOS="10" HPOS="55"/>
          </TextLine>
        </TextBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

	page, err := DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	line := page.Regions[0].Lines[0]
	if line.ID != "b1_line_0" {
		t.Errorf("Expected synthesized line ID b1_line_0, got %q", line.ID)
	}
	if line.Text() != "two words" {
		t.Errorf("Expected space-joined contents, got %q", line.Text())
	}
	if line.Heights.Ascent != 30 || line.Heights.Descent != 10 {
		t.Errorf("Expected heights (30,10), got %v", line.Heights)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"no page": `<alto><Layout></Layout></alto>`,
		"bad dimensions": `<alto><Layout><Page ID="p" HEIGHT="tall" WIDTH="200">
			<PrintSpace/></Page></Layout></alto>`,
		"no print space": `<alto><Layout><Page ID="p" HEIGHT="100" WIDTH="200"/></Layout></alto>`,
		"block no id": `<alto><Layout><Page ID="p" HEIGHT="100" WIDTH="200">
			<PrintSpace><TextBlock HEIGHT="1" WIDTH="1" VPOS="0" HPOS="0"/></PrintSpace></Page></Layout></alto>`,
		"bad baseline": `<alto><Layout><Page ID="p" HEIGHT="100" WIDTH="200">
			<PrintSpace><TextBlock ID="b" HEIGHT="1" WIDTH="1" VPOS="0" HPOS="0">
			<TextLine BASELINE="low" VPOS="0" HPOS="0" HEIGHT="1" WIDTH="1"/>
			</TextBlock></PrintSpace></Page></Layout></alto>`,
	}
	for name, doc := range cases {
		if _, err := DecodeBytes([]byte(doc)); !errors.Is(err, layout.ErrMalformedDocument) {
			t.Errorf("%s: expected ErrMalformedDocument, got %v", name, err)
		}
	}
}
