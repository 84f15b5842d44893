package pagexml

import (
	"errors"
	"strings"
	"testing"

	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

func makePage() *layout.Page {
	return &layout.Page{
		ID:     "scan_001.jpg",
		Width:  800,
		Height: 1200,
		Regions: []*layout.Region{
			{
				ID:            "r1",
				Polygon:       []geometry.Point{{X: 0, Y: 0}, {X: 800, Y: 0}, {X: 800, Y: 600}, {X: 0, Y: 600}},
				Transcription: layout.String("first region"),
				Lines: []*layout.TextLine{
					{
						ID:            "r1-l1",
						Polygon:       []geometry.Point{{X: 10, Y: 20}, {X: 500, Y: 20}, {X: 500, Y: 60}, {X: 10, Y: 60}},
						Baseline:      []geometry.Point{{X: 10, Y: 50}, {X: 500, Y: 50}},
						Heights:       &layout.Heights{Ascent: 30, Descent: 10},
						Transcription: layout.String("first region"),
					},
				},
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := EncodeBytes(makePage())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	page, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if page.ID != "scan_001.jpg" {
		t.Errorf("Expected page ID scan_001.jpg, got %q", page.ID)
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
	if len(region.Polygon) != 4 || region.Polygon[2] != (geometry.Point{X: 800, Y: 600}) {
		t.Errorf("Region polygon not preserved: %v", region.Polygon)
	}
	if region.Transcription == nil || *region.Transcription != "first region" {
		t.Errorf("Region transcription not preserved: %v", region.Transcription)
	}

	if len(region.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(region.Lines))
	}
	line := region.Lines[0]
	if line.ID != "r1-l1" {
		t.Errorf("Expected line r1-l1, got %q", line.ID)
	}
	if len(line.Baseline) != 2 || line.Baseline[1] != (geometry.Point{X: 500, Y: 50}) {
		t.Errorf("Baseline not preserved: %v", line.Baseline)
	}
	if line.Heights == nil || line.Heights.Ascent != 30 || line.Heights.Descent != 10 {
		t.Errorf("Heights not preserved: %v", line.Heights)
	}
	if line.Text() != "first region" {
		t.Errorf("Line transcription not preserved: %q", line.Text())
	}
}

func TestDecodeNamespacePrefix(t *testing.T) {
	// Documents in the wild carry varying prefixes for the schema
	// namespace; matching is by local name.
	doc := `<?xml version="1.0"?>
<pc:PcGts xmlns:pc="` + Namespace + `">
  <pc:Page imageFilename="p.png" imageWidth="100" imageHeight="200">
    <pc:TextRegion id="r1">
      <pc:Coords points="0,0 100,0 100,200 0,200"/>
      <pc:TextLine id="l1">
        <pc:Coords points="0,0 100,0 100,50 0,50"/>
        <pc:Baseline points="0,40 100,40"/>
        <pc:TextEquiv><pc:Unicode>hello</pc:Unicode></pc:TextEquiv>
      </pc:TextLine>
    </pc:TextRegion>
  </pc:Page>
</pc:PcGts>`

	page, err := DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(page.Regions) != 1 || len(page.Regions[0].Lines) != 1 {
		t.Fatalf("Expected 1 region with 1 line, got %v", page.Regions)
	}
	if page.Regions[0].Lines[0].Text() != "hello" {
		t.Errorf("Expected transcription hello, got %q", page.Regions[0].Lines[0].Text())
	}
}

func TestDecodePointElements(t *testing.T) {
	doc := `<PcGts><Page imageFilename="p" imageWidth="10" imageHeight="10">
  <TextRegion id="r1">
    <Coords><Point x="1" y="2"/><Point x="3" y="4"/></Coords>
  </TextRegion>
</Page></PcGts>`

	page, err := DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	polygon := page.Regions[0].Polygon
	if len(polygon) != 2 || polygon[0] != (geometry.Point{X: 1, Y: 2}) || polygon[1] != (geometry.Point{X: 3, Y: 4}) {
		t.Errorf("Expected points from Point elements, got %v", polygon)
	}
}

func TestDecodeTranscriptionAbsentVsEmpty(t *testing.T) {
	doc := `<PcGts><Page imageFilename="p" imageWidth="10" imageHeight="10">
  <TextRegion id="r1">
    <Coords points="0,0 1,1"/>
    <TextLine id="absent"><Coords points="0,0 1,1"/></TextLine>
    <TextLine id="empty"><Coords points="0,0 1,1"/><TextEquiv><Unicode></Unicode></TextEquiv></TextLine>
  </TextRegion>
</Page></PcGts>`

	page, err := DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	lines := page.Regions[0].Lines
	if lines[0].Transcription != nil {
		t.Errorf("Expected nil transcription without TextEquiv, got %q", *lines[0].Transcription)
	}
	if lines[1].Transcription == nil || *lines[1].Transcription != "" {
		t.Errorf("Expected empty transcription with empty TextEquiv, got %v", lines[1].Transcription)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this { is not xml",
		"no page":        `<PcGts></PcGts>`,
		"bad dimensions": `<PcGts><Page imageFilename="p" imageWidth="wide" imageHeight="10"/></PcGts>`,
		"region no id": `<PcGts><Page imageFilename="p" imageWidth="10" imageHeight="10">
			<TextRegion><Coords points="0,0 1,1"/></TextRegion></Page></PcGts>`,
		"bad points": `<PcGts><Page imageFilename="p" imageWidth="10" imageHeight="10">
			<TextRegion id="r1"><Coords points="zero,zero"/></TextRegion></Page></PcGts>`,
	}
	for name, doc := range cases {
		if _, err := DecodeBytes([]byte(doc)); !errors.Is(err, layout.ErrMalformedDocument) {
			t.Errorf("%s: expected ErrMalformedDocument, got %v", name, err)
		}
	}
}

func TestParseHeightsLegacy(t *testing.T) {
	cases := []struct {
		custom  string
		ascent  float64
		descent float64
	}{
		{"heights:[10, 0, 10, 30]", 10, 10},
		{"heights:[5, 15, 25]", 15, 20},
		{"heights:[12, 18]", 12, 18},
		{`heights_v2:[22.5,7.0]`, 22.5, 7},
	}
	for _, c := range cases {
		h, err := parseHeights(c.custom)
		if err != nil {
			t.Errorf("%q: unexpected error %v", c.custom, err)
			continue
		}
		if h == nil {
			t.Errorf("%q: expected heights, got nil", c.custom)
			continue
		}
		if h.Ascent != c.ascent || h.Descent != c.descent {
			t.Errorf("%q: expected (%v,%v), got (%v,%v)", c.custom, c.ascent, c.descent, h.Ascent, h.Descent)
		}
	}

	if h, err := parseHeights("readingOrder {index:0;}"); err != nil || h != nil {
		t.Errorf("Expected no heights from unrelated attribute, got (%v, %v)", h, err)
	}
	if h, err := parseHeights("heights:[7]"); err != nil || h != nil {
		t.Errorf("Expected no heights from a single value, got (%v, %v)", h, err)
	}
	if _, err := parseHeights("heights_v2:[broken"); !errors.Is(err, layout.ErrMalformedDocument) {
		t.Errorf("Expected ErrMalformedDocument for a broken token, got %v", err)
	}
}

func TestEncodeWritesStructuredHeights(t *testing.T) {
	data, err := EncodeBytes(makePage())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `custom="heights_v2:[30.0,10.0]"`) {
		t.Errorf("Expected heights_v2 custom attribute in output:\n%s", data)
	}
	if strings.Contains(string(data), "heights:[") {
		t.Error("Legacy heights encoding should never be written")
	}
}

func TestFormatPoints(t *testing.T) {
	points := []geometry.Point{{X: 1.9, Y: 2.2}, {X: 3, Y: 4}}
	if got := FormatPoints(points); got != "1,2 3,4" {
		t.Errorf("Expected '1,2 3,4', got %q", got)
	}
}
