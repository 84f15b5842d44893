package altoxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Read-side structures match by local name only, tolerating any
// namespace prefix.
type inRoot struct {
	Layout inLayout `xml:"Layout"`
}

type inLayout struct {
	Pages []inPage `xml:"Page"`
}

type inPage struct {
	ID          string         `xml:"ID,attr"`
	Height      string         `xml:"HEIGHT,attr"`
	Width       string         `xml:"WIDTH,attr"`
	PrintSpaces []inPrintSpace `xml:"PrintSpace"`
}

type inPrintSpace struct {
	Blocks []inBlock `xml:"TextBlock"`
}

type inBlock struct {
	ID     string   `xml:"ID,attr"`
	HPos   string   `xml:"HPOS,attr"`
	VPos   string   `xml:"VPOS,attr"`
	Width  string   `xml:"WIDTH,attr"`
	Height string   `xml:"HEIGHT,attr"`
	Lines  []inLine `xml:"TextLine"`
}

type inLine struct {
	HPos     string     `xml:"HPOS,attr"`
	VPos     string     `xml:"VPOS,attr"`
	Width    string     `xml:"WIDTH,attr"`
	Height   string     `xml:"HEIGHT,attr"`
	Baseline string     `xml:"BASELINE,attr"`
	Strings  []inString `xml:"String"`
}

type inString struct {
	Content string `xml:"CONTENT,attr"`
}

// Decode parses an ALTO XML document into a layout page. Regions and
// lines come back as axis-aligned rectangles and line transcriptions
// are the space-joined String contents; per-word geometry is not
// preserved on read.
func Decode(r io.Reader) (*layout.Page, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root inRoot
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", layout.ErrMalformedDocument, err)
	}
	if len(root.Layout.Pages) == 0 {
		return nil, fmt.Errorf("%w: no Layout/Page element", layout.ErrMalformedDocument)
	}
	src := root.Layout.Pages[0]

	height, errH := strconv.Atoi(src.Height)
	width, errW := strconv.Atoi(src.Width)
	if errH != nil || errW != nil {
		return nil, fmt.Errorf("%w: page dimensions (%q,%q)", layout.ErrMalformedDocument, src.Height, src.Width)
	}

	page := &layout.Page{
		ID:     strings.TrimPrefix(src.ID, "id_"),
		Height: height,
		Width:  width,
	}

	if len(src.PrintSpaces) == 0 {
		return nil, fmt.Errorf("%w: no PrintSpace element", layout.ErrMalformedDocument)
	}
	for _, block := range src.PrintSpaces[0].Blocks {
		region, err := decodeBlock(block)
		if err != nil {
			return nil, err
		}
		page.Regions = append(page.Regions, region)
	}
	return page, nil
}

// DecodeBytes parses an ALTO XML document held in memory.
func DecodeBytes(data []byte) (*layout.Page, error) {
	return Decode(strings.NewReader(string(data)))
}

func decodeBlock(src inBlock) (*layout.Region, error) {
	if src.ID == "" {
		return nil, fmt.Errorf("%w: TextBlock without ID", layout.ErrMalformedDocument)
	}
	box, err := blockBox(src.HPos, src.VPos, src.Width, src.Height)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", src.ID, err)
	}

	region := &layout.Region{
		ID:      src.ID,
		Polygon: geometry.Rect(box),
	}

	for i, l := range src.Lines {
		line, err := decodeAltoLine(l, src.ID, i)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", src.ID, err)
		}
		region.Lines = append(region.Lines, line)
	}
	return region, nil
}

// decodeAltoLine converts one TextLine element. The dialect carries no
// line identifiers, so one is synthesized from the enclosing block to
// keep line IDs page-unique for logits snapshot keys.
func decodeAltoLine(src inLine, blockID string, index int) (*layout.TextLine, error) {
	box, err := blockBox(src.HPos, src.VPos, src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	baseline, err := strconv.ParseFloat(src.Baseline, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: BASELINE %q", layout.ErrMalformedDocument, src.Baseline)
	}

	words := make([]string, len(src.Strings))
	for i, s := range src.Strings {
		words[i] = s.Content
	}

	return &layout.TextLine{
		ID: fmt.Sprintf("%s_line_%d", blockID, index),
		Baseline: []geometry.Point{
			{X: box.X1, Y: baseline},
			{X: box.X2, Y: baseline},
		},
		Polygon: geometry.Rect(box),
		Heights: &layout.Heights{
			Ascent:  baseline - box.Y1,
			Descent: box.Y2 - baseline,
		},
		Transcription: layout.String(strings.Join(words, " ")),
	}, nil
}

func blockBox(hpos, vpos, width, height string) (geometry.Box, error) {
	h, err1 := strconv.ParseFloat(hpos, 64)
	v, err2 := strconv.ParseFloat(vpos, 64)
	w, err3 := strconv.ParseFloat(width, 64)
	ht, err4 := strconv.ParseFloat(height, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return geometry.Box{}, fmt.Errorf("%w: box (%q,%q,%q,%q)",
			layout.ErrMalformedDocument, hpos, vpos, width, height)
	}
	return geometry.NewBox(h, v, h+w, v+ht), nil
}
