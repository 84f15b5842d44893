// Package pagexml implements the PAGE-style XML dialect of the layout
// model.
//
// This package provides:
//
// - Decoding PAGE XML documents into the layout model, tolerating an
//   elided or arbitrary namespace prefix and non-UTF-8 charsets
// - Recovery of legacy line height encodings from the custom attribute
// - Encoding the layout model back to PAGE XML with the structured
//   heights_v2 encoding
//
// A structurally invalid document fails with layout.ErrMalformedDocument
// and never partially populates the model.
package pagexml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Namespace is the schema URI written on encoded documents.
const Namespace = "http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15"

// The read-side structures match elements by local name only, so any
// namespace prefix (or none at all) is accepted.
type xmlRoot struct {
	Pages []xmlPage `xml:"Page"`
}

type xmlPage struct {
	ImageFilename string      `xml:"imageFilename,attr"`
	ImageWidth    string      `xml:"imageWidth,attr"`
	ImageHeight   string      `xml:"imageHeight,attr"`
	Regions       []xmlRegion `xml:"TextRegion"`
}

type xmlRegion struct {
	ID        string        `xml:"id,attr"`
	Coords    *xmlCoords    `xml:"Coords"`
	TextEquiv *xmlTextEquiv `xml:"TextEquiv"`
	Lines     []xmlLine     `xml:"TextLine"`
}

type xmlLine struct {
	ID        string        `xml:"id,attr"`
	Custom    string        `xml:"custom,attr"`
	Coords    *xmlCoords    `xml:"Coords"`
	Baseline  *xmlCoords    `xml:"Baseline"`
	TextEquiv *xmlTextEquiv `xml:"TextEquiv"`
}

type xmlCoords struct {
	Points string     `xml:"points,attr"`
	Point  []xmlPoint `xml:"Point"`
}

type xmlPoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

type xmlTextEquiv struct {
	Unicode *xmlUnicode `xml:"Unicode"`
}

type xmlUnicode struct {
	Text string `xml:",chardata"`
}

// Decode parses a PAGE XML document into a layout page.
func Decode(r io.Reader) (*layout.Page, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root xmlRoot
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", layout.ErrMalformedDocument, err)
	}
	if len(root.Pages) == 0 {
		return nil, fmt.Errorf("%w: no Page element", layout.ErrMalformedDocument)
	}
	src := root.Pages[0]

	height, err := strconv.Atoi(src.ImageHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: page imageHeight %q", layout.ErrMalformedDocument, src.ImageHeight)
	}
	width, err := strconv.Atoi(src.ImageWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: page imageWidth %q", layout.ErrMalformedDocument, src.ImageWidth)
	}

	page := &layout.Page{
		ID:     src.ImageFilename,
		Height: height,
		Width:  width,
	}

	for _, r := range src.Regions {
		region, err := decodeRegion(r)
		if err != nil {
			return nil, err
		}
		page.Regions = append(page.Regions, region)
	}
	return page, nil
}

// DecodeBytes parses a PAGE XML document held in memory.
func DecodeBytes(data []byte) (*layout.Page, error) {
	return Decode(strings.NewReader(string(data)))
}

func decodeRegion(src xmlRegion) (*layout.Region, error) {
	if src.ID == "" {
		return nil, fmt.Errorf("%w: TextRegion without id", layout.ErrMalformedDocument)
	}
	if src.Coords == nil {
		return nil, fmt.Errorf("%w: region %s has no Coords", layout.ErrMalformedDocument, src.ID)
	}
	polygon, err := decodeCoords(src.Coords)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", src.ID, err)
	}

	region := &layout.Region{
		ID:            src.ID,
		Polygon:       polygon,
		Transcription: decodeTranscription(src.TextEquiv),
	}

	for _, l := range src.Lines {
		line, err := decodeLine(l)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", src.ID, err)
		}
		region.Lines = append(region.Lines, line)
	}
	return region, nil
}

func decodeLine(src xmlLine) (*layout.TextLine, error) {
	if src.ID == "" {
		return nil, fmt.Errorf("%w: TextLine without id", layout.ErrMalformedDocument)
	}
	line := &layout.TextLine{
		ID:            src.ID,
		Transcription: decodeTranscription(src.TextEquiv),
	}

	if src.Custom != "" {
		heights, err := parseHeights(src.Custom)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", src.ID, err)
		}
		line.Heights = heights
	}

	if src.Baseline != nil {
		baseline, err := decodeCoords(src.Baseline)
		if err != nil {
			return nil, fmt.Errorf("line %s baseline: %w", src.ID, err)
		}
		line.Baseline = baseline
	}
	if src.Coords != nil {
		polygon, err := decodeCoords(src.Coords)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", src.ID, err)
		}
		line.Polygon = polygon
	}
	return line, nil
}

// decodeTranscription maps an absent TextEquiv to nil and an empty
// Unicode element to the empty string.
func decodeTranscription(te *xmlTextEquiv) *string {
	if te == nil {
		return nil
	}
	if te.Unicode == nil {
		return layout.String("")
	}
	return layout.String(te.Unicode.Text)
}

// decodeCoords reads points either from the whitespace-separated "x,y"
// points attribute or from explicit Point child elements.
func decodeCoords(coords *xmlCoords) ([]geometry.Point, error) {
	if coords.Points != "" {
		return ParsePoints(coords.Points)
	}
	var points []geometry.Point
	for _, p := range coords.Point {
		x, errX := strconv.ParseFloat(p.X, 64)
		y, errY := strconv.ParseFloat(p.Y, 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: point (%q,%q)", layout.ErrMalformedDocument, p.X, p.Y)
		}
		points = append(points, geometry.Point{X: x, Y: y})
	}
	return points, nil
}

// ParsePoints parses a whitespace-separated list of "x,y" pairs.
// Coordinates are rounded to the nearest integer.
func ParsePoints(s string) ([]geometry.Point, error) {
	var points []geometry.Point
	for _, pair := range strings.Fields(s) {
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: point %q", layout.ErrMalformedDocument, pair)
		}
		x, errX := strconv.ParseFloat(xy[0], 64)
		y, errY := strconv.ParseFloat(xy[1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: point %q", layout.ErrMalformedDocument, pair)
		}
		points = append(points, geometry.Point{X: math.Round(x), Y: math.Round(y)})
	}
	return points, nil
}

// FormatPoints renders points as the whitespace-separated "x,y" list,
// truncating coordinates to integers.
func FormatPoints(points []geometry.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%d,%d", int(p.X), int(p.Y))
	}
	return strings.Join(parts, " ")
}
