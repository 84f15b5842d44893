package pagexml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/ocralign/pagealign/pkg/layout"
)

type outRoot struct {
	XMLName xml.Name `xml:"PcGts"`
	Xmlns   string   `xml:"xmlns,attr"`
	Page    outPage  `xml:"Page"`
}

type outPage struct {
	ImageFilename string      `xml:"imageFilename,attr"`
	ImageWidth    int         `xml:"imageWidth,attr"`
	ImageHeight   int         `xml:"imageHeight,attr"`
	Regions       []outRegion `xml:"TextRegion"`
}

type outRegion struct {
	ID        string        `xml:"id,attr"`
	Coords    outCoords     `xml:"Coords"`
	TextEquiv *outTextEquiv `xml:"TextEquiv"`
	Lines     []outLine     `xml:"TextLine"`
}

type outLine struct {
	ID        string        `xml:"id,attr"`
	Custom    string        `xml:"custom,attr,omitempty"`
	Coords    outCoords     `xml:"Coords"`
	Baseline  *outCoords    `xml:"Baseline"`
	TextEquiv *outTextEquiv `xml:"TextEquiv"`
}

type outCoords struct {
	Points string `xml:"points,attr,omitempty"`
}

type outTextEquiv struct {
	Unicode string `xml:"Unicode"`
}

// Encode writes the page as a PAGE XML document. Heights are always
// written with the structured heights_v2 encoding.
func Encode(w io.Writer, page *layout.Page) error {
	root := outRoot{
		Xmlns: Namespace,
		Page: outPage{
			ImageFilename: page.ID,
			ImageWidth:    page.Width,
			ImageHeight:   page.Height,
		},
	}

	for _, region := range page.Regions {
		out := outRegion{
			ID:        region.ID,
			Coords:    outCoords{Points: FormatPoints(region.Polygon)},
			TextEquiv: textEquiv(region.Transcription),
		}
		for _, line := range region.Lines {
			outL := outLine{
				ID:        line.ID,
				TextEquiv: textEquiv(line.Transcription),
			}
			if line.Heights != nil {
				outL.Custom = formatHeights(line.Heights)
			}
			if line.Polygon != nil {
				outL.Coords.Points = FormatPoints(line.Polygon)
			}
			if line.Baseline != nil {
				outL.Baseline = &outCoords{Points: FormatPoints(line.Baseline)}
			}
			out.Lines = append(out.Lines, outL)
		}
		root.Page.Regions = append(root.Page.Regions, out)
	}

	data, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding PAGE XML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// EncodeBytes renders the page as a PAGE XML document in memory.
func EncodeBytes(page *layout.Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func textEquiv(transcription *string) *outTextEquiv {
	if transcription == nil {
		return nil
	}
	return &outTextEquiv{Unicode: *transcription}
}
