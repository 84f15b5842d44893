// Package altoxml implements the ALTO-style XML dialect of the layout
// model.
//
// Writing a page derives rectangular blocks from region polygons and,
// when the forced-alignment and line-crop collaborators are supplied,
// reconstructs per-word String and inter-word SP elements through the
// align package. Reading recovers rectangle-only geometry and flattens
// the word elements back into line transcriptions, so a round trip
// through this dialect is lossy for non-rectangular polygons and word
// geometry.
package altoxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ocralign/pagealign/pkg/align"
	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Namespace is the schema URI written on encoded documents.
const Namespace = "http://www.loc.gov/standards/alto/ns-v2#"

// Provenance constants written into the Description block. They carry no
// semantic role beyond the audit trail.
const (
	SoftwareCreator = "OCRAlign Project"
	SoftwareName    = "pagealign"
	SoftwareVersion = "v0.1.0"
)

// Encoder writes pages as ALTO XML. When both Aligner and Cropper are
// set, every line with a transcription gets String/SP word geometry and
// a line missing logits, alphabet, baseline or heights fails the encode
// with a wrapped layout.ErrMissingPrerequisite. With either collaborator
// unset, words are written with their CONTENT only and no geometry is
// attempted.
type Encoder struct {
	Aligner          align.Aligner
	Cropper          align.Cropper
	Downsample       int
	MissingLogit     float32
	LiberalNarrowing bool
}

type altoRoot struct {
	XMLName     xml.Name        `xml:"alto"`
	Xmlns       string          `xml:"xmlns,attr"`
	XmlnsXlink  string          `xml:"xmlns:xlink,attr"`
	XmlnsXsi    string          `xml:"xmlns:xsi,attr"`
	Description altoDescription `xml:"Description"`
	Layout      altoLayout      `xml:"Layout"`
}

type altoDescription struct {
	MeasurementUnit string            `xml:"MeasurementUnit"`
	OCRProcessing   altoOCRProcessing `xml:"OCRProcessing"`
}

type altoOCRProcessing struct {
	ID   string             `xml:"ID,attr"`
	Step altoProcessingStep `xml:"ocrProcessingStep"`
}

type altoProcessingStep struct {
	DateTime string       `xml:"processingDateTime"`
	Software altoSoftware `xml:"processingSoftware"`
}

type altoSoftware struct {
	Creator string `xml:"softwareCreator"`
	Name    string `xml:"softwareName"`
	Version string `xml:"softwareVersion"`
}

type altoLayout struct {
	Page altoPage `xml:"Page"`
}

type altoPage struct {
	ID            string         `xml:"ID,attr"`
	PhysicalImgNr int            `xml:"PHYSICAL_IMG_NR,attr"`
	Height        int            `xml:"HEIGHT,attr"`
	Width         int            `xml:"WIDTH,attr"`
	TopMargin     altoRect       `xml:"TopMargin"`
	LeftMargin    altoRect       `xml:"LeftMargin"`
	RightMargin   altoRect       `xml:"RightMargin"`
	BottomMargin  altoRect       `xml:"BottomMargin"`
	PrintSpace    altoPrintSpace `xml:"PrintSpace"`
}

type altoRect struct {
	Height int `xml:"HEIGHT,attr"`
	Width  int `xml:"WIDTH,attr"`
	VPos   int `xml:"VPOS,attr"`
	HPos   int `xml:"HPOS,attr"`
}

type altoPrintSpace struct {
	altoRect
	Blocks []altoTextBlock `xml:"TextBlock"`
}

type altoTextBlock struct {
	ID     string         `xml:"ID,attr"`
	Height int            `xml:"HEIGHT,attr"`
	Width  int            `xml:"WIDTH,attr"`
	VPos   int            `xml:"VPOS,attr"`
	HPos   int            `xml:"HPOS,attr"`
	Lines  []altoTextLine `xml:"TextLine"`
}

type altoTextLine struct {
	Baseline int `xml:"BASELINE,attr"`
	VPos     int `xml:"VPOS,attr"`
	HPos     int `xml:"HPOS,attr"`
	Height   int `xml:"HEIGHT,attr"`
	Width    int `xml:"WIDTH,attr"`
	// String and SP elements interleaved in document order; the element
	// name is taken from each value's XMLName.
	Children []interface{}
}

type altoString struct {
	XMLName xml.Name `xml:"String"`
	Content string   `xml:"CONTENT,attr"`
	Height  int      `xml:"HEIGHT,attr"`
	Width   int      `xml:"WIDTH,attr"`
	VPos    int      `xml:"VPOS,attr"`
	HPos    int      `xml:"HPOS,attr"`
}

type altoSP struct {
	XMLName xml.Name `xml:"SP"`
	Width   int      `xml:"WIDTH,attr"`
	VPos    int      `xml:"VPOS,attr"`
	HPos    int      `xml:"HPOS,attr"`
}

// Encode writes the page as an ALTO XML document.
func (e *Encoder) Encode(w io.Writer, page *layout.Page) error {
	data, err := e.EncodeBytes(page)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeBytes renders the page as an ALTO XML document in memory.
func (e *Encoder) EncodeBytes(page *layout.Page) ([]byte, error) {
	out := altoPage{
		ID:            "id_" + page.ID,
		PhysicalImgNr: 1,
		Height:        page.Height,
		Width:         page.Width,
	}

	var regionBoxes []geometry.Box
	for _, region := range page.Regions {
		box := geometry.BoxFromPoints(region.Polygon)
		regionBoxes = append(regionBoxes, box)

		block := altoTextBlock{
			ID:     region.ID,
			Height: int(box.Height()),
			Width:  int(box.Width()),
			VPos:   int(box.Y1),
			HPos:   int(box.X1),
		}
		for _, line := range region.Lines {
			if line.Text() == "" {
				continue
			}
			outLine, err := e.encodeLine(line)
			if err != nil {
				return nil, err
			}
			block.Lines = append(block.Lines, outLine)
		}
		out.PrintSpace.Blocks = append(out.PrintSpace.Blocks, block)
	}

	printSpace := geometry.Envelope(regionBoxes...)
	out.PrintSpace.altoRect = rectOf(printSpace)
	out.TopMargin = altoRect{Height: int(printSpace.Y1), Width: page.Width}
	out.LeftMargin = altoRect{Height: page.Height, Width: int(printSpace.X1)}
	out.RightMargin = altoRect{
		Height: page.Height,
		Width:  page.Width - int(printSpace.X2),
		HPos:   int(printSpace.X2),
	}
	out.BottomMargin = altoRect{
		Height: page.Height - int(printSpace.Y2),
		Width:  page.Width,
		VPos:   int(printSpace.Y2),
	}

	root := altoRoot{
		Xmlns:      Namespace,
		XmlnsXlink: "http://www.w3.org/1999/xlink",
		XmlnsXsi:   "http://www.w3.org/2001/XMLSchema-instance",
		Description: altoDescription{
			MeasurementUnit: "pixel",
			OCRProcessing: altoOCRProcessing{
				ID: "IdOcr",
				Step: altoProcessingStep{
					DateTime: time.Now().Format("2006-01-02"),
					Software: altoSoftware{
						Creator: SoftwareCreator,
						Name:    SoftwareName,
						Version: SoftwareVersion,
					},
				},
			},
		},
		Layout: altoLayout{Page: out},
	}

	data, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding ALTO XML: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\" standalone=\"yes\"?>\n")
	buf.Write(data)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// encodeLine renders one line, reconstructing word geometry when the
// collaborators are available.
func (e *Encoder) encodeLine(line *layout.TextLine) (altoTextLine, error) {
	if len(line.Polygon) == 0 {
		return altoTextLine{}, fmt.Errorf("%w: line %s has no polygon", layout.ErrMissingPrerequisite, line.ID)
	}
	if len(line.Baseline) == 0 {
		return altoTextLine{}, fmt.Errorf("%w: line %s has no baseline", layout.ErrMissingPrerequisite, line.ID)
	}

	box := geometry.BoxFromPoints(line.Polygon)
	out := altoTextLine{
		Baseline: int(geometry.AverageY(line.Baseline)),
		VPos:     int(box.Y1),
		HPos:     int(box.X1),
		Height:   int(box.Height()),
		Width:    int(box.Width()),
	}

	if e.Aligner == nil || e.Cropper == nil {
		for _, word := range strings.Fields(line.Text()) {
			out.Children = append(out.Children, altoString{Content: word})
		}
		return out, nil
	}

	words, err := align.ReconstructLine(line, align.Config{
		Aligner:          e.Aligner,
		Cropper:          e.Cropper,
		Downsample:       e.Downsample,
		MissingLogit:     e.MissingLogit,
		LiberalNarrowing: e.LiberalNarrowing,
	})
	if err != nil {
		return altoTextLine{}, fmt.Errorf("line %s word geometry: %w", line.ID, err)
	}

	for _, word := range words {
		out.Children = append(out.Children, altoString{
			Content: word.Text,
			Height:  int(word.Box.Height()),
			Width:   int(word.Box.Width()),
			VPos:    int(word.Box.Y1),
			HPos:    int(word.Box.X1),
		})
		if word.Gap != nil {
			out.Children = append(out.Children, altoSP{
				Width: int(word.Gap.Width()),
				VPos:  int(word.Gap.Y1),
				HPos:  int(word.Gap.X1),
			})
		}
	}
	return out, nil
}

func rectOf(b geometry.Box) altoRect {
	return altoRect{
		Height: int(b.Height()),
		Width:  int(b.Width()),
		VPos:   int(b.Y1),
		HPos:   int(b.X1),
	}
}
