// Package docai ingests Google Document AI OCR results into the layout
// model, as an alternative source format next to the XML codecs.
//
// Document AI carries no baselines and no character probabilities, so
// pages built here have synthesized baselines (the bottom edge of each
// line's bounding polygon) and need logits attached separately before
// word geometry can be reconstructed.
package docai

import (
	"context"
	"fmt"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Config holds the Document AI processor coordinates.
type Config struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// Endpoint returns the location-qualified API endpoint.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}

// ProcessorName returns the fully-qualified processor resource name.
func (c *Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		c.ProjectID, c.Location, c.ProcessorID)
}

// Process sends PDF bytes through the configured processor and returns
// the raw Document proto, to be converted with PagesFromProto. Credentials
// come from the GOOGLE_APPLICATION_CREDENTIALS environment variable.
func Process(ctx context.Context, pdfBytes []byte, cfg *Config) (*documentaipb.Document, error) {
	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(cfg.Endpoint()),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Document AI client: %w", err)
	}
	defer client.Close()

	resp, err := client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: cfg.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return nil, fmt.Errorf("processing document with %s: %w", cfg.ProcessorName(), err)
	}

	return resp.Document, nil
}

// PagesFromProto converts every page of a Document AI response into a
// layout page. Blocks become regions, lines become text lines.
func PagesFromProto(doc *documentaipb.Document) ([]*layout.Page, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", layout.ErrMalformedDocument)
	}
	var pages []*layout.Page
	for _, page := range doc.Pages {
		converted, err := pageFromProto(page, doc.Text)
		if err != nil {
			return nil, err
		}
		pages = append(pages, converted)
	}
	return pages, nil
}

func pageFromProto(page *documentaipb.Document_Page, fullText string) (*layout.Page, error) {
	if page.Dimension == nil {
		return nil, fmt.Errorf("%w: page %d has no dimension", layout.ErrMalformedDocument, page.PageNumber)
	}
	pageNum := int(page.PageNumber)
	result := &layout.Page{
		ID:     fmt.Sprintf("page_%d", pageNum),
		Height: int(page.Dimension.Height),
		Width:  int(page.Dimension.Width),
	}

	assigned := make(map[int]bool)
	for b, block := range page.Blocks {
		region := &layout.Region{
			ID:      fmt.Sprintf("block_%d_%d", pageNum, b),
			Polygon: polygonFromLayout(block.Layout, page.Dimension),
		}
		if text := strings.TrimSpace(textFromLayout(block.Layout, fullText)); text != "" {
			region.Transcription = layout.String(text)
		}
		for l, line := range page.Lines {
			if !isElementInParent(line.Layout, block.Layout) {
				continue
			}
			assigned[l] = true
			region.Lines = append(region.Lines, lineFromProto(line, page.Dimension, fullText, pageNum, b, l))
		}
		result.Regions = append(result.Regions, region)
	}

	// Lines outside every block go into a synthetic catch-all region.
	var loose *layout.Region
	for l, line := range page.Lines {
		if assigned[l] {
			continue
		}
		if loose == nil {
			loose = &layout.Region{ID: fmt.Sprintf("block_%d_unassigned", pageNum)}
		}
		loose.Lines = append(loose.Lines, lineFromProto(line, page.Dimension, fullText, pageNum, len(page.Blocks), l))
	}
	if loose != nil {
		var points []geometry.Point
		for _, line := range loose.Lines {
			points = append(points, line.Polygon...)
		}
		loose.Polygon = geometry.Rect(geometry.BoxFromPoints(points))
		result.Regions = append(result.Regions, loose)
	}

	return result, nil
}

func lineFromProto(line *documentaipb.Document_Page_Line, dim *documentaipb.Document_Page_Dimension,
	fullText string, pageNum, blockIdx, lineIdx int) *layout.TextLine {

	polygon := polygonFromLayout(line.Layout, dim)
	box := geometry.BoxFromPoints(polygon)

	text := textFromLayout(line.Layout, fullText)
	text = strings.TrimRight(strings.ReplaceAll(text, "\r", ""), " \n\t")

	return &layout.TextLine{
		ID:      fmt.Sprintf("line_%d_%d_%d", pageNum, blockIdx, lineIdx),
		Polygon: polygon,
		Baseline: []geometry.Point{
			{X: box.X1, Y: box.Y2},
			{X: box.X2, Y: box.Y2},
		},
		Heights:       &layout.Heights{Ascent: box.Height(), Descent: 0},
		Transcription: layout.String(text),
	}
}

// polygonFromLayout scales a layout's normalized bounding polygon to
// pixel coordinates.
func polygonFromLayout(l *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) []geometry.Point {
	if l == nil || l.BoundingPoly == nil {
		return nil
	}
	var points []geometry.Point
	for _, v := range l.BoundingPoly.NormalizedVertices {
		points = append(points, geometry.Point{
			X: float64(v.X * dim.Width),
			Y: float64(v.Y * dim.Height),
		})
	}
	return points
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(l *documentaipb.Document_Page_Layout, fullText string) string {
	if l == nil || l.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var result strings.Builder
	for _, seg := range l.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// isElementInParent checks text anchor containment between two layouts.
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	if element == nil || parent == nil ||
		element.TextAnchor == nil || parent.TextAnchor == nil ||
		len(element.TextAnchor.TextSegments) == 0 || len(parent.TextAnchor.TextSegments) == 0 {
		return false
	}
	elementStart := element.TextAnchor.TextSegments[0].StartIndex
	elementEnd := element.TextAnchor.TextSegments[0].EndIndex
	parentStart := parent.TextAnchor.TextSegments[0].StartIndex
	parentEnd := parent.TextAnchor.TextSegments[0].EndIndex
	return elementStart >= parentStart && elementEnd <= parentEnd
}

// ToJSON renders a proto message as JSON, for debug dumps.
func ToJSON(msg proto.Message) (string, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
