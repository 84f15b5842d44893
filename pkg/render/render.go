// Package render draws a page layout as a vector overlay PDF: region
// polygons, line polygons, baselines and, when provided, reconstructed
// word and gap boxes, each group on its own toggleable layer.
package render

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/ocralign/pagealign/pkg/align"
	"github.com/ocralign/pagealign/pkg/geometry"
	"github.com/ocralign/pagealign/pkg/layout"
)

// Config holds drawing options for the overlay.
type Config struct {
	Thickness     float64 // Line width in points
	DrawRegions   bool    // Draw region polygons
	DrawLines     bool    // Draw line polygons
	DrawBaselines bool    // Draw baselines
	DrawWordText  bool    // Print word content inside word boxes
	Font          FontConfig
}

// FontConfig contains font settings for word content rendering.
type FontConfig struct {
	Name string  // Font name (e.g., "Helvetica")
	Size float64 // Font size in points
}

// DefaultConfig returns a config with all geometry layers enabled.
func DefaultConfig() Config {
	return Config{
		Thickness:     2,
		DrawRegions:   true,
		DrawLines:     true,
		DrawBaselines: true,
		DrawWordText:  false,
		Font:          FontConfig{Name: "Helvetica", Size: 8},
	}
}

// PageOverlay renders the page's geometry into a single-page PDF of the
// page's pixel dimensions. Word boxes reconstructed per line may be
// passed keyed by line ID; nil means no word layer.
func PageOverlay(page *layout.Page, words map[string][]align.WordBox, cfg Config) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: float64(page.Width), Ht: float64(page.Height)})
	pdf.SetLineWidth(cfg.Thickness)
	pdf.SetFont(cfg.Font.Name, "", cfg.Font.Size)

	if cfg.DrawRegions {
		layer := pdf.AddLayer("Regions", true)
		pdf.BeginLayer(layer)
		pdf.SetDrawColor(255, 0, 0)
		for _, region := range page.Regions {
			drawPolygon(pdf, region.Polygon, true)
		}
		pdf.EndLayer()
	}

	if cfg.DrawLines {
		layer := pdf.AddLayer("Lines", true)
		pdf.BeginLayer(layer)
		pdf.SetDrawColor(0, 255, 0)
		for _, line := range page.Lines() {
			drawPolygon(pdf, line.Polygon, true)
		}
		pdf.EndLayer()
	}

	if cfg.DrawBaselines {
		layer := pdf.AddLayer("Baselines", true)
		pdf.BeginLayer(layer)
		pdf.SetDrawColor(0, 0, 255)
		for _, line := range page.Lines() {
			drawPolygon(pdf, line.Baseline, false)
		}
		pdf.EndLayer()
	}

	if words != nil {
		layer := pdf.AddLayer("Words", true)
		pdf.BeginLayer(layer)
		pdf.SetDrawColor(255, 128, 0)
		for _, line := range page.Lines() {
			for _, word := range words[line.ID] {
				drawWordBox(pdf, word, cfg)
			}
		}
		pdf.EndLayer()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate overlay PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPolygon strokes a polyline, optionally closing it back to the
// first point.
func drawPolygon(pdf *fpdf.Fpdf, points []geometry.Point, close bool) {
	if len(points) < 2 {
		return
	}
	for i := 1; i < len(points); i++ {
		pdf.Line(points[i-1].X, points[i-1].Y, points[i].X, points[i].Y)
	}
	if close {
		last := points[len(points)-1]
		pdf.Line(last.X, last.Y, points[0].X, points[0].Y)
	}
}

func drawWordBox(pdf *fpdf.Fpdf, word align.WordBox, cfg Config) {
	if !word.Box.IsZero() {
		pdf.Rect(word.Box.X1, word.Box.Y1, word.Box.Width(), word.Box.Height(), "D")
		if cfg.DrawWordText {
			// Convert to ISO-8859-1 to avoid PDF encoding issues.
			latin1, err := charmap.ISO8859_1.NewEncoder().String(word.Text)
			if err != nil {
				latin1 = word.Text
			}
			pdf.Text(word.Box.X1, word.Box.Y2, latin1)
		}
	}
	if word.Gap != nil && !word.Gap.IsZero() {
		pdf.Rect(word.Gap.X1, word.Gap.Y1, word.Gap.Width(), word.Gap.Height(), "D")
	}
}
