// pagealto is a command-line tool for converting PAGE XML layout
// documents to ALTO XML and related maintenance tasks.
//
// It reads a PAGE XML document, optionally attaches a logits snapshot to
// its lines, and can then write the layout as ALTO XML, rewrite it as
// PAGE XML (migrating legacy height encodings to the structured one), or
// render the layout geometry as an overlay PDF for inspection.
//
// Word-level String/SP geometry in ALTO output requires forced-alignment
// and line-crop collaborators, which are separate services wired in
// through the library API (pkg/altoxml.Encoder); this tool emits ALTO
// with word content but without word geometry.
//
// Usage:
//
//	pagealto -page input.xml [options]
//
// Required flags:
//
//	-page string  Path to the input PAGE XML document
//
// Output options (at least one required):
//
//	-alto string     Path to save the ALTO XML output
//	-pagexml string  Path to rewrite the PAGE XML output
//	-overlay string  Path to save a PDF overlay of the layout geometry
//
// Other options:
//
//	-logits string  Path to a logits snapshot to attach before converting
//	-config string  Path to a YAML configuration file
//
// Example:
//
//	pagealto -page scan_0001.xml -logits scan_0001.logits -alto scan_0001.alto.xml
//	pagealto -page legacy.xml -pagexml migrated.xml
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ocralign/pagealign/pkg/altoxml"
	"github.com/ocralign/pagealign/pkg/pagexml"
	"github.com/ocralign/pagealign/pkg/render"
)

type yamlConfig struct {
	Overlay struct {
		Thickness float64 `yaml:"thickness"`
		Regions   *bool   `yaml:"regions"`
		Lines     *bool   `yaml:"lines"`
		Baselines *bool   `yaml:"baselines"`
	} `yaml:"overlay"`
}

// loadConfig reads a YAML file and merges it over the render defaults
func loadConfig(path string) (render.Config, error) {
	cfg := render.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return cfg, err
	}
	if yc.Overlay.Thickness > 0 {
		cfg.Thickness = yc.Overlay.Thickness
	}
	if yc.Overlay.Regions != nil {
		cfg.DrawRegions = *yc.Overlay.Regions
	}
	if yc.Overlay.Lines != nil {
		cfg.DrawLines = *yc.Overlay.Lines
	}
	if yc.Overlay.Baselines != nil {
		cfg.DrawBaselines = *yc.Overlay.Baselines
	}
	return cfg, nil
}

func main() {
	pagePath := flag.String("page", "", "Path to the input PAGE XML document (required)")
	logitsPath := flag.String("logits", "", "Path to a logits snapshot to attach")
	altoPath := flag.String("alto", "", "Path to save ALTO XML output")
	pagexmlPath := flag.String("pagexml", "", "Path to rewrite PAGE XML output")
	overlayPath := flag.String("overlay", "", "Path to save an overlay PDF")
	configPath := flag.String("config", "", "Path to a YAML configuration file")

	flag.Parse()

	if *pagePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -page flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *altoPath == "" && *pagexmlPath == "" && *overlayPath == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one of -alto, -pagexml or -overlay is required")
		os.Exit(1)
	}

	overlayCfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	pageFile, err := os.Open(*pagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PAGE XML: %v\n", err)
		os.Exit(1)
	}
	page, err := pagexml.Decode(pageFile)
	pageFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing PAGE XML: %v\n", err)
		os.Exit(1)
	}

	if *logitsPath != "" {
		logitsFile, err := os.Open(*logitsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening logits snapshot: %v\n", err)
			os.Exit(1)
		}
		err = page.LoadLogits(logitsFile)
		logitsFile.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading logits snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	if *altoPath != "" {
		enc := altoxml.Encoder{}
		data, err := enc.EncodeBytes(page)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding ALTO XML: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*altoPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing ALTO XML: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("ALTO XML saved to %s\n", *altoPath)
	}

	if *pagexmlPath != "" {
		data, err := pagexml.EncodeBytes(page)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding PAGE XML: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*pagexmlPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PAGE XML: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PAGE XML saved to %s\n", *pagexmlPath)
	}

	if *overlayPath != "" {
		data, err := render.PageOverlay(page, nil, overlayCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering overlay: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*overlayPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing overlay PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Overlay PDF saved to %s\n", *overlayPath)
	}
}
