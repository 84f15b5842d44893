// docaipage is a command-line tool for processing a PDF with Google
// Document AI and exporting the recognized layout as PAGE XML, one
// document per page.
//
// Configuration:
//
// The tool requires a YAML configuration file with Document AI settings:
//
//	project_id: "your-gcp-project-id"
//	location: "us"
//	processor_id: "your-processor-id"
//
// Usage:
//
//	docaipage -config config.yml -pdf input.pdf -out-dir pages/ [options]
//
// Required flags:
//
//	-config string  Path to the YAML configuration file
//	-pdf string     Path to the input PDF file
//	-out-dir string Directory to save one PAGE XML file per page
//
// Debug options:
//
//	-debug-api string  Path to save the raw API response as JSON
//
// Authentication:
//
// The tool uses the GOOGLE_APPLICATION_CREDENTIALS environment variable
// for authentication with Google Cloud.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ocralign/pagealign/pkg/docai"
	"github.com/ocralign/pagealign/pkg/pagexml"
)

type yamlConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// loadConfig reads a YAML file and converts it to a Document AI config
func loadConfig(path string) (*docai.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, err
	}
	return &docai.Config{
		ProjectID:   yc.ProjectID,
		Location:    yc.Location,
		ProcessorID: yc.ProcessorID,
	}, nil
}

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file (required)")
	pdfPath := flag.String("pdf", "", "Path to the input PDF file (required)")
	outDir := flag.String("out-dir", "", "Directory to save PAGE XML files (required)")
	debugAPIPath := flag.String("debug-api", "", "Path to save API response as JSON for debugging purposes")

	flag.Parse()

	if *configPath == "" || *pdfPath == "" || *outDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -config, -pdf and -out-dir flags are required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	pdfBytes, err := os.ReadFile(*pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading PDF: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	doc, err := docai.Process(ctx, pdfBytes, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing document: %v\n", err)
		os.Exit(1)
	}

	if *debugAPIPath != "" {
		jsonData, err := docai.ToJSON(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error serializing API response: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*debugAPIPath, []byte(jsonData), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing API response: %v\n", err)
			os.Exit(1)
		}
	}

	pages, err := docai.PagesFromProto(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting document: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	for i, page := range pages {
		outPath := filepath.Join(*outDir, fmt.Sprintf("%s_%04d.xml", page.ID, i+1))
		data, err := pagexml.EncodeBytes(page)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding page %d: %v\n", i+1, err)
			os.Exit(1)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing page %d: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("PAGE XML saved to %s\n", outPath)
	}
}
