// Package blueprintanalyzer provides AI-assisted construction blueprint
// analysis.
//
// This package combines format normalization, a vision-model measurement
// contract, and deterministic annotation rendering to turn an uploaded
// blueprint (PDF or raster image) into a structured set of dimensions
// overlaid on the source drawing.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		blueprintanalyzer "github.com/menta2k/blueprint-analyzer"
//		"github.com/menta2k/blueprint-analyzer/pkg/ollama"
//	)
//
//	func main() {
//		// Point the analyzer at a vision-capable model
//		vc, err := ollama.NewClient("http://localhost:11434")
//		if err != nil {
//			log.Fatal(err)
//		}
//		ba := blueprintanalyzer.New(vc, "llama3.2-vision")
//
//		// Analyze a blueprint file
//		env, err := ba.AnalyzeFile(context.Background(), "floorplan.pdf")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("Scale: %s (%s)\n", env.Analysis.Scale, env.Analysis.ScaleConfidence)
//		for _, dim := range env.Analysis.Dimensions {
//			fmt.Printf("  %s: %s [%s, %s]\n", dim.Label, dim.Value, dim.Type, dim.Confidence)
//		}
//	}
//
// The pipeline consists of five stages:
//
// 1. Normalizer (pkg/normalizer): converts PDFs and raster uploads into one canonical RGB image
// 2. Analysis (pkg/analysis): builds the model request and parses the reply tolerantly
// 3. Annotator (pkg/annotator): draws the scale banner, dimension callouts, and summary footer
// 4. Pipeline (pkg/pipeline): sequences the stages and persists the result
// 5. Clients (pkg/ollama, pkg/llamacpp): pluggable vision-model backends
//
// Parse and render failures never fail a request: a malformed model reply
// degrades to an empty-but-valid record, and a drawing failure degrades to
// the unannotated image.
package blueprintanalyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/blueprint-analyzer/internal/config"
	"github.com/menta2k/blueprint-analyzer/pkg/annotator"
	"github.com/menta2k/blueprint-analyzer/pkg/client"
	"github.com/menta2k/blueprint-analyzer/pkg/pipeline"
	"github.com/menta2k/blueprint-analyzer/pkg/store"
	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// Version of the blueprint analyzer library
const Version = "1.0.0"

// BlueprintAnalyzer provides a high-level interface for blueprint analysis
type BlueprintAnalyzer struct {
	pipeline *pipeline.Pipeline
}

// New creates a BlueprintAnalyzer with default configuration around the
// given vision client and model.
func New(vc client.VisionClient, model string) *BlueprintAnalyzer {
	return &BlueprintAnalyzer{
		pipeline: pipeline.New(vc, pipeline.Config{Model: model}),
	}
}

// NewWithConfig creates a BlueprintAnalyzer with custom configuration and an
// optional persistence store.
func NewWithConfig(vc client.VisionClient, cfg *config.Config, st store.Store) *BlueprintAnalyzer {
	renderer := annotator.NewWithConfig(annotator.Config{
		BoldFontPath:    cfg.Annotator.BoldFontPath,
		RegularFontPath: cfg.Annotator.RegularFontPath,
	})
	return &BlueprintAnalyzer{
		pipeline: pipeline.New(vc, pipeline.Config{
			Model:    cfg.Backend.Model,
			SendSize: cfg.Backend.SendSize,
			Store:    st,
			Renderer: renderer,
		}),
	}
}

// Analyze runs the full pipeline on uploaded bytes and returns the result
// envelope with both images encoded as PNG data URIs.
func (ba *BlueprintAnalyzer) Analyze(ctx context.Context, filename string, data []byte) (*types.Envelope, error) {
	return ba.pipeline.Analyze(ctx, filename, data)
}

// AnalyzeFile is a convenience wrapper that reads and analyzes a local file.
func (ba *BlueprintAnalyzer) AnalyzeFile(ctx context.Context, path string) (*types.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint file: %w", err)
	}
	return ba.Analyze(ctx, filepath.Base(path), data)
}

// Pipeline exposes the underlying pipeline for callers that mount it behind
// their own transport.
func (ba *BlueprintAnalyzer) Pipeline() *pipeline.Pipeline {
	return ba.pipeline
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
