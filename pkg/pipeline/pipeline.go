// Package pipeline sequences one blueprint analysis: normalization, model
// invocation, response parsing, annotation rendering, persistence, and
// envelope assembly. Each invocation is a single sequential unit of work
// with no state shared between concurrent requests.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/blueprint-analyzer/pkg/analysis"
	"github.com/menta2k/blueprint-analyzer/pkg/annotator"
	"github.com/menta2k/blueprint-analyzer/pkg/client"
	"github.com/menta2k/blueprint-analyzer/pkg/normalizer"
	"github.com/menta2k/blueprint-analyzer/pkg/store"
	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// ErrModelInvocation marks external model failures so callers can map them
// separately from input validation errors.
var ErrModelInvocation = errors.New("model invocation failed")

// Config holds configuration for the analysis pipeline.
type Config struct {
	// Model is the vision model name passed to the client.
	Model string
	// SendSize is the max long side sent to the model in pixels; 0 sends
	// the original.
	SendSize int
	// Store receives completed analyses; nil disables persistence.
	Store store.Store
	// Renderer draws the annotation overlay; nil uses the default fonts.
	Renderer *annotator.Renderer
}

// Pipeline runs blueprint analyses against an injected vision client.
type Pipeline struct {
	client   client.VisionClient
	model    string
	sendSize int
	renderer *annotator.Renderer
	store    store.Store
}

// New creates a pipeline around a vision client.
func New(vc client.VisionClient, cfg Config) *Pipeline {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = annotator.New()
	}
	return &Pipeline{
		client:   vc,
		model:    cfg.Model,
		sendSize: cfg.SendSize,
		renderer: renderer,
		store:    cfg.Store,
	}
}

// Analyze runs the full pipeline for one uploaded document and returns the
// result envelope. Input validation errors surface as the normalizer
// sentinels; transport failures wrap ErrModelInvocation. Parse and render
// failures never abort the request, they degrade the result instead.
func (p *Pipeline) Analyze(ctx context.Context, filename string, data []byte) (*types.Envelope, error) {
	canonical, err := normalizer.Normalize(data, filename)
	if err != nil {
		return nil, err
	}

	canonicalPNG, err := normalizer.EncodePNG(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to encode canonical image: %w", err)
	}

	req, err := analysis.BuildRequest(canonical, p.sendSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}

	reply, err := p.client.Invoke(ctx, p.model, req.Prompt, req.ImageB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	record := analysis.ParseResponse(reply)
	annotatedPNG := p.renderer.Render(canonicalPNG, record)

	stored := types.StoredAnalysis{
		ID:        uuid.NewString(),
		Filename:  filename,
		Analysis:  record,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if p.store != nil {
		// Best-effort: a storage failure must not lose the analysis.
		if err := p.store.Save(ctx, stored); err != nil {
			log.Printf("failed to persist analysis %s: %v", stored.ID, err)
		}
	}

	return &types.Envelope{
		Success:        true,
		Filename:       filename,
		Analysis:       record,
		OriginalImage:  dataURI(canonicalPNG),
		AnnotatedImage: dataURI(annotatedPNG),
	}, nil
}

// dataURI wraps PNG bytes as a base64 data URI for transport.
func dataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
