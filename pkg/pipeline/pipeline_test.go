package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/menta2k/blueprint-analyzer/pkg/analysis"
	"github.com/menta2k/blueprint-analyzer/pkg/normalizer"
	"github.com/menta2k/blueprint-analyzer/pkg/store"
	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// stubClient returns a canned reply and records whether it was invoked
type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Invoke(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// uploadFixture returns PNG bytes for a blank RGB canvas
func uploadFixture(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

const cannedReply = "```json\n" + `{"scale":"1/4\"=1'","scale_confidence":"high","dimensions":[{"label":"north wall","value":"24'","type":"detected","confidence":"high"}],"notes":"clean"}` + "\n```"

func TestAnalyzeSuccess(t *testing.T) {
	stub := &stubClient{reply: cannedReply}
	mem := store.NewMemory()
	p := New(stub, Config{Model: "test-model", Store: mem})

	env, err := p.Analyze(context.Background(), "plan.png", uploadFixture(t, 800, 600))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !env.Success {
		t.Error("Expected Success=true")
	}
	if env.Filename != "plan.png" {
		t.Errorf("Unexpected filename: %q", env.Filename)
	}
	if env.Analysis.Scale != `1/4"=1'` {
		t.Errorf("Unexpected scale: %q", env.Analysis.Scale)
	}
	if env.Analysis.RawResponse != "" {
		t.Errorf("RawResponse should be empty on a clean parse, got %q", env.Analysis.RawResponse)
	}
	if stub.calls != 1 {
		t.Errorf("Expected exactly one model call, got %d", stub.calls)
	}

	for name, uri := range map[string]string{"original": env.OriginalImage, "annotated": env.AnnotatedImage} {
		if !strings.HasPrefix(uri, "data:image/png;base64,") {
			t.Fatalf("%s image is not a PNG data URI", name)
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
		if err != nil {
			t.Fatalf("%s image payload is not base64: %v", name, err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("%s image is not decodable PNG: %v", name, err)
		}
		if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
			t.Errorf("%s image changed size: %v", name, img.Bounds())
		}
	}
}

func TestAnalyzePersistsResult(t *testing.T) {
	stub := &stubClient{reply: cannedReply}
	mem := store.NewMemory()
	p := New(stub, Config{Model: "test-model", Store: mem})

	if _, err := p.Analyze(context.Background(), "plan.png", uploadFixture(t, 100, 100)); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	saved, err := mem.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("Expected 1 stored analysis, got %d", len(saved))
	}
	if saved[0].ID == "" {
		t.Error("Stored analysis has no ID")
	}
	if saved[0].Filename != "plan.png" {
		t.Errorf("Unexpected stored filename: %q", saved[0].Filename)
	}
	if saved[0].CreatedAt == "" || !strings.HasSuffix(saved[0].CreatedAt, "Z") {
		t.Errorf("Expected UTC ISO-8601 timestamp, got %q", saved[0].CreatedAt)
	}
}

func TestAnalyzeDegradedParseStillSucceeds(t *testing.T) {
	stub := &stubClient{reply: "not json at all"}
	p := New(stub, Config{Model: "test-model"})

	env, err := p.Analyze(context.Background(), "plan.png", uploadFixture(t, 200, 150))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if env.Analysis.Scale != analysis.FallbackScale {
		t.Errorf("Expected fallback scale, got %q", env.Analysis.Scale)
	}
	if len(env.Analysis.Dimensions) != 0 {
		t.Errorf("Expected no dimensions, got %d", len(env.Analysis.Dimensions))
	}
	if env.Analysis.RawResponse != "not json at all" {
		t.Errorf("Expected raw reply preserved, got %q", env.Analysis.RawResponse)
	}
	if !env.Success {
		t.Error("Degraded parse must still produce a successful envelope")
	}
}

func TestAnalyzeModelFailure(t *testing.T) {
	stub := &stubClient{err: fmt.Errorf("connection refused")}
	p := New(stub, Config{Model: "test-model"})

	_, err := p.Analyze(context.Background(), "plan.png", uploadFixture(t, 100, 100))
	if !errors.Is(err, ErrModelInvocation) {
		t.Errorf("Expected ErrModelInvocation, got %v", err)
	}
}

func TestAnalyzeInvalidUploadSkipsModel(t *testing.T) {
	stub := &stubClient{reply: cannedReply}
	p := New(stub, Config{Model: "test-model"})

	_, err := p.Analyze(context.Background(), "notes.txt", []byte("plain text, not an image"))
	if !errors.Is(err, normalizer.ErrUnreadableImage) {
		t.Errorf("Expected ErrUnreadableImage, got %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("Model must not be invoked for invalid uploads, got %d calls", stub.calls)
	}

	_, err = p.Analyze(context.Background(), "broken.pdf", []byte("not a pdf"))
	if !errors.Is(err, normalizer.ErrUnsupportedDocument) {
		t.Errorf("Expected ErrUnsupportedDocument, got %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("Model must not be invoked for invalid uploads, got %d calls", stub.calls)
	}
}

func TestAnalyzeStoreFailureDoesNotFailRequest(t *testing.T) {
	stub := &stubClient{reply: cannedReply}
	p := New(stub, Config{Model: "test-model", Store: failingStore{}})

	env, err := p.Analyze(context.Background(), "plan.png", uploadFixture(t, 100, 100))
	if err != nil {
		t.Fatalf("Persistence is best-effort, Analyze must not fail: %v", err)
	}
	if !env.Success {
		t.Error("Expected Success=true despite store failure")
	}
}

// failingStore rejects every write to exercise the best-effort policy
type failingStore struct{}

func (failingStore) Save(context.Context, types.StoredAnalysis) error {
	return fmt.Errorf("disk full")
}

func (failingStore) List(context.Context, int) ([]types.StoredAnalysis, error) {
	return nil, fmt.Errorf("disk full")
}

func (failingStore) SaveStatus(context.Context, types.StatusCheck) error {
	return fmt.Errorf("disk full")
}

func (failingStore) ListStatuses(context.Context, int) ([]types.StatusCheck, error) {
	return nil, fmt.Errorf("disk full")
}
