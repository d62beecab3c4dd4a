package analysis

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"
)

func TestBuildRequestEncodesImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))

	req, err := BuildRequest(img, 0)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.Prompt != MeasurementPrompt {
		t.Error("Request should carry the fixed instruction set")
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		t.Fatalf("ImageB64 is not valid base64: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Encoded payload is not decodable PNG: %v", err)
	}

	b := decoded.Bounds()
	if b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("Expected 120x80 payload, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestBuildRequestDownscalesLongSide(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 500))

	req, err := BuildRequest(img, 200)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	data, _ := base64.StdEncoding.DecodeString(req.ImageB64)
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Encoded payload is not decodable PNG: %v", err)
	}

	b := decoded.Bounds()
	if b.Dx() != 200 {
		t.Errorf("Expected long side 200, got %d", b.Dx())
	}
	if b.Dy() != 100 {
		t.Errorf("Expected aspect-preserving height 100, got %d", b.Dy())
	}
}

func TestBuildRequestKeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 60))

	req, err := BuildRequest(img, 1536)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	data, _ := base64.StdEncoding.DecodeString(req.ImageB64)
	decoded, _ := png.Decode(bytes.NewReader(data))
	b := decoded.Bounds()
	if b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("Small image should pass through unscaled, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestMeasurementPromptSchemaContract(t *testing.T) {
	// The parser depends on these keys; they must stay in the prompt
	for _, key := range []string{`"scale"`, `"scale_confidence"`, `"dimensions"`, `"label"`, `"value"`, `"type"`, `"confidence"`, `"notes"`} {
		if !strings.Contains(MeasurementPrompt, key) {
			t.Errorf("Prompt no longer requests key %s", key)
		}
	}
}
