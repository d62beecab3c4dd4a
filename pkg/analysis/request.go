// Package analysis owns the vision-model contract for blueprint measurement:
// the fixed instruction set sent with every image and the tolerant parser for
// the model's reply. Prompt and parser are a locked pair; changing the
// requested schema requires changing the parser in lockstep.
package analysis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// MeasurementPrompt is the instruction set sent to the vision model with
// every blueprint image.
const MeasurementPrompt = `Analyze this construction blueprint image and provide detailed measurement information:

1. Identify ALL visible dimensions and measurements on the blueprint
2. Detect the scale (e.g., 1/4" = 1', 1:100, etc.) - look for scale notation or infer from existing measurements
3. For any unmarked distances, estimate dimensions based on the detected scale
4. List each dimension with:
   - Location description (e.g., "north wall length", "room width", etc.)
   - Measured/detected value
   - Whether it's an existing measurement or estimated
   - Confidence level (high/medium/low)

Provide your response in JSON format:
{
  "scale": "detected or assumed scale",
  "scale_confidence": "high/medium/low",
  "dimensions": [
    {
      "label": "description of what is measured",
      "value": "measurement with units",
      "type": "detected" or "estimated",
      "confidence": "high/medium/low",
      "notes": "any relevant notes"
    }
  ],
  "notes": "general observations about the blueprint"
}`

// Request is the payload handed to the vision-model collaborator. Building
// one performs no network call.
type Request struct {
	Prompt   string
	ImageB64 string
}

// BuildRequest encodes the canonical image for transport and pairs it with
// the fixed instruction set. maxDim > 0 downscales the long side before
// encoding to keep the payload within model limits; 0 sends the original.
func BuildRequest(img image.Image, maxDim int) (Request, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Request{}, fmt.Errorf("failed to encode image for model: %w", err)
	}

	return Request{
		Prompt:   MeasurementPrompt,
		ImageB64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
