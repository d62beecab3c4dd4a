// Package annotator draws dimension callouts onto a canonical blueprint
// image: a scale banner at the top-left, one color-coded callout per
// dimension entry, and a summary footer anchored to the bottom edge.
//
// Rendering never fails the pipeline. Font loading falls back to the
// embedded Go fonts, and any other drawing error degrades to the
// unannotated canonical image.
package annotator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// Layout constants for the annotation overlay, in image coordinates.
const (
	calloutStartY = 70 // first callout's top edge
	calloutGap    = 15 // vertical gap between callouts
	maxCallouts   = 15 // hard rendering cap, independent of storage
	footerHeight  = 60 // summary band height at the bottom edge
)

var (
	bannerFill    = color.RGBA{0, 120, 215, 255}   // accent blue
	detectedFill  = color.RGBA{34, 197, 94, 255}   // green
	estimatedFill = color.RGBA{251, 191, 36, 255}  // amber
	footerFill    = color.RGBA{71, 85, 105, 255}   // slate
	textWhite     = color.RGBA{255, 255, 255, 255}
	textBlack     = color.RGBA{0, 0, 0, 255}
)

// Config names the preferred on-disk fonts. Both are optional: a missing or
// malformed file falls back to the embedded Go fonts.
type Config struct {
	BoldFontPath    string `json:"bold_font_path"`
	RegularFontPath string `json:"regular_font_path"`
}

// Renderer draws dimension annotations onto blueprint images. Font faces
// buffer glyph state internally, so drawing is serialized; a single Renderer
// is safe for concurrent use.
type Renderer struct {
	mu        sync.Mutex
	titleFace font.Face
	labelFace font.Face
}

// New creates a Renderer with the default font configuration.
func New() *Renderer {
	return NewWithConfig(Config{
		BoldFontPath:    "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		RegularFontPath: "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	})
}

// NewWithConfig creates a Renderer with custom font paths.
func NewWithConfig(cfg Config) *Renderer {
	return &Renderer{
		titleFace: loadFace(cfg.BoldFontPath, gobold.TTF, 24),
		labelFace: loadFace(cfg.RegularFontPath, goregular.TTF, 18),
	}
}

// Render overlays the analysis record onto the canonical PNG bytes and
// returns annotated PNG bytes. Any internal failure returns the input
// unmodified, so the result is always decodable and never empty.
func (r *Renderer) Render(canonicalPNG []byte, rec types.AnalysisRecord) []byte {
	annotated, err := r.render(canonicalPNG, rec)
	if err != nil {
		log.Printf("annotation failed, returning unannotated image: %v", err)
		return canonicalPNG
	}
	return annotated
}

func (r *Renderer) render(canonicalPNG []byte, rec types.AnalysisRecord) (out []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("drawing panic: %v", p)
		}
	}()

	src, _, err := image.Decode(bytes.NewReader(canonicalPNG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode canonical image: %v", err)
	}
	img := clone(src)

	// Scale banner at the top-left
	fillRect(img, image.Rect(10, 10, 400, 50), bannerFill)
	scale := rec.Scale
	if scale == "" {
		scale = "Unknown"
	}
	drawText(img, 20, 20, "Scale: "+scale, textWhite, r.titleFace)

	// Dimension callouts, list order, capped at maxCallouts
	entries := rec.Dimensions
	if len(entries) > maxCallouts {
		entries = entries[:maxCallouts]
	}
	y := calloutStartY
	for i, dim := range entries {
		label := dim.Label
		if label == "" {
			label = fmt.Sprintf("Dimension %d", i+1)
		}
		value := dim.Value
		if value == "" {
			value = "N/A"
		}

		// Color code by provenance
		fill := estimatedFill
		if dim.Type == "detected" {
			fill = detectedFill
		}

		text := label + ": " + value
		tw, th := measure(r.labelFace, text)

		fillRect(img, image.Rect(10, y, tw+40, y+th+10), fill)
		drawText(img, 20, y+5, text, textBlack, r.labelFace)

		y += th + calloutGap
	}

	// Summary footer over the full dimensions list, not just the rendered ones
	total := len(rec.Dimensions)
	detected, estimated := rec.CountByType()
	footerY := img.Bounds().Dy() - footerHeight
	fillRect(img, image.Rect(10, footerY, 500, img.Bounds().Dy()-10), footerFill)
	summary := fmt.Sprintf("Total: %d dimensions | Detected: %d | Estimated: %d", total, detected, estimated)
	drawText(img, 20, footerY+10, summary, textWhite, r.titleFace)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %v", err)
	}
	return buf.Bytes(), nil
}

// loadFace parses the font file at path, substituting the embedded fallback
// TTF when the file is missing or malformed. A missing optional asset never
// aborts rendering.
func loadFace(path string, fallback []byte, size float64) font.Face {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if face, err := parseFace(data, size); err == nil {
				return face
			}
		}
	}

	face, err := parseFace(fallback, size)
	if err != nil {
		// The embedded Go fonts always parse; basicfont is the last resort.
		return basicfont.Face7x13
	}
	return face
}

func parseFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// measure returns the rendered width and line height of text in pixels.
func measure(face font.Face, text string) (w, h int) {
	m := face.Metrics()
	return font.MeasureString(face, text).Ceil(), (m.Ascent + m.Descent).Ceil()
}

// drawText draws text with its top-left corner at (x, y).
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.Dot.Y += face.Metrics().Ascent
	d.DrawString(text)
}

// fillRect fills a rectangle clipped to the image bounds.
func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
}

// clone copies an image into a fresh RGBA buffer anchored at the origin.
func clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
