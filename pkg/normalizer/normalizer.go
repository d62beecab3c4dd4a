// Package normalizer converts uploaded documents into the single canonical
// RGB raster that every downstream stage operates on. PDFs contribute their
// first page rendered at a fixed resolution; raster uploads pass through with
// their color mode forced to RGB.
package normalizer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"

	"github.com/chai2010/webp"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/menta2k/blueprint-analyzer/internal/utils"
)

var (
	// ErrUnsupportedDocument is returned when a PDF upload yields no decodable pages.
	ErrUnsupportedDocument = errors.New("unsupported document: could not convert PDF to image")
	// ErrUnreadableImage is returned when upload bytes are not a decodable raster format.
	ErrUnreadableImage = errors.New("unreadable image: not a supported raster format")
)

// pdfRenderDPI is the fixed resolution used when rasterizing a PDF page.
const pdfRenderDPI = 300

// Normalize converts uploaded bytes into a canonical RGB raster. A filename
// with a .pdf extension (case-insensitive) triggers PDF rendering of the
// first page; anything else is decoded as a raster image. The output always
// has the source pixel dimensions with alpha discarded, not composited.
func Normalize(data []byte, filename string) (*image.RGBA, error) {
	if utils.IsPDFFile(filename) {
		return renderFirstPage(data)
	}

	img, err := decodeRaster(data)
	if err != nil {
		return nil, err
	}
	return toRGB(img), nil
}

// EncodePNG returns the PNG encoding of an image.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// renderFirstPage rasterizes page one of a PDF at the fixed DPI.
func renderFirstPage(data []byte) (*image.RGBA, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDocument, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrUnsupportedDocument
	}

	page, err := doc.ImageDPI(0, pdfRenderDPI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDocument, err)
	}
	return toRGB(page), nil
}

// decodeRaster decodes image bytes with the registered decoders, falling back
// to an explicit WebP decode for files the standard path rejects.
func decodeRaster(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, ErrUnreadableImage
}

// toRGB forces an image into RGB mode. Palette and greyscale sources are
// expanded; NRGBA alpha is dropped channel-for-channel rather than
// premultiplied into the colors.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[di+0] = n.Pix[si+0]
				dst.Pix[di+1] = n.Pix[si+1]
				dst.Pix[di+2] = n.Pix[si+2]
				dst.Pix[di+3] = 0xff
				si += 4
				di += 4
			}
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
