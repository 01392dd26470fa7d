package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	PDF  Format = "pdf"
)

// ParseFormat accepts png, jpg, jpeg and pdf, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename returns the download name for the format, e.g. "drawing.png".
func (f Format) Filename() string {
	return "drawing." + string(f)
}

const jpegQuality = 92

// Flatten composites the surface onto an opaque background canvas and
// returns the result. The live bitmap is not assumed to be opaque.
func (m *Manager) Flatten(s *Surface) (*image.RGBA, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	b := s.img.Bounds()
	flat := image.NewRGBA(b)
	xdraw.Draw(flat, b, image.NewUniform(s.background), image.Point{}, xdraw.Src)
	xdraw.Draw(flat, b, s.img, b.Min, xdraw.Over)
	return flat, nil
}

// Export encodes the flattened surface in the given format.
func (m *Manager) Export(s *Surface, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf, s, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the flattened surface to w in the given format.
func (m *Manager) Encode(w io.Writer, s *Surface, f Format) error {
	flat, err := m.Flatten(s)
	if err != nil {
		return err
	}
	switch f {
	case PNG, "":
		err = png.Encode(w, flat)
	case JPEG:
		err = jpeg.Encode(w, flat, &jpeg.Options{Quality: jpegQuality})
	case PDF:
		err = encodePDF(w, flat)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	m.logger.Debug("surface exported", "format", string(f), "width", s.width, "height", s.height)
	return nil
}

// encodePDF places the image on a single page of exactly its own size,
// one point per pixel.
func encodePDF(w io.Writer, img *image.RGBA) error {
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return err
	}

	wd, ht := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("drawing", opts, &raw)
	p.ImageOptions("drawing", 0, 0, wd, ht, false, opts, 0, "")
	if err := p.Error(); err != nil {
		return err
	}
	return p.Output(w)
}
