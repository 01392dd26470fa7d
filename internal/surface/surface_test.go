package surface

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.RGBA{A: 0xff}

// scribble writes a filled black rectangle directly into the bitmap.
func scribble(s *Surface, r image.Rectangle) {
	img := s.Image()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, black)
		}
	}
}

func allBackground(t *testing.T, s *Surface) {
	t.Helper()
	img := s.Image()
	require.NotNil(t, img)
	bg := s.Background()
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if got := img.RGBAAt(x, y); got != bg {
				t.Fatalf("pixel (%d,%d) = %v, want background %v", x, y, got, bg)
			}
		}
	}
}

func TestCreateFillsBackground(t *testing.T) {
	m := NewManager()
	s := m.Create(32, 16)
	assert.Equal(t, 32, s.Width())
	assert.Equal(t, 16, s.Height())
	assert.True(t, s.Available())
	allBackground(t, s)
}

func TestCreateCustomBackgroundIsOpaque(t *testing.T) {
	m := NewManager(WithBackground(color.RGBA{R: 10, G: 20, B: 30, A: 7}))
	s := m.Create(4, 4)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xff}, s.Image().RGBAAt(2, 2))
}

func TestClearIsIdempotent(t *testing.T) {
	m := NewManager()
	s := m.Create(40, 30)
	fresh := m.Create(40, 30)

	scribble(s, image.Rect(3, 3, 25, 20))
	m.Clear(s)
	assert.Equal(t, fresh.Image().Pix, s.Image().Pix)

	m.Clear(s)
	assert.Equal(t, fresh.Image().Pix, s.Image().Pix)
	assert.Equal(t, 40, s.Width())
	assert.Equal(t, 30, s.Height())
}

func TestResizeResetsContent(t *testing.T) {
	m := NewManager()
	s := m.Create(50, 50)
	scribble(s, image.Rect(0, 0, 50, 50))

	for _, dim := range [][2]int{{80, 20}, {50, 50}, {1, 1}} {
		ns := m.Resize(s, dim[0], dim[1])
		assert.Equal(t, dim[0], ns.Width())
		assert.Equal(t, dim[1], ns.Height())
		assert.Equal(t, image.Rect(0, 0, dim[0], dim[1]), ns.Image().Bounds())
		allBackground(t, ns)
		scribble(ns, ns.Bounds())
		s = ns
	}
}

func TestResizeReleasesOldSurface(t *testing.T) {
	m := NewManager()
	s := m.Create(10, 10)
	_ = m.Resize(s, 20, 20)
	assert.False(t, s.Available())
}

func TestUnavailableSurfaceIsNoOp(t *testing.T) {
	m := NewManager()

	var nilSurface *Surface
	zero := m.Create(0, 10)
	released := m.Create(5, 5)
	m.Release(released)

	for _, s := range []*Surface{nilSurface, zero, released} {
		assert.False(t, s.Available())
		assert.Nil(t, s.Image())
		assert.NotPanics(t, func() { m.Clear(s) })
		assert.Equal(t, ImageSummary{}, m.Describe(s, 100, 100))
		_, err := m.Export(s, PNG)
		assert.ErrorIs(t, err, ErrUnavailable)
	}
}

func TestExportPNGIsOpaqueAndLossless(t *testing.T) {
	m := NewManager()
	s := m.Create(24, 24)
	scribble(s, image.Rect(4, 4, 12, 12))
	// Punch fully and partially transparent holes into the live bitmap.
	s.Image().SetRGBA(20, 20, color.RGBA{})
	s.Image().SetRGBA(21, 20, color.RGBA{R: 0x40, A: 0x80})

	data, err := m.Export(s, PNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, s.Bounds(), img.Bounds())

	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			require.Equal(t, uint32(0xffff), a, "alpha at (%d,%d)", x, y)
		}
	}

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0}, [3]uint32{r, g, b}, "stroke pixel")
	r, g, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "background pixel")
	r, g, b, _ = img.At(20, 20).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "transparent hole shows background")
}

func TestExportJPEG(t *testing.T) {
	m := NewManager()
	s := m.Create(16, 8)
	data, err := m.Export(s, JPEG)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestExportPDF(t *testing.T) {
	m := NewManager()
	s := m.Create(64, 48)
	scribble(s, image.Rect(10, 10, 30, 30))

	data, err := m.Export(s, PDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportUnknownFormat(t *testing.T) {
	m := NewManager()
	_, err := m.Export(m.Create(2, 2), Format("gif"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "PNG": PNG, ".jpeg": JPEG, "jpg": JPEG, "pdf": PDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "drawing.png", PNG.Filename())
	assert.Equal(t, "drawing.pdf", PDF.Filename())
}

func TestDescribeBlankSurface(t *testing.T) {
	m := NewManager()
	sum := m.Describe(m.Create(300, 150), 100, 100)

	assert.Equal(t, 100, sum.Width)
	assert.Equal(t, 50, sum.Height)
	assert.InDelta(t, 255, sum.Luminance, 0.5)
	assert.LessOrEqual(t, sum.Tones, 1)
}

func TestDescribeHeavyStroke(t *testing.T) {
	m := NewManager()
	blank := m.Describe(m.Create(200, 200), 100, 100)

	s := m.Create(200, 200)
	scribble(s, image.Rect(40, 0, 120, 200))
	sum := m.Describe(s, 100, 100)

	assert.Less(t, sum.Luminance, blank.Luminance-50)
	assert.Greater(t, sum.Tones, blank.Tones)
}

func TestDescribeDoesNotEnlarge(t *testing.T) {
	m := NewManager()
	sum := m.Describe(m.Create(40, 20), 100, 100)
	assert.Equal(t, 40, sum.Width)
	assert.Equal(t, 20, sum.Height)

	sum = m.Describe(m.Create(40, 400), 0, 0)
	assert.Equal(t, 10, sum.Width)
	assert.Equal(t, 100, sum.Height)
}

func TestFitWithin(t *testing.T) {
	cases := []struct{ w, h, mw, mh, ww, wh int }{
		{1024, 618, 100, 100, 100, 60},
		{618, 1024, 100, 100, 60, 100},
		{50, 50, 100, 100, 50, 50},
		{1000, 1, 100, 100, 100, 1},
	}
	for _, c := range cases {
		w, h := fitWithin(c.w, c.h, c.mw, c.mh)
		assert.Equal(t, [2]int{c.ww, c.wh}, [2]int{w, h}, "%dx%d", c.w, c.h)
	}
}
