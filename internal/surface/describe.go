package surface

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Default limits for Describe.
const (
	DescribeMaxWidth  = 100
	DescribeMaxHeight = 100
)

// ImageSummary is a small, lossy digest of a surface. It is a value: taking
// one does not keep a reference to the pixels.
type ImageSummary struct {
	// Width and Height of the downsampled image the summary was computed on.
	Width, Height int

	// Luminance is the mean of 0.299R+0.587G+0.114B over all pixels, in
	// [0, 255].
	Luminance float64

	// Tones is the number of distinct gray values, rounded to 8 bits.
	Tones int
}

// Describe downsamples the surface to fit within maxW by maxH (keeping the
// aspect ratio, never enlarging) and summarises its gray levels.
// Unavailable surfaces yield the zero summary. Non-positive limits fall
// back to the defaults.
func (m *Manager) Describe(s *Surface, maxW, maxH int) ImageSummary {
	flat, err := m.Flatten(s)
	if err != nil {
		return ImageSummary{}
	}
	if maxW <= 0 {
		maxW = DescribeMaxWidth
	}
	if maxH <= 0 {
		maxH = DescribeMaxHeight
	}

	w, h := fitWithin(s.width, s.height, maxW, maxH)
	small := flat
	if w != s.width || h != s.height {
		small = image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(small, small.Bounds(), flat, flat.Bounds(), xdraw.Src, nil)
	}
	return summarize(small)
}

// fitWithin scales w by h down proportionally until it fits maxW by maxH.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	fw, fh := float64(w), float64(h)
	if fw > float64(maxW) {
		fh *= float64(maxW) / fw
		fw = float64(maxW)
	}
	if fh > float64(maxH) {
		fw *= float64(maxH) / fh
		fh = float64(maxH)
	}
	return max(1, int(math.Round(fw))), max(1, int(math.Round(fh)))
}

func summarize(img *image.RGBA) ImageSummary {
	b := img.Bounds()
	var total float64
	var seen [256]bool
	tones := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			px := row[4*x : 4*x+3]
			g := 0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])
			total += g
			k := uint8(math.Round(g))
			if !seen[k] {
				seen[k] = true
				tones++
			}
		}
	}
	n := b.Dx() * b.Dy()
	if n == 0 {
		return ImageSummary{}
	}
	return ImageSummary{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Luminance: total / float64(n),
		Tones:     tones,
	}
}
