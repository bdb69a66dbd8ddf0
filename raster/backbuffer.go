package raster

import (
	"image"
	"image/color"
	"log/slog"

	"picasso/internal/logging"
)

// Presenter is the windowing side of the pipeline: it takes a finished frame
// and shows it. pitch is measured in pixels.
type Presenter interface {
	Present(pix []uint32, width, height, pitch int) error
}

// Option configures a Backbuffer.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger a Backbuffer reports misuse to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Backbuffer is an off-screen surface of packed pixels (see Color.Pack).
type Backbuffer struct {
	Width  int
	Height int
	// Pitch is the number of pixels between vertically adjacent pixels.
	Pitch int
	Pix   []uint32

	logger *slog.Logger
}

var _ image.Image = (*Backbuffer)(nil)

// NewBackbuffer allocates a zeroed width x height backbuffer.
func NewBackbuffer(width, height int, opts ...Option) (*Backbuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidImage
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backbuffer{
		Width:  width,
		Height: height,
		Pitch:  width,
		Pix:    make([]uint32, width*height),
		logger: logging.Or(o.logger),
	}
	b.logger.Debug("created backbuffer", "width", width, "height", height)
	return b, nil
}

// Release drops the pixel buffer. It is safe to call on a nil backbuffer.
func (b *Backbuffer) Release() {
	if b == nil {
		return
	}
	b.Pix = nil
}

// Clear fills every pixel with Background.
func (b *Backbuffer) Clear() {
	if b == nil {
		return
	}
	if b.Pix == nil {
		b.logger.Warn("attempted to clear a released backbuffer")
		return
	}

	p := Background.Pack()
	for i := range b.Pix {
		b.Pix[i] = p
	}
}

// Present hands the current frame to p.
func (b *Backbuffer) Present(p Presenter) error {
	return p.Present(b.Pix, b.Width, b.Height, b.Pitch)
}

// Image snapshots the backbuffer into a new 4-channel Image.
func (b *Backbuffer) Image() *Image {
	if b == nil || b.Pix == nil {
		return nil
	}

	img, err := NewImage(b.Width, b.Height, 4)
	if err != nil {
		return nil
	}
	for px := range img.Pixels() {
		WritePixel(px.Ch, 4, OrderRGB, Unpack(b.Pix[px.Y*b.Pitch+px.X]))
	}
	return img
}

// ColorModel implements image.Image.
func (b *Backbuffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (b *Backbuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Backbuffer) At(x, y int) color.Color {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return color.NRGBA{}
	}
	c := Unpack(b.Pix[y*b.Pitch+x])
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (b *Backbuffer) blendAt(x, y int, src uint32) {
	p := &b.Pix[y*b.Pitch+x]
	*p = Blend(*p, src)
}

func (b *Backbuffer) usable() bool {
	return b != nil && b.Pix != nil
}
