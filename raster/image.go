// Package raster implements the picasso pixel containers and the software
// compositor that draws into them.
//
// Image holds decoded pixels as 3 (RGB) or 4 (RGBA) bytes per pixel.
// Backbuffer holds packed 32-bit pixels ready for presentation. Drawing
// functions never fail: nil receivers, empty rectangles and off-screen
// shapes are silently ignored.
package raster

import (
	"errors"
	"image"
	"image/color"
	"iter"

	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned when an image or backbuffer is requested with
// non-positive dimensions or an unsupported channel count.
var ErrInvalidImage = errors.New("raster: invalid dimensions or channel count")

// Image is a decoded pixel buffer.
type Image struct {
	Width    int
	Height   int
	Channels int // 3 = RGB, 4 = RGBA
	// Stride is the distance in bytes between vertically adjacent pixels.
	// Rows are never padded: Stride == Width*Channels.
	Stride int
	// Pix holds the pixels. The pixel at (x, y) starts at
	// Pix[y*Stride + x*Channels].
	Pix []uint8
}

var _ image.Image = (*Image)(nil)

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 || (channels != 3 && channels != 4) {
		return nil, ErrInvalidImage
	}

	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   width * channels,
		Pix:      make([]uint8, width*channels*height),
	}, nil
}

// FromImage converts any image.Image into a 4-channel Image.
func FromImage(m image.Image) (*Image, error) {
	sr := m.Bounds()
	if sr.Empty() {
		return nil, ErrInvalidImage
	}

	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dst := image.NewNRGBA(dr)
	draw.Draw(dst, dr, m, sr.Min, draw.Src)

	return &Image{
		Width:    dr.Dx(),
		Height:   dr.Dy(),
		Channels: 4,
		Stride:   dst.Stride,
		Pix:      dst.Pix,
	}, nil
}

// RGBA returns img as a 4-channel image. A 4-channel img is returned as is;
// a 3-channel one is copied with every alpha byte set to 0xFF.
func (img *Image) RGBA() (*Image, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	if img.Channels == 4 {
		return img, nil
	}

	dst, err := NewImage(img.Width, img.Height, 4)
	if err != nil {
		return nil, err
	}
	img.CopyTo(dst)
	for px := range dst.Pixels() {
		px.Ch[3] = 0xFF
	}
	return dst, nil
}

// Release drops the pixel buffer. It is safe to call on a nil image.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.Pix = nil
	img.Width, img.Height, img.Stride = 0, 0, 0
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (img *Image) PixOffset(x, y int) int {
	return y*img.Stride + x*img.Channels
}

// Pixel is one step of Image.Pixels.
type Pixel struct {
	X, Y int
	// Ch aliases the pixel's channel bytes inside the image buffer.
	Ch []uint8
}

// Pixels iterates over every pixel in row-major order. The sequence may be
// ranged over any number of times; writes through Pixel.Ch land in the image.
func (img *Image) Pixels() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		if img == nil {
			return
		}
		for y := 0; y < img.Height; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < img.Width; x++ {
				i := x * img.Channels
				if !yield(Pixel{X: x, Y: y, Ch: row[i : i+img.Channels : i+img.Channels]}) {
					return
				}
			}
		}
	}
}

// CopyTo resamples img into dst using nearest-neighbor index mapping. dst
// keeps its own dimensions. Channels missing from img are left as they are
// in dst.
func (img *Image) CopyTo(dst *Image) {
	if img == nil || dst == nil || img.Width <= 0 || img.Height <= 0 {
		return
	}

	n := min(img.Channels, dst.Channels)
	for y := 0; y < dst.Height; y++ {
		ny := y * img.Height / dst.Height
		for x := 0; x < dst.Width; x++ {
			nx := x * img.Width / dst.Width

			d := dst.PixOffset(x, y)
			s := img.PixOffset(nx, ny)
			copy(dst.Pix[d:d+n], img.Pix[s:s+n])
		}
	}
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return color.NRGBA{}
	}
	c := img.ColorAt(x, y, OrderRGB)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ColorAt reads the pixel at (x, y), which must be inside the image.
func (img *Image) ColorAt(x, y int, order Order) Color {
	i := img.PixOffset(x, y)
	return ReadPixel(img.Pix[i:i+img.Channels], img.Channels, order)
}
