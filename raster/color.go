package raster

import (
	"fmt"
	"image/color"
)

// Color is an 8-bit per channel, non-premultiplied color.
type Color struct {
	R, G, B, A uint8
}

// Background is the color Clear fills a backbuffer with.
var Background = Color{0x20, 0x20, 0x20, 0xFF}

// Pack returns c in the backbuffer's pixel layout: R in the low byte, then
// G, B and A.
func (c Color) Pack() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// Unpack is the inverse of Color.Pack.
func Unpack(p uint32) Color {
	return Color{
		R: uint8(p),
		G: uint8(p >> 8),
		B: uint8(p >> 16),
		A: uint8(p >> 24),
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha set to percent of full opacity.
func (c Color) WithAlpha(percent int) Color {
	c.A = uint8(percent * 255 / 100)
	return c
}

// ColorModel converts any color.Color to a Color.
var ColorModel = color.ModelFunc(colorConvert)

func colorConvert(c color.Color) color.Color {
	if rc, ok := c.(Color); ok {
		return rc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Order is the byte order of the color channels inside a stored pixel.
type Order uint8

const (
	// OrderRGB stores red first.
	OrderRGB Order = iota
	// OrderBGR stores blue first, as BMP rows do on disk.
	OrderBGR
)

// ReadPixel returns the color held in px. Pixels with fewer than four
// channels are opaque; pixels with fewer than three are read as gray.
func ReadPixel(px []uint8, channels int, order Order) Color {
	switch {
	case channels >= 3:
		c := Color{R: px[0], G: px[1], B: px[2], A: 0xFF}
		if order == OrderBGR {
			c.R, c.B = c.B, c.R
		}
		if channels >= 4 {
			c.A = px[3]
		}
		return c
	case channels > 0:
		return Color{R: px[0], G: px[0], B: px[0], A: 0xFF}
	}
	return Color{A: 0xFF}
}

// WritePixel stores c into px. The alpha byte is only written for pixels
// with four or more channels; pixels with fewer than three are untouched.
func WritePixel(px []uint8, channels int, order Order, c Color) {
	if channels < 3 {
		return
	}
	if order == OrderBGR {
		c.R, c.B = c.B, c.R
	}
	px[0], px[1], px[2] = c.R, c.G, c.B
	if channels >= 4 {
		px[3] = c.A
	}
}
