package ppm

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"picasso/imgerr"
	"picasso/raster"
)

// EncodePacked writes width*height packed pixels (see raster.Color.Pack) to w
// as a P6 pixmap. Alpha is dropped.
func EncodePacked(w io.Writer, width, height int, pix []uint32, opts ...Option) error {
	const op = "ppm.Encode"
	o := buildOptions(opts)

	if width <= 0 || height <= 0 {
		return imgerr.New(op, imgerr.KindCorrupt, "invalid dimensions %dx%d", width, height)
	}
	total := width * height
	if len(pix) < total {
		return imgerr.New(op, imgerr.KindCorrupt, "pixel buffer holds %d pixels, need %d", len(pix), total)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, width, height, MaxVal); err != nil {
		return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not write header: %w", err))
	}
	o.logger.Debug("wrote ppm header", "width", width, "height", height)

	var rgb [3]byte
	for i, p := range pix[:total] {
		rgb[0], rgb[1], rgb[2] = byte(p), byte(p>>8), byte(p>>16)
		if _, err := bw.Write(rgb[:]); err != nil {
			return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not write pixel %d: %w", i, err))
		}
	}
	if err := bw.Flush(); err != nil {
		return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not flush: %w", err))
	}
	return nil
}

// Encode writes any image to w as a P6 pixmap. Colors are converted through
// raster.ColorModel, so alpha is dropped without premultiplying.
func Encode(w io.Writer, m image.Image, opts ...Option) error {
	if bb, ok := m.(*raster.Backbuffer); ok && bb.Pitch == bb.Width {
		return EncodePacked(w, bb.Width, bb.Height, bb.Pix, opts...)
	}

	r := m.Bounds()
	pix := make([]uint32, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pix = append(pix, raster.ColorModel.Convert(m.At(x, y)).(raster.Color).Pack())
		}
	}
	return EncodePacked(w, r.Dx(), r.Dy(), pix, opts...)
}
