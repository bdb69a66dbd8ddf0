package convert

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"picasso/raster"
)

type resizeOpts struct {
	width, height int
	crop          bool
	nearest       bool
	fill          color.Color
}

// geometry is where a resize reads from and writes to.
type geometry struct {
	src       image.Rectangle // region of the source that is scaled
	canvas    image.Rectangle // bounds of the output image
	dst       image.Rectangle // region of canvas receiving the scaled pixels
	letterbox bool            // canvas outside dst is painted with the fill color
}

// layout fits a srcW x srcH image into the requested box. Zero box sides keep
// the source size. Crop trims the source to the box aspect ratio. Otherwise
// the image is fitted inside the box, shrinking the canvas to match unless a
// fill color asks for bars instead.
func layout(bounds image.Rectangle, o resizeOpts) geometry {
	sw, sh := float64(bounds.Dx()), float64(bounds.Dy())
	bw, bh := sw, sh
	if o.width > 0 {
		bw = float64(o.width)
	}
	if o.height > 0 {
		bh = float64(o.height)
	}

	g := geometry{src: bounds, canvas: image.Rect(0, 0, int(bw), int(bh))}
	g.dst = g.canvas

	srcRatio, boxRatio := sw/sh, bw/bh
	half := func(v float64) int { return int(math.Round(v / 2)) }

	switch {
	case srcRatio == boxRatio:
	case o.crop && srcRatio < boxRatio:
		d := half(sh - sw/boxRatio)
		g.src.Min.Y += d
		g.src.Max.Y -= d
	case o.crop:
		d := half(sw - sh*boxRatio)
		g.src.Min.X += d
		g.src.Max.X -= d
	case srcRatio < boxRatio:
		w := bh * srcRatio
		if o.fill == nil {
			g.canvas.Max.X = int(math.Round(w))
			g.dst = g.canvas
		} else if bw > w {
			d := half(bw - w)
			g.dst.Min.X += d
			g.dst.Max.X -= d
			g.letterbox = true
		}
	default:
		h := bw / srcRatio
		if o.fill == nil {
			g.canvas.Max.Y = int(math.Round(h))
			g.dst = g.canvas
		} else if bh > h {
			d := half(bh - h)
			g.dst.Min.Y += d
			g.dst.Max.Y -= d
			g.letterbox = true
		}
	}
	return g
}

func resize(logger *slog.Logger, img image.Image, o resizeOpts) (image.Image, error) {
	bounds := img.Bounds()
	g := layout(bounds, o)
	if g.canvas.Size() == bounds.Size() && g.src == bounds && !g.letterbox {
		return img, nil
	}

	logger.Info("resizing", "width", g.dst.Dx(), "height", g.dst.Dy(), "nearest", o.nearest, "letterbox", g.letterbox)

	if o.nearest && !g.letterbox && g.src == bounds && g.dst == g.canvas {
		return copyNearest(img, g.canvas.Dx(), g.canvas.Dy())
	}

	var scaler draw.Scaler = draw.CatmullRom
	if o.nearest {
		scaler = draw.NearestNeighbor
	}

	out := image.NewRGBA64(g.canvas)
	if g.letterbox {
		draw.Draw(out, g.canvas, image.NewUniform(o.fill), image.Point{}, draw.Src)
	}
	scaler.Scale(out, g.dst, img, g.src, draw.Over, nil)
	return out, nil
}

// copyNearest scales the whole of img with the raster nearest neighbor copy.
func copyNearest(img image.Image, width, height int) (image.Image, error) {
	src, ok := img.(*raster.Image)
	if !ok {
		var err error
		if src, err = raster.FromImage(img); err != nil {
			return nil, err
		}
	}

	dst, err := raster.NewImage(width, height, src.Channels)
	if err != nil {
		return nil, err
	}
	src.CopyTo(dst)
	return dst, nil
}
