package convert

import (
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/image/draw"

	"picasso/palette"
)

// NamedPalette selects picasso's named colors instead of a palette file.
const NamedPalette = "named"

func loadPalette(name string) (color.Palette, error) {
	var pal palette.Palette
	if name == NamedPalette {
		for _, n := range palette.Names() {
			c, _ := palette.Lookup(n)
			pal = append(pal, c)
		}
	} else {
		var err error
		if pal, err = palette.LoadFile(name); err != nil {
			return nil, err
		}
	}

	res := make(color.Palette, len(pal))
	for i, c := range pal {
		res[i] = c
	}
	return res, nil
}

func repalette(logger *slog.Logger, img image.Image, pal color.Palette, dither bool) image.Image {
	logger.Info("applying palette", "colors", len(pal), "dither", dither)
	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal)

	if dither {
		draw.FloydSteinberg.Draw(dest, dr, img, sr.Min)
	} else {
		draw.Draw(dest, dr, img, sr.Min, draw.Src)
	}
	return dest
}
