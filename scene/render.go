package scene

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	xbmp "golang.org/x/image/bmp"

	"picasso/bmp"
	"picasso/byteio"
	"picasso/internal/logging"
	"picasso/palette"
	"picasso/ppm"
	"picasso/raster"
)

// Render allocates a backbuffer the size of the scene and draws the scene
// onto it.
func (s *Scene) Render(opts ...Option) (*raster.Backbuffer, error) {
	o := buildOptions(opts)

	b, err := raster.NewBackbuffer(s.Width, s.Height, raster.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("could not create %dx%d backbuffer: %w", s.Width, s.Height, err)
	}
	if err := s.draw(b, o); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// Draw clears b to the scene background and draws every shape in order.
func (s *Scene) Draw(b *raster.Backbuffer, opts ...Option) error {
	return s.draw(b, buildOptions(opts))
}

type renderer struct {
	*Scene
	o      options
	pal    palette.Palette
	images map[string]*raster.Image
}

func (s *Scene) draw(b *raster.Backbuffer, o options) error {
	r := &renderer{Scene: s, o: o, images: map[string]*raster.Image{}}
	defer func() {
		for _, img := range r.images {
			img.Release()
		}
	}()

	if s.Palette != "" {
		pal, err := palette.LoadFile(s.path(s.Palette))
		if err != nil {
			return err
		}
		o.logger.Debug("loaded palette", "file", s.Palette, "colors", len(pal))
		r.pal = pal
	}

	if err := r.clear(b, s.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}

	for i, sh := range s.Shapes {
		logging.Trace(o.logger, "drawing shape", "index", i, "kind", sh.Kind)
		if err := r.shape(b, sh); err != nil {
			return fmt.Errorf("shape %d (%s): %w", i, sh.Kind, err)
		}
	}
	o.logger.Debug("rendered scene", "width", s.Width, "height", s.Height, "shapes", len(s.Shapes))
	return nil
}

func (r *renderer) clear(b *raster.Backbuffer, ref string) error {
	b.Clear()
	if ref == "" {
		return nil
	}
	c, err := palette.Resolve(ref, r.pal)
	if err != nil {
		return err
	}
	b.FillRect(raster.Rect{Width: b.Width, Height: b.Height}, c)
	return nil
}

func (r *renderer) color(sh Shape) (raster.Color, error) {
	if sh.Color == "" {
		return raster.Color{}, fmt.Errorf("missing color")
	}
	c, err := palette.Resolve(sh.Color, r.pal)
	if err != nil {
		return c, err
	}
	if sh.Alpha != nil {
		c = c.WithAlpha(*sh.Alpha)
	}
	return c, nil
}

func (r *renderer) shape(b *raster.Backbuffer, sh Shape) error {
	switch sh.Kind {
	case KindClear:
		return r.clear(b, sh.Color)
	case KindImage:
		return r.image(b, sh)
	}

	c, err := r.color(sh)
	if err != nil {
		return err
	}

	switch sh.Kind {
	case KindFillRect:
		b.FillRect(rect(sh.Rect), c)
	case KindRect:
		b.DrawRect(rect(sh.Rect), sh.Thickness, c)
	case KindFillCircle:
		b.FillCircle(sh.Center[0], sh.Center[1], sh.Radius, c)
	case KindCircle:
		b.DrawCircle(sh.Center[0], sh.Center[1], sh.Radius, sh.Thickness, c)
	case KindLine:
		b.DrawLine(sh.From[0], sh.From[1], sh.To[0], sh.To[1], c)
	default:
		return fmt.Errorf("unknown shape kind %q", sh.Kind)
	}
	return nil
}

func (r *renderer) image(b *raster.Backbuffer, sh Shape) error {
	path := r.path(sh.Image)
	img, ok := r.images[path]
	if !ok {
		var err error
		if img, err = r.o.loader(path); err != nil {
			return err
		}
		// BlitRect reads 3-channel sources as BGR; loaded images are RGB.
		if img, err = img.RGBA(); err != nil {
			return fmt.Errorf("could not convert image %q: %w", path, err)
		}
		r.images[path] = img
	}

	if sh.Src != nil {
		b.BlitRect(img, rect(sh.Src), rect(sh.Rect))
	} else {
		b.BlitBitmap(img, sh.At[0], sh.At[1])
	}
	return nil
}

func (s *Scene) path(p string) string {
	if filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// LoadImage reads an image file for an image shape. BMP and PPM files go
// through picasso's own decoders; BMP layouts they cannot represent and any
// other registered format are decoded with the image package.
func LoadImage(path string) (*raster.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		img, err := bmp.Load(path)
		if err != nil {
			return nil, err
		}
		if img.Channels == 3 || img.Channels == 4 {
			return img, nil
		}
		return decodeWith(path, xbmp.Decode)
	case ".ppm", ".pnm":
		p, err := ppm.Load(path)
		if err != nil {
			return nil, err
		}
		return p.Image(), nil
	}

	return decodeWith(path, func(r io.Reader) (image.Image, error) {
		m, _, err := image.Decode(r)
		return m, err
	})
}

func decodeWith(path string, decode func(io.Reader) (image.Image, error)) (*raster.Image, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return raster.FromImage(m)
}
