// Package render implements the render command: draw a YAML scene into a
// backbuffer and present the frame to an image file.
package render

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"picasso/internal/imgfmt"
	"picasso/raster"
	"picasso/scene"
)

type CLICmd struct {
	Scene  string `arg:"" help:"Scene file (YAML)" type:"existingfile"`
	Out    string `short:"o" help:"Output image file" default:"scene.ppm"`
	Format string `help:"Output format. 'auto' picks it from the output file extension" enum:"auto,ppm,png,bmp,tiff,gif,jpeg" default:"auto"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Format != "auto" && c.Format != "" {
		return nil
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Out)), ".")
	switch ext {
	case "jpg":
		ext = "jpeg"
	case "tif":
		ext = "tiff"
	case "pnm":
		ext = "ppm"
	}
	if !slices.Contains(imgfmt.Formats, ext) {
		return fmt.Errorf("cannot tell output format from %q, use --format", c.Out)
	}
	c.Format = ext
	return nil
}

// FilePresenter presents frames by encoding them to an image file.
type FilePresenter struct {
	Path   string
	Format string
}

var _ raster.Presenter = (*FilePresenter)(nil)

func (p *FilePresenter) Present(pix []uint32, width, height, pitch int) error {
	frame := &raster.Backbuffer{Width: width, Height: height, Pitch: pitch, Pix: pix}
	if err := imgfmt.Save(p.Path, frame, p.Format); err != nil {
		return fmt.Errorf("could not present frame to %q: %w", p.Path, err)
	}
	return nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	s, err := scene.Load(c.Scene)
	if err != nil {
		return err
	}

	b, err := s.Render(scene.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("could not render %q: %w", c.Scene, err)
	}
	defer b.Release()

	if err := b.Present(&FilePresenter{Path: c.Out, Format: c.Format}); err != nil {
		return err
	}

	logger.Info("rendered", "scene", c.Scene, "out", c.Out, "format", c.Format,
		"width", b.Width, "height", b.Height, "shapes", len(s.Shapes))
	return nil
}
