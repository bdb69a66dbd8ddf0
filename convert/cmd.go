// Package convert implements the convert command: decode every image in a
// folder, optionally resize and repalette it, and write it out in another
// format.
package convert

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"picasso/internal/imgfmt"
	"picasso/palette"
	"picasso/parallel"
)

type CLICmd struct {
	Scan    string `help:"Source folder to scan" default:"."`
	Dest    string `help:"Destination folder for converted pictures. Relative to scan dir if not absolute." default:"converted"`
	Format  string `help:"Output format. 'same' keeps the input format when it can be written, png otherwise" enum:"same,ppm,png,bmp,tiff,gif,jpeg" default:"ppm"`
	Resize  bool   `help:"Resize image" default:"false" group:"resize"`
	Width   int    `help:"Max width" group:"resize"`
	Height  int    `help:"Max height" group:"resize"`
	Crop    bool   `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Nearest bool   `help:"Scale with nearest neighbor sampling instead of Catmull-Rom" default:"false" group:"resize"`
	Fill    string `help:"If given and not cropping, fill the background with this color (name or hex) to keep the destination aspect ratio" group:"resize"`
	Palette string `help:"PAL file in RIFF format to apply, or 'named' for the built-in named colors" group:"palette"`
	Dither  bool   `help:"Apply dithering" default:"false" group:"palette"`

	FillColor color.Color   `kong:"-"`
	Colors    color.Palette `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Resize {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if (!c.Crop) && (c.Fill != "") {
		fill, err := palette.Resolve(c.Fill, nil)
		if err != nil {
			return fmt.Errorf("invalid fill color: %w", err)
		}
		c.FillColor = fill
	}

	if c.Palette != "" {
		if c.Colors, err = loadPalette(c.Palette); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(ctx context.Context, pool *parallel.Pool, logger *slog.Logger) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileName := file.Name()
		pool.Submit(func(context.Context) error {
			return c.convert(logger.With("file", filepath.Join(c.Scan, fileName)), fileName)
		})
	}

	st := pool.Wait()
	logger.Info("stats", "processed", st.Done, "errors", st.Failed, "skipped", st.Skipped,
		"total", st.Done+st.Failed+st.Skipped)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conversion interrupted: %w", err)
	}
	if st.Failed > 0 {
		return fmt.Errorf("error processing %d files", st.Failed)
	}
	return nil
}

func (c *CLICmd) convert(logger *slog.Logger, fileName string) error {
	img, imgType, err := imgfmt.Load(logger, filepath.Join(c.Scan, fileName))
	if err != nil {
		logger.Error("could not decode image", "error", err)
		return err
	}

	if c.Resize {
		img, err = resize(logger, img, resizeOpts{
			width:   c.Width,
			height:  c.Height,
			crop:    c.Crop,
			nearest: c.Nearest,
			fill:    c.FillColor,
		})
		if err != nil {
			logger.Error("could not resize image", "error", err)
			return err
		}
	}

	if len(c.Colors) > 0 {
		img = repalette(logger.With("palette", c.Palette), img, c.Colors, c.Dither)
	}

	format := outputFormat(c.Format, imgType)
	dest := filepath.Join(c.Dest, destName(fileName, format))
	if err := save(img, format, dest); err != nil {
		logger.Error("could not save image", "dest", dest, "error", err)
		return err
	}
	logger.Debug("converted", "from", imgType, "to", format, "dest", dest)
	return nil
}

func outputFormat(format, imgType string) string {
	if format != "same" {
		return format
	}
	if slices.Contains(imgfmt.Formats, imgType) {
		return imgType
	}
	return "png"
}

func destName(srcName, format string) string {
	return strings.TrimSuffix(srcName, filepath.Ext(srcName)) + imgfmt.Ext(format)
}

// save writes img to a temporary file next to dest and renames it into place.
func save(img image.Image, format, dest string) error {
	tmp := dest + ".tmp"
	if err := imgfmt.Save(tmp, img, format); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Error("could not remove temporary file", "name", tmp, "error", rmErr)
		}
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("could not rename destination file %q: %w", dest, err)
	}
	return nil
}
