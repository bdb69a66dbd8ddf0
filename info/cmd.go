// Package info implements the info command: report the format, size and
// orientation of image files, and the parsed headers of BMP files.
package info

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/alecthomas/kong"

	"picasso/bmp"
	"picasso/byteio"
	"picasso/internal/imgfmt"
)

type CLICmd struct {
	Files  []string `arg:"" help:"Image files to inspect" type:"existingfile"`
	Decode bool     `help:"Fully decode BMP files; run with --log-level=trace to see every decoding step" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	for i, f := range c.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("invalid file path %q: %w", f, err)
		}
		c.Files[i] = abs
	}
	return nil
}

// Report describes one inspected file.
type Report struct {
	Format string
	Width  int
	Height int
	// Header is set for BMP files.
	Header *bmp.Header
}

// Portrait reports whether the image is taller than it is wide.
func (r Report) Portrait() bool {
	return r.Height > r.Width
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	var portraitCount, landscapeCount, errCount int
	for _, name := range c.Files {
		fileLog := logger.With("file", name)

		rep, err := Inspect(fileLog, name, c.Decode)
		if err != nil {
			errCount++
			fileLog.Error("could not read image", "error", err)
			continue
		}

		orientation := "landscape"
		if rep.Portrait() {
			portraitCount++
			orientation = "portrait"
		} else {
			landscapeCount++
		}
		fileLog.Info("image", "format", rep.Format, "width", rep.Width, "height", rep.Height,
			"orientation", orientation)

		if h := rep.Header; h != nil {
			fileLog.Info("bmp header", "variant", h.Variant.String(), "bit_count", h.BitCount,
				"compression", h.Compression.String(), "top_down", h.Height < 0,
				"pixel_start", h.File.PixelStart, "file_size", h.File.Size)
		}
	}

	logger.Info("stats", "portraits", portraitCount, "landscapes", landscapeCount, "errors", errCount, "total",
		portraitCount+landscapeCount)

	if errCount > 0 {
		return fmt.Errorf("error processing %d files", errCount)
	}
	return nil
}

// Inspect reads the file at path. With decode set, BMP pixel data is decoded
// too, which validates the whole file and logs the decoder's trace output.
func Inspect(logger *slog.Logger, path string, decode bool) (Report, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return Report{}, err
	}

	conf, format, err := imgfmt.DecodeConfig(data)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Format: format, Width: conf.Width, Height: conf.Height}

	if format != "bmp" {
		return rep, nil
	}

	if rep.Header, err = bmp.DecodeHeader(bytes.NewReader(data)); err != nil {
		return rep, err
	}
	if decode {
		img, err := bmp.Decode(bytes.NewReader(data), bmp.WithLogger(logger))
		if err != nil {
			return rep, err
		}
		logger.Debug("decoded", "channels", img.Channels, "stride", img.Stride)
		img.Release()
	}
	return rep, nil
}
