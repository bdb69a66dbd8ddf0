// Package imgfmt decodes and encodes whole image files for the picasso
// commands. BMP and PPM input goes through picasso's own decoders; every
// other format, and BMP layouts those decoders cannot represent, goes
// through the image package's registered decoders.
package imgfmt

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"slices"
	"sync"

	xbmp "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"picasso/bmp"
	"picasso/byteio"
	"picasso/ppm"
)

// Formats lists the names Encode accepts.
var Formats = []string{"ppm", "png", "bmp", "tiff", "gif", "jpeg"}

// Ext returns the file extension used for format.
func Ext(format string) string {
	return "." + format
}

// Decode decodes data and returns the image with the name of its format.
func Decode(logger *slog.Logger, data []byte) (image.Image, string, error) {
	if bytes.HasPrefix(data, []byte("BM")) {
		img, err := bmp.Decode(bytes.NewReader(data), bmp.WithLogger(logger))
		switch {
		case err != nil:
			logger.Debug("falling back to generic BMP decoder", "error", err)
		case img.Channels != 3 && img.Channels != 4:
			logger.Debug("falling back to generic BMP decoder", "channels", img.Channels)
		default:
			return img, "bmp", nil
		}

		m, err := xbmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("could not decode BMP: %w", err)
		}
		return m, "bmp", nil
	}

	m, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}
	return m, name, nil
}

// DecodeConfig returns the dimensions and format name of the image in data
// without decoding its pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	if bytes.HasPrefix(data, []byte("BM")) {
		conf, err := bmp.DecodeConfig(bytes.NewReader(data))
		return conf, "bmp", err
	}

	conf, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return conf, "", fmt.Errorf("could not read image config: %w", err)
	}
	return conf, name, nil
}

// Load reads and decodes the file at path.
func Load(logger *slog.Logger, path string) (image.Image, string, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return Decode(logger, data)
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "ppm":
		err = ppm.Encode(w, img)
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(w, img)
	case "bmp":
		err = xbmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	if err != nil {
		return fmt.Errorf("could not encode %s: %w", format, err)
	}
	return nil
}

// Save encodes img and writes it to path.
func Save(path string, img image.Image, format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return err
	}
	return byteio.WriteFile(path, buf.Bytes())
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
