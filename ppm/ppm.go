// Package ppm reads and writes binary portable pixmaps (P6) with 8-bit
// channels.
package ppm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strconv"

	"picasso/imgerr"
	"picasso/internal/logging"
	"picasso/raster"
)

const (
	// Magic opens every P6 file.
	Magic = "P6"
	// MaxVal is the only supported channel maximum.
	MaxVal = 255
	// MaxDimension caps the width and height of a decoded image.
	MaxDimension = 1 << 14

	initialBodyCap = 1 << 20
)

func init() {
	image.RegisterFormat("ppm", Magic, decodeImage, DecodeConfig)
}

// PPM is a decoded pixmap. Pix holds Width*Height RGB triples, row-major.
type PPM struct {
	Width  int
	Height int
	MaxVal int
	Pix    []uint8
}

// Image copies p into a 3-channel raster image.
func (p *PPM) Image() *raster.Image {
	img, err := raster.NewImage(p.Width, p.Height, 3)
	if err != nil {
		return nil
	}
	copy(img.Pix, p.Pix)
	return img
}

// Option configures decoding and encoding.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives header traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.Or(o.logger)
	return o
}

type header struct {
	width, height, maxval int
}

func readHeader(r *bufio.Reader, logger *slog.Logger) (header, error) {
	const op = "ppm.Decode"
	var h header

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, imgerr.Wrap(op, imgerr.KindCorrupt, fmt.Errorf("could not read magic: %w", eof(err)))
	}
	if string(magic) != Magic {
		return h, imgerr.New(op, imgerr.KindCorrupt, "invalid magic %q, expected %q", magic, Magic)
	}
	logging.Trace(logger, "magic ok", "magic", Magic)

	fields := []struct {
		name string
		dst  *int
	}{
		{"width", &h.width},
		{"height", &h.height},
		{"maxval", &h.maxval},
	}
	for _, f := range fields {
		v, err := readInt(r)
		if err != nil {
			return h, imgerr.Wrap(op, imgerr.KindCorrupt, fmt.Errorf("could not read %s: %w", f.name, err))
		}
		*f.dst = v
	}
	logger.Debug("ppm header", "width", h.width, "height", h.height, "maxval", h.maxval)

	if h.maxval != MaxVal {
		return h, imgerr.New(op, imgerr.KindUnsupported, "unsupported maxval %d, expected %d", h.maxval, MaxVal)
	}
	if h.width <= 0 || h.height <= 0 || h.width > MaxDimension || h.height > MaxDimension {
		return h, imgerr.New(op, imgerr.KindCorrupt, "invalid dimensions %dx%d", h.width, h.height)
	}
	return h, nil
}

// readInt skips whitespace and '#' comments, then reads a decimal integer.
// The byte that ends the number is left unread.
func readInt(r *bufio.Reader) (int, error) {
	var c byte
	var err error
	for {
		if c, err = r.ReadByte(); err != nil {
			return 0, eof(err)
		}
		if c == '#' {
			for c != '\n' {
				if c, err = r.ReadByte(); err != nil {
					return 0, eof(err)
				}
			}
			continue
		}
		if !isSpace(c) {
			break
		}
	}

	var digits []byte
	for '0' <= c && c <= '9' {
		digits = append(digits, c)
		if c, err = r.ReadByte(); err != nil {
			break
		}
	}
	if err == nil {
		if uerr := r.UnreadByte(); uerr != nil {
			return 0, uerr
		}
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("expected a decimal number, got %q", c)
	}
	return strconv.Atoi(string(digits))
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func reader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Decode reads a P6 pixmap from r.
func Decode(r io.Reader, opts ...Option) (*PPM, error) {
	o := buildOptions(opts)
	br := reader(r)

	h, err := readHeader(br, o.logger)
	if err != nil {
		return nil, err
	}

	// Exactly one separator byte follows maxval.
	if _, err := br.ReadByte(); err != nil {
		return nil, imgerr.Wrap("ppm.Decode", imgerr.KindCorrupt, fmt.Errorf("could not read separator: %w", eof(err)))
	}

	// The body buffer grows with the data read, never past the declared size.
	want := int64(h.width) * int64(h.height) * 3
	var body bytes.Buffer
	body.Grow(int(min(want, initialBodyCap)))
	if _, err := body.ReadFrom(io.LimitReader(br, want)); err != nil {
		return nil, imgerr.Wrap("ppm.Decode", imgerr.KindCorrupt, fmt.Errorf("could not read pixel data: %w", err))
	}
	if n := int64(body.Len()); n != want {
		return nil, imgerr.Wrap("ppm.Decode", imgerr.KindCorrupt,
			fmt.Errorf("short pixel data, read %d of %d bytes: %w", n, want, io.ErrUnexpectedEOF))
	}
	pix := body.Bytes()
	logging.Trace(o.logger, "read pixel data", "bytes", len(pix))

	return &PPM{Width: h.width, Height: h.height, MaxVal: h.maxval, Pix: pix}, nil
}

// DecodeConfig returns the dimensions of a P6 pixmap without reading its
// pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(reader(r), logging.Nop())
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	p, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return p.Image(), nil
}
