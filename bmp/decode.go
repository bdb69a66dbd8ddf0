// Package bmp decodes Windows BMP files into raster images.
//
// All five DIB header generations are understood: BITMAPCOREHEADER (12
// bytes), BITMAPINFOHEADER (40), BITMAPV3INFOHEADER (56), BITMAPV4HEADER (108)
// and BITMAPV5HEADER (124). Pixels must be 24 or 32 bits, stored uncompressed
// or as bitfields. Color space and ICC profile fields are parsed and logged
// but never applied.
package bmp

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"picasso/byteio"
	"picasso/imgerr"
	"picasso/internal/logging"
	"picasso/raster"
)

// MaxDimension caps the width and height of a decoded image. Anything larger
// is treated as a corrupt header.
const MaxDimension = 1 << 14

// initialPixCap bounds the pixel buffer allocated ahead of the row data.
const initialPixCap = 1 << 20

// Option configures decoding.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives header traces and structural
// warnings.
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

// decoder is the state derived from a Header for a single decode call.
type decoder struct {
	hdr    *Header
	logger *slog.Logger

	width, height int
	channels      int
	rowSize       int // padded bytes per row on disk
	stride        int // unpadded bytes per row in memory
	flipped       bool

	bitfields  bool
	r, g, b, a channelMask
}

func newDecoder(h *Header, logger *slog.Logger) (*decoder, error) {
	d := &decoder{hdr: h, logger: logger}

	d.width = int(h.Width)
	d.height = int(h.Height)
	if h.Variant != VariantCore {
		d.flipped = h.Height > 0
		if d.height < 0 {
			d.height = -d.height
		}
	}

	if d.width > MaxDimension || d.height > MaxDimension {
		return nil, imgerr.New("bmp.Decode", imgerr.KindCorrupt, "image too large, %dx%d", d.width, d.height)
	}
	if d.width <= 0 || d.height <= 0 {
		return nil, imgerr.New("bmp.Decode", imgerr.KindCorrupt, "invalid dimensions %dx%d", d.width, d.height)
	}

	switch h.BitCount {
	case 1, 4, 8, 16, 24, 32:
	default:
		return nil, imgerr.New("bmp.Decode", imgerr.KindCorrupt, "invalid bit count %d", h.BitCount)
	}

	d.channels = int(h.BitCount) / 8
	d.stride = d.width * d.channels
	d.rowSize = (d.stride + 3) &^ 3

	d.bitfields = h.Compression.IsBitfields()
	if d.bitfields {
		d.r = newChannelMask(h.Masks.R)
		d.g = newChannelMask(h.Masks.G)
		d.b = newChannelMask(h.Masks.B)
		d.a = newChannelMask(h.Masks.A)
	}

	return d, nil
}

// logHeader reports the parsed header and flags anything the decoder will
// not honour.
func (d *decoder) logHeader() {
	h, l := d.hdr, d.logger

	logging.Trace(l, "file header", "size", h.File.Size, "pixel_start", h.File.PixelStart)
	logging.Trace(l, "header type", "variant", h.Variant.String(), "dib_size", uint32(h.Variant))
	logging.Trace(l, "geometry",
		"width", d.width, "height", d.height, "flipped", d.flipped,
		"bit_count", h.BitCount, "row_stride", d.stride, "row_size", d.rowSize)

	if h.Variant >= VariantInfo {
		logging.Trace(l, "info header", "compression", h.Compression.String(), "size_image", h.SizeImage)
		switch h.Compression {
		case CompressionRGB:
		case CompressionBitfields, CompressionAlphaBitfields:
			logging.Trace(l, "channel masks",
				"red", fmt.Sprintf("0x%08x", h.Masks.R), "red_shift", d.r.shift,
				"green", fmt.Sprintf("0x%08x", h.Masks.G), "green_shift", d.g.shift,
				"blue", fmt.Sprintf("0x%08x", h.Masks.B), "blue_shift", d.b.shift,
				"alpha", fmt.Sprintf("0x%08x", h.Masks.A), "alpha_shift", d.a.shift)
		default:
			l.Error("compression not supported yet", "compression", h.Compression.String())
		}
	}

	if h.Variant >= VariantV4 {
		logging.Trace(l, "color space", "cs_type", h.ColorSpace.String(),
			"gamma_red", h.GammaRed, "gamma_green", h.GammaGreen, "gamma_blue", h.GammaBlue,
			"endpoints", h.Endpoints)
	}

	if h.Variant >= VariantV5 {
		logging.Trace(l, "icc profile", "intent", h.Intent.String(),
			"profile_data", h.ProfileData, "profile_size", h.ProfileSize)
		if h.ProfileSize > 0 && uint64(h.ProfileData)+uint64(h.ProfileSize) > uint64(h.File.Size) {
			l.Warn("embedded profile overflows file size, ignoring",
				"profile_end", uint64(h.ProfileData)+uint64(h.ProfileSize), "file_size", h.File.Size)
		}
	}

	if d.channels != 3 && d.channels != 4 {
		l.Warn("only 24 and 32 bit pixels are supported", "bit_count", h.BitCount)
	}
}

// readRows fills img from r, one padded on-disk row at a time. The pixel
// buffer grows with the rows actually read so a truncated file never commits
// the full declared size.
func (d *decoder) readRows(r io.Reader, img *raster.Image) error {
	if skip := int64(d.hdr.File.PixelStart) - int64(d.hdr.consumed); skip > 0 {
		logging.Trace(d.logger, "skipping to pixel data", "bytes", skip)
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return fmt.Errorf("could not skip to pixel data: %w", eof(err))
		}
	}

	pix := make([]uint8, 0, min(d.stride*d.height, initialPixCap))
	row := make([]byte, d.rowSize)
	for y := range d.height {
		if _, err := io.ReadFull(r, row); err != nil {
			return fmt.Errorf("could not read row %d: %w", y, eof(err))
		}
		pix = append(pix, row[:d.stride]...)
	}

	if d.flipped {
		tmp := make([]uint8, d.stride)
		for top, bot := 0, d.height-1; top < bot; top, bot = top+1, bot-1 {
			a := pix[top*d.stride : (top+1)*d.stride]
			b := pix[bot*d.stride : (bot+1)*d.stride]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}

	img.Pix = pix
	return nil
}

// convert rewrites every pixel from its on-disk layout to RGB(A) and reports
// whether all alpha bytes came out zero.
func (d *decoder) convert(img *raster.Image) (alphaZero bool) {
	alphaZero = d.channels == 4
	masked := d.bitfields && d.channels == 4

	for px := range img.Pixels() {
		if masked {
			v := byteio.U32LE(px.Ch)
			px.Ch[0] = d.r.decode(v)
			px.Ch[1] = d.g.decode(v)
			px.Ch[2] = d.b.decode(v)
			px.Ch[3] = d.a.decode(v)
		} else {
			raster.WritePixel(px.Ch, d.channels, raster.OrderRGB,
				raster.ReadPixel(px.Ch, d.channels, raster.OrderBGR))
		}

		if alphaZero && px.Ch[3] != 0 {
			alphaZero = false
		}
	}
	return alphaZero
}

func reader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Decode reads a BMP image from r.
func Decode(r io.Reader, opts ...Option) (*raster.Image, error) {
	o := buildOptions(opts)
	br := reader(r)

	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	d, err := newDecoder(hdr, o.logger)
	if err != nil {
		return nil, err
	}
	d.logHeader()

	img := &raster.Image{
		Width:    d.width,
		Height:   d.height,
		Channels: d.channels,
		Stride:   d.stride,
	}
	if err := d.readRows(br, img); err != nil {
		return nil, imgerr.Wrap("bmp.Decode", imgerr.KindCorrupt, err)
	}

	if d.convert(img) {
		logging.Trace(o.logger, "all alpha values were zero, setting to 0xff")
		for px := range img.Pixels() {
			px.Ch[3] = 0xFF
		}
	}

	return img, nil
}

// DecodeHeader reads and returns only the headers of a BMP image.
func DecodeHeader(r io.Reader) (*Header, error) {
	return readHeader(reader(r))
}

// DecodeConfig returns the dimensions of a BMP image without reading its
// pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr, err := readHeader(reader(r))
	if err != nil {
		return image.Config{}, err
	}
	d, err := newDecoder(hdr, logging.Nop())
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: d.width, Height: d.height}, nil
}

// Load reads and decodes the BMP file at path.
func Load(path string, opts ...Option) (*raster.Image, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	img, err := Decode(bytes.NewReader(data), opts...)
	if err != nil {
		o.logger.Error("could not load BMP", "file", path, "error", err)
		return nil, err
	}
	return img, nil
}
