package bmp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"picasso/byteio"
	"picasso/imgerr"
)

const (
	magic         = 0x4D42 // "BM"
	fileHeaderLen = 14
	maskLen       = 4
)

// Variant identifies the DIB header generation by its size in bytes.
type Variant uint32

const (
	VariantCore Variant = 12  // BITMAPCOREHEADER (OS/2 1.x)
	VariantInfo Variant = 40  // BITMAPINFOHEADER
	VariantV3   Variant = 56  // BITMAPV3INFOHEADER, adds inline masks
	VariantV4   Variant = 108 // BITMAPV4HEADER, adds color space and gamma
	VariantV5   Variant = 124 // BITMAPV5HEADER, adds ICC profile
)

func (v Variant) String() string {
	switch v {
	case VariantCore:
		return "BITMAPCOREHEADER"
	case VariantInfo:
		return "BITMAPINFOHEADER"
	case VariantV3:
		return "BITMAPV3INFOHEADER"
	case VariantV4:
		return "BITMAPV4HEADER"
	case VariantV5:
		return "BITMAPV5HEADER"
	}
	return fmt.Sprintf("Variant(%d)", uint32(v))
}

func (v Variant) valid() bool {
	switch v {
	case VariantCore, VariantInfo, VariantV3, VariantV4, VariantV5:
		return true
	}
	return false
}

// Compression is the biCompression field.
type Compression uint32

const (
	CompressionRGB            Compression = 0
	CompressionRLE8           Compression = 1
	CompressionRLE4           Compression = 2
	CompressionBitfields      Compression = 3
	CompressionJPEG           Compression = 4
	CompressionPNG            Compression = 5
	CompressionAlphaBitfields Compression = 6
	CompressionCMYK           Compression = 11
	CompressionCMYKRLE8       Compression = 12
	CompressionCMYKRLE4       Compression = 13
)

func (c Compression) String() string {
	switch c {
	case CompressionRGB:
		return "BI_RGB"
	case CompressionRLE8:
		return "BI_RLE8"
	case CompressionRLE4:
		return "BI_RLE4"
	case CompressionBitfields:
		return "BI_BITFIELDS"
	case CompressionJPEG:
		return "BI_JPEG"
	case CompressionPNG:
		return "BI_PNG"
	case CompressionAlphaBitfields:
		return "BI_ALPHABITFIELDS"
	case CompressionCMYK:
		return "BI_CMYK"
	case CompressionCMYKRLE8:
		return "BI_CMYKRLE8"
	case CompressionCMYKRLE4:
		return "BI_CMYKRLE4"
	}
	return "Unknown"
}

// IsBitfields reports whether channel positions come from explicit masks.
func (c Compression) IsBitfields() bool {
	return c == CompressionBitfields || c == CompressionAlphaBitfields
}

// ColorSpace is the V4 bV4CSType field.
type ColorSpace uint32

const (
	ColorSpaceCalibrated ColorSpace = 0
	ColorSpaceWindows    ColorSpace = 0x57696E20 // 'Win '
	ColorSpaceSRGB       ColorSpace = 0x73524742 // 'sRGB'
	ProfileEmbedded      ColorSpace = 0x4D424544 // 'MBED'
	ProfileLinked        ColorSpace = 0x4C494E4B // 'LINK'
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceCalibrated:
		return "LCS_CALIBRATED_RGB"
	case ColorSpaceWindows:
		return "LCS_WINDOWS_COLOR_SPACE"
	case ColorSpaceSRGB:
		return "LCS_sRGB"
	case ProfileEmbedded:
		return "PROFILE_EMBEDDED"
	case ProfileLinked:
		return "PROFILE_LINKED"
	}
	return "Unknown"
}

// Intent is the V5 rendering intent.
type Intent uint32

const (
	IntentBusiness        Intent = 1 << 0 // saturation
	IntentGraphics        Intent = 1 << 1 // relative colorimetric
	IntentImages          Intent = 1 << 2 // perceptual
	IntentAbsColorimetric Intent = 1 << 3
)

func (i Intent) String() string {
	switch i {
	case IntentBusiness:
		return "LCS_GM_BUSINESS"
	case IntentGraphics:
		return "LCS_GM_GRAPHICS"
	case IntentImages:
		return "LCS_GM_IMAGES"
	case IntentAbsColorimetric:
		return "LCS_GM_ABS_COLORIMETRIC"
	}
	return "none"
}

// FileHeader is the 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Type       uint16
	Size       uint32
	Reserved1  uint16
	Reserved2  uint16
	PixelStart uint32 // offset of the first pixel row from the start of the file
}

// Masks holds the per-channel bit masks of a bitfields image.
type Masks struct {
	R, G, B, A uint32
}

// Header is everything parsed from a BMP file ahead of its pixel rows.
// It is not modified once parsing finishes.
type Header struct {
	File    FileHeader
	Variant Variant

	// Width and Height are the raw stored values. A negative Height marks
	// top-down row order.
	Width, Height   int32
	Planes          uint16
	BitCount        uint16
	Compression     Compression
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32

	// Masks come inline for V3 and later headers, and from the 12 or 16
	// bytes following a BITMAPINFOHEADER when Compression is a bitfields
	// mode.
	Masks Masks

	// V4 fields.
	ColorSpace ColorSpace
	Endpoints  [9]int32
	GammaRed   uint32
	GammaGreen uint32
	GammaBlue  uint32

	// V5 fields.
	Intent      Intent
	ProfileData uint32
	ProfileSize uint32

	// consumed counts the bytes read from the start of the file.
	consumed int
}

// readHeader parses the file header, the DIB header and any trailing masks
// from r. Every failure is a corrupt format error.
func readHeader(r *bufio.Reader) (*Header, error) {
	const op = "bmp.Decode"

	var fh [fileHeaderLen]byte
	if _, err := io.ReadFull(r, fh[:]); err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindCorrupt, fmt.Errorf("could not read file header: %w", eof(err)))
	}

	h := &Header{
		File: FileHeader{
			Type:       byteio.U16LE(fh[0:]),
			Size:       byteio.U32LE(fh[2:]),
			Reserved1:  byteio.U16LE(fh[6:]),
			Reserved2:  byteio.U16LE(fh[8:]),
			PixelStart: byteio.U32LE(fh[10:]),
		},
		consumed: fileHeaderLen,
	}
	if h.File.Type != magic {
		return nil, imgerr.New(op, imgerr.KindCorrupt, "not a BMP file: magic %#04x", h.File.Type)
	}

	peek, err := r.Peek(4)
	if err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindCorrupt, fmt.Errorf("could not read DIB header size: %w", eof(err)))
	}
	h.Variant = Variant(byteio.U32LE(peek))
	if !h.Variant.valid() {
		return nil, imgerr.New(op, imgerr.KindCorrupt, "unknown DIB header size %d", uint32(h.Variant))
	}

	dib := make([]byte, h.Variant)
	if _, err := io.ReadFull(r, dib); err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindCorrupt, fmt.Errorf("could not read %s: %w", h.Variant, eof(err)))
	}
	h.consumed += len(dib)

	if h.Variant == VariantCore {
		h.parseCore(dib)
		return h, nil
	}

	h.parseInfo(dib)
	if h.Variant >= VariantV3 {
		h.Masks = Masks{
			R: byteio.U32LE(dib[40:]),
			G: byteio.U32LE(dib[44:]),
			B: byteio.U32LE(dib[48:]),
			A: byteio.U32LE(dib[52:]),
		}
	}
	if h.Variant >= VariantV4 {
		h.parseV4(dib)
	}
	if h.Variant >= VariantV5 {
		h.Intent = Intent(byteio.U32LE(dib[108:]))
		h.ProfileData = byteio.U32LE(dib[112:])
		h.ProfileSize = byteio.U32LE(dib[116:])
	}

	if h.Variant == VariantInfo && h.Compression.IsBitfields() {
		if err := h.readTrailingMasks(r); err != nil {
			return nil, imgerr.Wrap(op, imgerr.KindCorrupt, err)
		}
	}

	return h, nil
}

func (h *Header) parseCore(dib []byte) {
	h.Width = int32(byteio.U16LE(dib[4:]))
	h.Height = int32(byteio.U16LE(dib[6:]))
	h.Planes = byteio.U16LE(dib[8:])
	h.BitCount = byteio.U16LE(dib[10:])
	h.Compression = CompressionRGB
}

func (h *Header) parseInfo(dib []byte) {
	h.Width = byteio.S32LE(dib[4:])
	h.Height = byteio.S32LE(dib[8:])
	h.Planes = byteio.U16LE(dib[12:])
	h.BitCount = byteio.U16LE(dib[14:])
	h.Compression = Compression(byteio.U32LE(dib[16:]))
	h.SizeImage = byteio.U32LE(dib[20:])
	h.XPelsPerMeter = byteio.S32LE(dib[24:])
	h.YPelsPerMeter = byteio.S32LE(dib[28:])
	h.ColorsUsed = byteio.U32LE(dib[32:])
	h.ColorsImportant = byteio.U32LE(dib[36:])
}

func (h *Header) parseV4(dib []byte) {
	h.ColorSpace = ColorSpace(byteio.U32LE(dib[56:]))
	for i := range h.Endpoints {
		h.Endpoints[i] = byteio.S32LE(dib[60+4*i:])
	}
	h.GammaRed = byteio.U32LE(dib[96:])
	h.GammaGreen = byteio.U32LE(dib[100:])
	h.GammaBlue = byteio.U32LE(dib[104:])
}

// readTrailingMasks reads the masks that follow a BITMAPINFOHEADER. There are
// three, or four when the gap up to the pixel data is exactly 16 bytes.
func (h *Header) readTrailingMasks(r io.Reader) error {
	n := 3
	if int64(h.File.PixelStart)-int64(h.consumed) == 4*maskLen {
		n = 4
	}

	buf := make([]byte, n*maskLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("could not read %d channel masks: %w", n, eof(err))
	}
	h.consumed += len(buf)

	m := [4]uint32{}
	for i := range n {
		m[i] = byteio.U32LE(buf[i*maskLen:])
	}
	h.Masks = Masks{R: m[0], G: m[1], B: m[2], A: m[3]}
	return nil
}

// eof turns a clean EOF in the middle of a structure into ErrUnexpectedEOF.
func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
