package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	xbmp "golang.org/x/image/bmp"

	"picasso/byteio"
	"picasso/imgerr"
	"picasso/raster"
)

// fixture describes a synthetic BMP file.
type fixture struct {
	variant     Variant
	width       int32
	height      int32
	bitCount    uint16
	compression Compression
	masks       *Masks
	alphaMask   bool // BITMAPINFOHEADER only: write four trailing masks
	rows        [][]byte
	fileSize    uint32
	profileData uint32
	profileSize uint32
}

func (f fixture) bytes() []byte {
	le := binary.LittleEndian
	dib := make([]byte, f.variant)
	le.PutUint32(dib[0:], uint32(f.variant))

	if f.variant == VariantCore {
		le.PutUint16(dib[4:], uint16(f.width))
		le.PutUint16(dib[6:], uint16(f.height))
		le.PutUint16(dib[8:], 1)
		le.PutUint16(dib[10:], f.bitCount)
	} else {
		le.PutUint32(dib[4:], uint32(f.width))
		le.PutUint32(dib[8:], uint32(f.height))
		le.PutUint16(dib[12:], 1)
		le.PutUint16(dib[14:], f.bitCount)
		le.PutUint32(dib[16:], uint32(f.compression))
		if f.variant >= VariantV3 && f.masks != nil {
			le.PutUint32(dib[40:], f.masks.R)
			le.PutUint32(dib[44:], f.masks.G)
			le.PutUint32(dib[48:], f.masks.B)
			le.PutUint32(dib[52:], f.masks.A)
		}
		if f.variant >= VariantV4 {
			le.PutUint32(dib[56:], uint32(ColorSpaceSRGB))
		}
		if f.variant >= VariantV5 {
			le.PutUint32(dib[108:], uint32(IntentImages))
			le.PutUint32(dib[112:], f.profileData)
			le.PutUint32(dib[116:], f.profileSize)
		}
	}

	var extra []byte
	if f.variant == VariantInfo && f.compression.IsBitfields() && f.masks != nil {
		extra = le.AppendUint32(extra, f.masks.R)
		extra = le.AppendUint32(extra, f.masks.G)
		extra = le.AppendUint32(extra, f.masks.B)
		if f.alphaMask {
			extra = le.AppendUint32(extra, f.masks.A)
		}
	}

	var pix []byte
	for _, row := range f.rows {
		padded := make([]byte, (len(row)+3)&^3)
		copy(padded, row)
		pix = append(pix, padded...)
	}

	offset := fileHeaderLen + len(dib) + len(extra)
	size := uint32(offset + len(pix))
	if f.fileSize != 0 {
		size = f.fileSize
	}

	out := []byte{'B', 'M'}
	out = le.AppendUint32(out, size)
	out = le.AppendUint32(out, 0)
	out = le.AppendUint32(out, uint32(offset))
	out = append(out, dib...)
	out = append(out, extra...)
	return append(out, pix...)
}

func decodeFixture(t *testing.T, f fixture) *raster.Image {
	t.Helper()
	img, err := Decode(bytes.NewReader(f.bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return img
}

// bgrRows returns two bottom-up rows of 24-bit pixels, 2 pixels wide.
func bgrRows() [][]byte {
	return [][]byte{
		{3, 2, 1, 6, 5, 4},    // bottom row on disk
		{9, 8, 7, 12, 11, 10}, // top row on disk
	}
}

func TestDecodeVariants(t *testing.T) {
	for _, v := range []Variant{VariantCore, VariantInfo, VariantV3, VariantV4, VariantV5} {
		t.Run(v.String(), func(t *testing.T) {
			img := decodeFixture(t, fixture{
				variant:  v,
				width:    2,
				height:   2,
				bitCount: 24,
				rows:     bgrRows(),
			})
			if img.Width != 2 || img.Height != 2 || img.Channels != 3 {
				t.Errorf("decoded %dx%dx%d, want 2x2x3", img.Width, img.Height, img.Channels)
			}
			if img.Stride != 6 || len(img.Pix) != 12 {
				t.Errorf("stride %d len %d, want 6 and 12", img.Stride, len(img.Pix))
			}
		})
	}
}

func TestDecodeBottomUp(t *testing.T) {
	img := decodeFixture(t, fixture{variant: VariantInfo, width: 2, height: 2, bitCount: 24, rows: bgrRows()})

	want := []uint8{
		7, 8, 9, 10, 11, 12, // last on-disk row comes first
		1, 2, 3, 4, 5, 6,
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}
}

func TestDecodeTopDown(t *testing.T) {
	img := decodeFixture(t, fixture{variant: VariantInfo, width: 2, height: -2, bitCount: 24, rows: bgrRows()})

	want := []uint8{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}
}

func TestDecodeCoreKeepsRowOrder(t *testing.T) {
	img := decodeFixture(t, fixture{variant: VariantCore, width: 2, height: 2, bitCount: 24, rows: bgrRows()})
	if img.Pix[0] != 1 {
		t.Errorf("first pixel red = %d, want 1", img.Pix[0])
	}
}

func TestDecodeRowPadding(t *testing.T) {
	// 3 pixels * 3 bytes = 9, padded to 12 on disk.
	img := decodeFixture(t, fixture{
		variant:  VariantInfo,
		width:    3,
		height:   -1,
		bitCount: 24,
		rows:     [][]byte{{3, 2, 1, 6, 5, 4, 9, 8, 7}},
	})
	want := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}
}

func TestDecodeBitfields32(t *testing.T) {
	masks := &Masks{R: 0x00FF0000, G: 0x0000FF00, B: 0x000000FF, A: 0xFF000000}
	pixel := func(r, g, b, a uint8) []byte {
		return []byte{b, g, r, a}
	}
	row := append(pixel(0x12, 0x34, 0x56, 0x78), pixel(0xFE, 0x01, 0x80, 0xFF)...)

	for _, v := range []Variant{VariantInfo, VariantV3, VariantV4, VariantV5} {
		t.Run(v.String(), func(t *testing.T) {
			img := decodeFixture(t, fixture{
				variant:     v,
				width:       2,
				height:      1,
				bitCount:    32,
				compression: CompressionBitfields,
				masks:       masks,
				alphaMask:   true,
				rows:        [][]byte{row},
			})
			want := []uint8{0x12, 0x34, 0x56, 0x78, 0xFE, 0x01, 0x80, 0xFF}
			if !bytes.Equal(img.Pix, want) {
				t.Errorf("Pix = %x, want %x", img.Pix, want)
			}
		})
	}
}

func TestDecodeBitfieldsRescale(t *testing.T) {
	// 5-5-5 channels inside a 32-bit pixel.
	masks := &Masks{R: 0x7C00, G: 0x03E0, B: 0x001F}
	v := uint32(31)<<10 | uint32(16)<<5 | 0
	row := binary.LittleEndian.AppendUint32(nil, v)

	img := decodeFixture(t, fixture{
		variant:     VariantV4,
		width:       1,
		height:      1,
		bitCount:    32,
		compression: CompressionBitfields,
		masks:       masks,
		rows:        [][]byte{row},
	})
	// No alpha mask decodes alpha to 0 everywhere, which forces it opaque.
	want := []uint8{255, 16 * 255 / 31, 0, 0xFF}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}
}

func TestDecodeThreeTrailingMasks(t *testing.T) {
	masks := &Masks{R: 0x00FF0000, G: 0x0000FF00, B: 0x000000FF}
	img := decodeFixture(t, fixture{
		variant:     VariantInfo,
		width:       1,
		height:      1,
		bitCount:    32,
		compression: CompressionBitfields,
		masks:       masks,
		rows:        [][]byte{{0x30, 0x20, 0x10, 0x99}},
	})
	want := []uint8{0x10, 0x20, 0x30, 0xFF}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %x, want %x", img.Pix, want)
	}
}

func TestDecodeAlphaAllZero(t *testing.T) {
	img := decodeFixture(t, fixture{
		variant:  VariantInfo,
		width:    2,
		height:   2,
		bitCount: 32,
		rows: [][]byte{
			{1, 2, 3, 0, 4, 5, 6, 0},
			{7, 8, 9, 0, 10, 11, 12, 0},
		},
	})
	for px := range img.Pixels() {
		if px.Ch[3] != 0xFF {
			t.Errorf("alpha at (%d,%d) = %d, want 255", px.X, px.Y, px.Ch[3])
		}
	}
	if img.Pix[0] != 9 || img.Pix[2] != 7 {
		t.Errorf("first pixel = %v, want BGR swapped", img.Pix[:4])
	}
}

func TestDecodeAlphaKept(t *testing.T) {
	img := decodeFixture(t, fixture{
		variant:  VariantInfo,
		width:    2,
		height:   1,
		bitCount: 32,
		rows:     [][]byte{{1, 2, 3, 0, 4, 5, 6, 0x40}},
	})
	if img.Pix[3] != 0 || img.Pix[7] != 0x40 {
		t.Errorf("alphas = %d, %d; want 0 and 64", img.Pix[3], img.Pix[7])
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := fixture{variant: VariantInfo, width: 2, height: 2, bitCount: 24, rows: bgrRows()}.bytes()

	badMagic := bytes.Clone(valid)
	badMagic[0] = 'X'

	badDIB := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(badDIB[14:], 64)

	tooWide := fixture{variant: VariantInfo, width: MaxDimension + 1, height: 1, bitCount: 24}.bytes()
	tooTall := fixture{variant: VariantInfo, width: 1, height: -(MaxDimension + 1), bitCount: 24}.bytes()
	badBitCount := fixture{variant: VariantInfo, width: MaxDimension, height: MaxDimension, bitCount: 0xFFF8}.bytes()
	zeroBitCount := fixture{variant: VariantInfo, width: 2, height: 2, bitCount: 0, rows: bgrRows()}.bytes()
	hugeNoRows := fixture{
		variant:  VariantInfo,
		width:    MaxDimension,
		height:   MaxDimension,
		bitCount: 32,
		rows:     [][]byte{{1, 2, 3, 4}},
	}.bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", badMagic},
		{"unknown dib size", badDIB},
		{"short dib", valid[:30]},
		{"short rows", valid[:len(valid)-1]},
		{"too wide", tooWide},
		{"too tall", tooTall},
		{"bad bit count", badBitCount},
		{"zero bit count", zeroBitCount},
		{"huge truncated", hugeNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(bytes.NewReader(tt.data))
			if img != nil {
				t.Error("Decode returned an image on failure")
			}
			if !errors.Is(err, imgerr.ErrCorrupt) {
				t.Errorf("error = %v, want corrupt format", err)
			}
		})
	}
}

func TestDecodeProfileOverflowWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	f := fixture{
		variant:     VariantV5,
		width:       2,
		height:      2,
		bitCount:    24,
		rows:        bgrRows(),
		profileData: 200,
		profileSize: 4096,
	}
	img, err := Decode(bytes.NewReader(f.bytes()), WithLogger(logger))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 {
		t.Errorf("width = %d, want 2", img.Width)
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "profile") {
		t.Errorf("expected profile warning, got %q", buf.String())
	}
}

func TestDecodeOddChannelsWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	f := fixture{variant: VariantInfo, width: 2, height: 1, bitCount: 16, rows: [][]byte{{1, 2, 3, 4}}}
	img, err := Decode(bytes.NewReader(f.bytes()), WithLogger(logger))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Channels != 2 {
		t.Errorf("channels = %d, want 2", img.Channels)
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected channel warning, got %q", buf.String())
	}
}

func TestDecodeHeader(t *testing.T) {
	f := fixture{
		variant:     VariantV4,
		width:       3,
		height:      -5,
		bitCount:    32,
		compression: CompressionBitfields,
		masks:       &Masks{R: 0xFF, G: 0xFF00, B: 0xFF0000, A: 0xFF000000},
	}
	h, err := DecodeHeader(bytes.NewReader(f.bytes()))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Variant != VariantV4 || h.Width != 3 || h.Height != -5 || h.BitCount != 32 {
		t.Errorf("header = %+v", h)
	}
	if h.Masks.B != 0xFF0000 || h.ColorSpace != ColorSpaceSRGB {
		t.Errorf("masks %+v color space %v", h.Masks, h.ColorSpace)
	}

	cfg, err := DecodeConfig(bytes.NewReader(f.bytes()))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 3 || cfg.Height != 5 {
		t.Errorf("config %dx%d, want 3x5", cfg.Width, cfg.Height)
	}
}

func TestDecodeMatchesXImageEncoder(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 50), G: uint8(y * 80), B: uint8(x*y + 7), A: 0xFF})
		}
	}

	var buf bytes.Buffer
	if err := xbmp.Encode(&buf, src); err != nil {
		t.Fatalf("x/image/bmp.Encode: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 5 || img.Height != 3 {
		t.Fatalf("decoded %dx%d, want 5x3", img.Width, img.Height)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want := src.RGBAAt(x, y)
			got := img.ColorAt(x, y, raster.OrderRGB)
			if got.R != want.R || got.G != want.G || got.B != want.B || got.A != want.A {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.bmp")
	f := fixture{variant: VariantInfo, width: 2, height: 2, bitCount: 24, rows: bgrRows()}
	if err := byteio.WriteFile(path, f.bytes()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Errorf("loaded %dx%d", img.Width, img.Height)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.bmp")); !errors.Is(err, imgerr.ErrIO) {
		t.Errorf("Load(missing) error = %v, want io kind", err)
	}
}
