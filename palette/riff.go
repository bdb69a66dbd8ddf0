package palette

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"

	"picasso/byteio"
	"picasso/imgerr"
	"picasso/raster"
)

// A RIFF palette ("PAL ") form holds one or more "data" chunks, optionally
// nested in LIST chunks of the same form type. Each data chunk is a
// LOGPALETTE: the version word 0x0300 and an entry count, both little-endian,
// then 4 bytes per entry (red, green, blue, flags).

// Palette is an indexed list of opaque colors.
type Palette []raster.Color

const (
	palVersion = 0x0300
	entrySize  = 4
)

var (
	riffID    = riff.FourCC{'R', 'I', 'F', 'F'}
	palForm   = riff.FourCC{'P', 'A', 'L', ' '}
	dataChunk = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadRIFF reads every palette in a Microsoft RIFF palette stream, in file
// order. Malformed input is reported as a corrupt format error together with
// the palettes decoded before it.
func ReadRIFF(r io.Reader) ([]Palette, error) {
	const op = "palette.ReadRIFF"

	form, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindCorrupt, err)
	}
	if form != palForm {
		return nil, imgerr.New(op, imgerr.KindUnsupported, "form type %q is not a palette", form[:])
	}

	var pals []Palette
	if err := walkChunks(rd, "PAL", func(path string, data io.Reader) error {
		pal, err := decodeLogPalette(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		pals = append(pals, pal)
		return nil
	}); err != nil {
		return pals, imgerr.Wrap(op, imgerr.KindCorrupt, err)
	}
	return pals, nil
}

// walkChunks calls fn for each data chunk under rd, descending into palette
// lists. path names the chunk position for error messages.
func walkChunks(rd *riff.Reader, path string, fn func(path string, data io.Reader) error) error {
	for i := 0; ; i++ {
		id, size, data, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s/%d: %w", path, i, err)
		}

		here := fmt.Sprintf("%s/%d", path, i)
		switch id {
		case dataChunk:
			if err := fn(here, data); err != nil {
				return err
			}
		case riff.LIST:
			kind, list, err := riff.NewListReader(size, data)
			if err != nil {
				return fmt.Errorf("%s: %w", here, err)
			}
			if kind != palForm {
				return fmt.Errorf("%s: list of %q, want palettes", here, kind[:])
			}
			if err := walkChunks(list, here, fn); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unexpected chunk %q", here, id[:])
		}
	}
}

func decodeLogPalette(r io.Reader) (Palette, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("palette header: %w", err)
	}
	if v := byteio.U16LE(head[:]); v != palVersion {
		return nil, fmt.Errorf("palette version %#04x, want %#04x", v, palVersion)
	}

	n := int(byteio.U16LE(head[2:]))
	entries := make([]byte, n*entrySize)
	if _, err := io.ReadFull(r, entries); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%d palette entries: %w", n, err)
	}

	pal := make(Palette, n)
	for i := range pal {
		e := entries[i*entrySize:]
		pal[i] = raster.Color{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return pal, nil
}

// LoadFile reads the first palette of the RIFF .pal file at path.
func LoadFile(path string) (Palette, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pals, err := ReadRIFF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read palette %q: %w", path, err)
	}
	if len(pals) == 0 {
		return nil, imgerr.New("palette.LoadFile", imgerr.KindCorrupt, "no palette in %q", path)
	}
	return pals[0], nil
}

// WriteRIFF writes pals as one RIFF palette form, each palette in its own
// data chunk, and returns the number of colors written. Alpha is not stored.
func WriteRIFF(w io.Writer, pals []Palette) (int64, error) {
	const op = "palette.WriteRIFF"

	var body bytes.Buffer
	body.Write(palForm[:])

	var colors int64
	for i, pal := range pals {
		if len(pal) > 0xFFFF {
			return 0, imgerr.New(op, imgerr.KindUnsupported, "palette %d has %d colors, at most 65535 fit", i, len(pal))
		}
		appendLogPalette(&body, pal)
		colors += int64(len(pal))
	}

	le := binary.LittleEndian
	out := make([]byte, 0, 8+body.Len())
	out = append(out, riffID[:]...)
	out = le.AppendUint32(out, uint32(body.Len()))
	out = append(out, body.Bytes()...)

	if n, err := w.Write(out); err != nil {
		return 0, imgerr.Wrap(op, imgerr.KindIO, err)
	} else if n != len(out) {
		return 0, imgerr.New(op, imgerr.KindIO, "short write, %d of %d bytes", n, len(out))
	}
	return colors, nil
}

func appendLogPalette(b *bytes.Buffer, pal Palette) {
	le := binary.LittleEndian
	size := 4 + len(pal)*entrySize

	b.Write(dataChunk[:])
	b.Write(le.AppendUint32(nil, uint32(size)))
	b.Write(le.AppendUint16(nil, palVersion))
	b.Write(le.AppendUint16(nil, uint16(len(pal))))
	for _, c := range pal {
		b.Write([]byte{c.R, c.G, c.B, 0})
	}
}
