// Package byteio holds the little-endian scalar readers and whole-file
// helpers the picasso decoders are built on.
package byteio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"picasso/imgerr"
)

// U8 returns b[0].
func U8(b []byte) uint8 {
	return b[0]
}

// U16LE reads a little-endian uint16 from the start of b.
func U16LE(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from the start of b.
func U32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// S32LE reads a little-endian int32 from the start of b. The bit pattern is
// preserved.
func S32LE(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadFile reads the whole file at path. The size is taken by seeking to the
// end; a read that returns fewer bytes than that size is an error.
func ReadFile(path string) ([]byte, error) {
	const op = "byteio.ReadFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not open %q: %w", path, err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close file", "name", path, "error", closeErr)
		}
	}()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not seek %q: %w", path, err))
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not rewind %q: %w", path, err))
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return nil, imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("read only %d/%d bytes of %q: %w", n, size, path, err))
	}

	return buf, nil
}

// WriteFile creates or truncates path and writes data to it. Writing fewer
// than len(data) bytes is an error.
func WriteFile(path string, data []byte) (err error) {
	const op = "byteio.WriteFile"

	f, err := os.Create(path)
	if err != nil {
		return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not create %q: %w", path, err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not close %q: %w", path, closeErr))
		}
	}()

	n, err := f.Write(data)
	if err != nil {
		return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not write %q: %w", path, err))
	} else if n != len(data) {
		return imgerr.New(op, imgerr.KindIO, "wrote only %d/%d bytes to %q", n, len(data), path)
	}

	if err = f.Sync(); err != nil {
		return imgerr.Wrap(op, imgerr.KindIO, fmt.Errorf("could not flush %q: %w", path, err))
	}
	return nil
}
