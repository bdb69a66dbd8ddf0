package ppm

import (
	"bytes"
	"image"

	"picasso/byteio"
)

// Load reads and decodes the P6 file at path.
func Load(path string, opts ...Option) (*PPM, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	p, err := Decode(bytes.NewReader(data), opts...)
	if err != nil {
		o.logger.Error("could not load PPM", "file", path, "error", err)
		return nil, err
	}
	o.logger.Info("loaded PPM image", "file", path, "width", p.Width, "height", p.Height)
	return p, nil
}

// Save encodes m and writes it to path.
func Save(path string, m image.Image, opts ...Option) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m, opts...); err != nil {
		return err
	}
	if err := byteio.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}

	r := m.Bounds()
	buildOptions(opts).logger.Info("saved PPM image", "file", path, "width", r.Dx(), "height", r.Dy())
	return nil
}
