// Package scene loads YAML scene descriptions and draws them onto a
// backbuffer.
//
// A scene names its canvas size, an optional background and RIFF palette,
// and a list of shapes drawn in order:
//
//	width: 320
//	height: 200
//	background: darkgray
//	palette: colors.pal
//	shapes:
//	  - kind: fill_rect
//	    rect: [10, 10, 100, 50]
//	    color: red
//	    alpha: 50
//	  - kind: circle
//	    center: [160, 100]
//	    radius: 40
//	    thickness: 3
//	    color: "#ffd700"
//	  - kind: image
//	    image: sprite.bmp
//	    at: [0, 0]
//
// Colors are names, hex values or indexes into the palette.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"picasso/byteio"
	"picasso/internal/logging"
	"picasso/raster"
)

// Shape kinds.
const (
	KindClear      = "clear"
	KindFillRect   = "fill_rect"
	KindRect       = "rect"
	KindFillCircle = "fill_circle"
	KindCircle     = "circle"
	KindLine       = "line"
	KindImage      = "image"
)

// Scene is a parsed scene file.
type Scene struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Background string  `yaml:"background,omitempty"`
	Palette    string  `yaml:"palette,omitempty"`
	Shapes     []Shape `yaml:"shapes"`

	// Dir resolves relative palette and image paths. Load sets it to the
	// directory of the scene file.
	Dir string `yaml:"-"`
}

// Shape is one draw call. Which fields apply depends on Kind.
type Shape struct {
	Kind string `yaml:"kind"`

	// Rect is x, y, width, height for fill_rect and rect, and the
	// destination of a scaled image.
	Rect      []int `yaml:"rect,omitempty"`
	Center    []int `yaml:"center,omitempty"`
	Radius    int   `yaml:"radius,omitempty"`
	Thickness int   `yaml:"thickness,omitempty"`
	From      []int `yaml:"from,omitempty"`
	To        []int `yaml:"to,omitempty"`

	Color string `yaml:"color,omitempty"`
	// Alpha is the opacity in percent. Unset means the color's own alpha.
	Alpha *int `yaml:"alpha,omitempty"`

	Image string `yaml:"image,omitempty"`
	At    []int `yaml:"at,omitempty"`
	// Src selects the part of the image scaled into Rect.
	Src []int `yaml:"src,omitempty"`
}

// Parse decodes a scene from YAML. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scene")
		}
		return nil, fmt.Errorf("could not parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := byteio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid scene %q: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Validate checks the canvas size and the geometry of every shape. Colors
// and files are checked when the scene is drawn.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", s.Width, s.Height)
	}

	for i, sh := range s.Shapes {
		if err := sh.validate(); err != nil {
			return fmt.Errorf("shape %d (%s): %w", i, sh.Kind, err)
		}
	}
	return nil
}

func (sh Shape) validate() error {
	need := func(name string, v []int, n int) error {
		if len(v) != n {
			return fmt.Errorf("%s needs %d values, got %d", name, n, len(v))
		}
		return nil
	}

	switch sh.Kind {
	case KindClear:
		return nil
	case KindFillRect:
		return need("rect", sh.Rect, 4)
	case KindRect:
		if sh.Thickness <= 0 {
			return fmt.Errorf("invalid thickness %d", sh.Thickness)
		}
		return need("rect", sh.Rect, 4)
	case KindFillCircle, KindCircle:
		if sh.Radius < 0 {
			return fmt.Errorf("invalid radius %d", sh.Radius)
		}
		if sh.Kind == KindCircle && sh.Thickness <= 0 {
			return fmt.Errorf("invalid thickness %d", sh.Thickness)
		}
		return need("center", sh.Center, 2)
	case KindLine:
		if err := need("from", sh.From, 2); err != nil {
			return err
		}
		return need("to", sh.To, 2)
	case KindImage:
		if sh.Image == "" {
			return fmt.Errorf("missing image path")
		}
		if sh.Src != nil || sh.Rect != nil {
			if err := need("src", sh.Src, 4); err != nil {
				return err
			}
			return need("rect", sh.Rect, 4)
		}
		return need("at", sh.At, 2)
	}
	return fmt.Errorf("unknown shape kind %q", sh.Kind)
}

// Option configures rendering.
type Option func(*options)

type options struct {
	logger *slog.Logger
	loader Loader
}

// Loader reads the image file at path.
type Loader func(path string) (*raster.Image, error)

// WithLogger sets the logger for rendering and for the backbuffer.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLoader replaces LoadImage as the way image shapes are read.
func WithLoader(l Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

func buildOptions(opts []Option) options {
	o := options{loader: LoadImage}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.Or(o.logger)
	return o
}

func rect(v []int) raster.Rect {
	return raster.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}
