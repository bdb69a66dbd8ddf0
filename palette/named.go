// Package palette provides the named colors used across picasso, hex color
// parsing and Microsoft RIFF palette (.pal) files.
package palette

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"picasso/raster"
)

// Named colors.
var (
	Blue      = raster.Color{R: 0x0C, G: 0x10, B: 0x89, A: 0xFF}
	Green     = raster.Color{R: 0x31, G: 0x85, B: 0x20, A: 0xFF}
	Red       = raster.Color{R: 0xCC, G: 0x00, B: 0x03, A: 0xFF}
	Pink      = raster.Color{R: 0xCE, G: 0x7A, B: 0xDF, A: 0xFF}
	White     = raster.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Black     = raster.Color{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	Gray      = raster.Color{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
	LightGray = raster.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	DarkGray  = raster.Color{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	Orange    = raster.Color{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}
	Yellow    = raster.Color{R: 0xF6, G: 0xDB, B: 0x0E, A: 0xFF}
	Brown     = raster.Color{R: 0x80, G: 0x60, B: 0x20, A: 0xFF}
	Gold      = raster.Color{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}
	Cyan      = raster.Color{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
	Magenta   = raster.Color{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}
	Purple    = raster.Color{R: 0x80, G: 0x00, B: 0x80, A: 0xFF}
	Navy      = raster.Color{R: 0x00, G: 0x00, B: 0x80, A: 0xFF}
	Teal      = raster.Color{R: 0x00, G: 0x80, B: 0x80, A: 0xFF}
)

type entry struct {
	name  string
	color raster.Color
}

// named keeps a stable order so Names and Name are deterministic.
var named = []entry{
	{"blue", Blue},
	{"green", Green},
	{"red", Red},
	{"pink", Pink},
	{"white", White},
	{"black", Black},
	{"gray", Gray},
	{"lightgray", LightGray},
	{"darkgray", DarkGray},
	{"orange", Orange},
	{"yellow", Yellow},
	{"brown", Brown},
	{"gold", Gold},
	{"cyan", Cyan},
	{"magenta", Magenta},
	{"purple", Purple},
	{"navy", Navy},
	{"teal", Teal},
}

// Names returns the names of all named colors.
func Names() []string {
	res := make([]string, len(named))
	for i, e := range named {
		res[i] = e.name
	}
	return res
}

// Lookup returns the named color called name. Case, spaces, dashes and
// underscores are ignored, so "Dark Gray" and "dark_gray" both match.
func Lookup(name string) (raster.Color, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))

	i := slices.IndexFunc(named, func(e entry) bool { return e.name == key })
	if i < 0 {
		return raster.Color{}, false
	}
	return named[i].color, true
}

// Name returns the name of c, or its hex form when c is not a named color.
func Name(c raster.Color) string {
	for _, e := range named {
		if e.color == c {
			return e.name
		}
	}
	return c.String()
}

// ParseHex reads a color written as #rgb, #rgba, #rrggbb or #rrggbbaa.
// Colors without an alpha component are opaque.
func ParseHex(s string) (raster.Color, error) {
	if !strings.HasPrefix(s, "#") {
		return raster.Color{}, fmt.Errorf("color %q does not start with '#'", s)
	}

	digits := s[1:]
	var short bool
	switch len(digits) {
	case 3, 4:
		short = true
	case 6, 8:
	default:
		return raster.Color{}, fmt.Errorf("invalid color length %d in %q", len(digits), s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return raster.Color{}, fmt.Errorf("could not read color %q: %w", s, err)
	}

	var ch [4]uint8
	n := len(digits)
	if short {
		for i := range n {
			nib := uint8(v>>(4*(n-1-i))) & 0xF
			ch[i] = nib | nib<<4
		}
	} else {
		n /= 2
		for i := range n {
			ch[i] = uint8(v >> (8 * (n - 1 - i)))
		}
	}
	if n == 3 {
		ch[3] = 0xFF
	}

	return raster.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// Resolve turns a color reference into a color. A reference is a color name,
// a hex color, or a decimal index into pal.
func Resolve(ref string, pal Palette) (raster.Color, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return raster.Color{}, fmt.Errorf("empty color reference")
	case strings.HasPrefix(ref, "#"):
		return ParseHex(ref)
	case ref[0] >= '0' && ref[0] <= '9':
		i, err := strconv.Atoi(ref)
		if err != nil {
			return raster.Color{}, fmt.Errorf("invalid palette index %q: %w", ref, err)
		} else if i >= len(pal) {
			return raster.Color{}, fmt.Errorf("palette index %d out of range, palette has %d colors", i, len(pal))
		}
		return pal[i], nil
	}

	if c, ok := Lookup(ref); ok {
		return c, nil
	}
	return raster.Color{}, fmt.Errorf("unknown color %q", ref)
}
