package raster

// Blend composites the packed pixel src over dst. Channels are combined with
// truncating integer division. The result is always fully opaque.
func Blend(dst, src uint32) uint32 {
	sa := src >> 24
	switch sa {
	case 0xFF:
		return src
	case 0:
		return dst
	}

	inv := 0xFF - sa
	r := ((src&0xFF)*sa + (dst&0xFF)*inv) / 0xFF
	g := ((src>>8&0xFF)*sa + (dst>>8&0xFF)*inv) / 0xFF
	b := ((src>>16&0xFF)*sa + (dst>>16&0xFF)*inv) / 0xFF

	return 0xFF<<24 | b<<16 | g<<8 | r
}
