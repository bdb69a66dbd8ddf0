package raster

// CircleTolerance is the extra padding, beyond the radius, scanned around a
// circle's center. The scanned box is radius+CircleTolerance+1 pixels from
// the center on every side.
const CircleTolerance = 2

// FillRect blends c over every pixel of r.
func (b *Backbuffer) FillRect(r Rect, c Color) {
	if !b.usable() {
		return
	}
	bounds, ok := r.Normalize().Clip(b.Width, b.Height)
	if !ok {
		return
	}

	p := c.Pack()
	for y := bounds.Y0; y < bounds.Y1; y++ {
		for x := bounds.X0; x < bounds.X1; x++ {
			b.blendAt(x, y, p)
		}
	}
}

// DrawRect blends c over a border of the given thickness inside outer. When
// the border is thick enough to leave no interior the whole rectangle is
// filled.
func (b *Backbuffer) DrawRect(outer Rect, thickness int, c Color) {
	if !b.usable() || thickness <= 0 {
		return
	}

	outer = outer.Normalize()
	inner := Rect{
		X:      outer.X + thickness,
		Y:      outer.Y + thickness,
		Width:  outer.Width - 2*thickness,
		Height: outer.Height - 2*thickness,
	}

	ob, ok := outer.Clip(b.Width, b.Height)
	if !ok {
		return
	}
	ib, ok := inner.Clip(b.Width, b.Height)
	if !ok {
		ib = Bounds{}
	}

	p := c.Pack()
	for y := ob.Y0; y < ob.Y1; y++ {
		for x := ob.X0; x < ob.X1; x++ {
			if ib.Contains(x, y) {
				continue
			}
			b.blendAt(x, y, p)
		}
	}
}

// CircleBounds returns the box scanned when drawing a circle of the given
// radius around (x0, y0).
func CircleBounds(x0, y0, radius int) Rect {
	pad := radius + CircleTolerance + 1
	return Rect{
		X:      x0 - pad,
		Y:      y0 - pad,
		Width:  pad*2 + 1,
		Height: pad*2 + 1,
	}
}

// FillCircle blends c over every pixel whose squared distance from
// (x0, y0) is at most radius²+radius.
func (b *Backbuffer) FillCircle(x0, y0, radius int, c Color) {
	b.circle(x0, y0, radius, c, func(d2 int) bool {
		return d2 <= radius*radius+radius
	})
}

// DrawCircle blends c over a ring of the given thickness: pixels whose
// squared distance from (x0, y0) lies in [(radius-thickness)²+radius,
// radius²+radius].
func (b *Backbuffer) DrawCircle(x0, y0, radius, thickness int, c Color) {
	outer := radius*radius + radius
	inner := (radius-thickness)*(radius-thickness) + radius
	b.circle(x0, y0, radius, c, func(d2 int) bool {
		return d2 >= inner && d2 <= outer
	})
}

func (b *Backbuffer) circle(x0, y0, radius int, c Color, inside func(d2 int) bool) {
	if !b.usable() {
		return
	}
	bounds, ok := CircleBounds(x0, y0, radius).Clip(b.Width, b.Height)
	if !ok {
		return
	}

	p := c.Pack()
	for y := bounds.Y0; y < bounds.Y1; y++ {
		dy := y - y0
		for x := bounds.X0; x < bounds.X1; x++ {
			dx := x - x0
			if inside(dx*dx + dy*dy) {
				b.blendAt(x, y, p)
			}
		}
	}
}

// DrawLine stores c, without blending, along the Bresenham line from
// (x0, y0) towards (x1, y1). The end point with the larger coordinate on the
// major axis is not drawn. Pixels outside the backbuffer are skipped.
func (b *Backbuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	if !b.usable() {
		return
	}

	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	dy := abs(y1 - y0)
	step := 1
	if y1 < y0 {
		step = -1
	}

	p := c.Pack()
	d := 2*dy - dx
	y := y0
	for x := x0; x < x1; x++ {
		px, py := x, y
		if steep {
			px, py = y, x
		}
		if px >= 0 && px < b.Width && py >= 0 && py < b.Height {
			b.Pix[py*b.Pitch+px] = p
		}
		if d > 0 {
			y += step
			d -= 2 * dx
		}
		d += 2 * dy
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
