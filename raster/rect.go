package raster

// Rect is an axis-aligned rectangle. Width and Height may be negative, in
// which case the rectangle extends left or up from (X, Y).
type Rect struct {
	X, Y          int
	Width, Height int
}

// Normalize folds negative extents into the origin so that the returned
// rectangle covers the same pixels with Width >= 0 and Height >= 0.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Bounds is a half-open pixel range [X0,X1) x [Y0,Y1).
type Bounds struct {
	X0, Y0, X1, Y1 int
}

// Contains reports whether (x, y) lies inside b.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X0 && x < b.X1 && y >= b.Y0 && y < b.Y1
}

// Clip intersects r with a width x height surface. ok is false when r has
// no extent or lies entirely outside the surface; callers must then draw
// nothing. r is not normalized here.
func (r Rect) Clip(width, height int) (b Bounds, ok bool) {
	if r.Width == 0 || r.Height == 0 {
		return Bounds{}, false
	}
	if r.X >= width || r.Y >= height || r.X+r.Width <= 0 || r.Y+r.Height <= 0 {
		return Bounds{}, false
	}

	return Bounds{
		X0: max(r.X, 0),
		Y0: max(r.Y, 0),
		X1: min(r.X+r.Width, width),
		Y1: min(r.Y+r.Height, height),
	}, true
}
