package raster

import (
	"errors"
	"testing"
)

func newTestBuffer(t *testing.T, w, h int) *Backbuffer {
	t.Helper()
	b, err := NewBackbuffer(w, h)
	if err != nil {
		t.Fatalf("NewBackbuffer(%d, %d): %v", w, h, err)
	}
	return b
}

// touched returns the bounds of every pixel that differs from bg.
func touched(b *Backbuffer, bg uint32) (Bounds, int) {
	box := Bounds{X0: b.Width, Y0: b.Height}
	var n int
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Pitch+x] == bg {
				continue
			}
			n++
			box.X0 = min(box.X0, x)
			box.Y0 = min(box.Y0, y)
			box.X1 = max(box.X1, x+1)
			box.Y1 = max(box.Y1, y+1)
		}
	}
	return box, n
}

func TestNewBackbuffer(t *testing.T) {
	b := newTestBuffer(t, 8, 4)
	if b.Pitch != 8 || len(b.Pix) != 32 {
		t.Errorf("pitch %d len %d, want 8 and 32", b.Pitch, len(b.Pix))
	}

	for _, sz := range [][2]int{{0, 4}, {4, 0}, {-1, 1}} {
		if _, err := NewBackbuffer(sz[0], sz[1]); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("NewBackbuffer(%d, %d) error = %v, want ErrInvalidImage", sz[0], sz[1], err)
		}
	}
}

func TestClear(t *testing.T) {
	b := newTestBuffer(t, 3, 3)
	b.Clear()
	for i, p := range b.Pix {
		if p != Background.Pack() {
			t.Fatalf("Pix[%d] = %#08x, want %#08x", i, p, Background.Pack())
		}
	}

	var nb *Backbuffer
	nb.Clear()
	b.Release()
	b.Clear()
}

func TestBackbufferImage(t *testing.T) {
	b := newTestBuffer(t, 2, 1)
	b.Pix[1] = Color{1, 2, 3, 4}.Pack()

	img := b.Image()
	if img.Channels != 4 {
		t.Fatalf("channels = %d, want 4", img.Channels)
	}
	if c := img.ColorAt(1, 0, OrderRGB); c != (Color{1, 2, 3, 4}) {
		t.Errorf("pixel = %v, want {1 2 3 4}", c)
	}
}

type recordPresenter struct {
	pix                  []uint32
	width, height, pitch int
}

func (r *recordPresenter) Present(pix []uint32, width, height, pitch int) error {
	r.pix, r.width, r.height, r.pitch = pix, width, height, pitch
	return nil
}

func TestPresent(t *testing.T) {
	b := newTestBuffer(t, 4, 2)
	var p recordPresenter
	if err := b.Present(&p); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if p.width != 4 || p.height != 2 || p.pitch != 4 || len(p.pix) != 8 {
		t.Errorf("presented %dx%d pitch %d len %d", p.width, p.height, p.pitch, len(p.pix))
	}
}
