package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestNewImage(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, channels int
		ok                      bool
	}{
		{"rgb", 3, 2, 3, true},
		{"rgba", 3, 2, 4, true},
		{"zero width", 0, 2, 4, false},
		{"negative height", 3, -1, 4, false},
		{"two channels", 3, 2, 2, false},
		{"five channels", 3, 2, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImage(tt.width, tt.height, tt.channels)
			if !tt.ok {
				if err == nil || img != nil {
					t.Fatalf("NewImage(%d, %d, %d) = %v, %v; want nil, error", tt.width, tt.height, tt.channels, img, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewImage: %v", err)
			}
			if img.Stride != tt.width*tt.channels {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.width*tt.channels)
			}
			if len(img.Pix) != img.Stride*tt.height {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), img.Stride*tt.height)
			}
			for i, v := range img.Pix {
				if v != 0 {
					t.Fatalf("Pix[%d] = %d, want 0", i, v)
				}
			}
		})
	}
}

func TestReleaseNil(t *testing.T) {
	var img *Image
	img.Release()

	img, _ = NewImage(2, 2, 3)
	img.Release()
	if img.Pix != nil {
		t.Error("Release did not drop the buffer")
	}
}

func TestPixelsRestartable(t *testing.T) {
	img, _ := NewImage(3, 2, 4)
	seq := img.Pixels()

	for px := range seq {
		px.Ch[0] = uint8(px.Y*10 + px.X)
	}

	var count int
	for px := range seq {
		if px.Ch[0] != uint8(px.Y*10+px.X) {
			t.Errorf("pixel (%d,%d) = %d, want %d", px.X, px.Y, px.Ch[0], px.Y*10+px.X)
		}
		if len(px.Ch) != 4 {
			t.Errorf("len(Ch) = %d, want 4", len(px.Ch))
		}
		count++
	}
	if count != 6 {
		t.Errorf("second pass visited %d pixels, want 6", count)
	}

	for range seq {
		break
	}
}

func TestCopyToNearestNeighbor(t *testing.T) {
	src, _ := NewImage(2, 2, 3)
	colors := [][3]uint8{{10, 0, 0}, {20, 0, 0}, {30, 0, 0}, {40, 0, 0}}
	for i, c := range colors {
		copy(src.Pix[i*3:], c[:])
	}

	dst, _ := NewImage(4, 4, 3)
	src.CopyTo(dst)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := colors[(y/2)*2+x/2][0]
			if got := dst.Pix[dst.PixOffset(x, y)]; got != want {
				t.Errorf("dst(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}

	small, _ := NewImage(1, 1, 3)
	src.CopyTo(small)
	if small.Pix[0] != 10 {
		t.Errorf("downscale picked %d, want 10", small.Pix[0])
	}
}

func TestCopyToMixedChannels(t *testing.T) {
	src, _ := NewImage(1, 1, 3)
	copy(src.Pix, []uint8{1, 2, 3})
	dst, _ := NewImage(1, 1, 4)
	dst.Pix[3] = 0xFF

	src.CopyTo(dst)
	want := []uint8{1, 2, 3, 0xFF}
	for i := range want {
		if dst.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, dst.Pix[i], want[i])
		}
	}
}

func TestRGBA(t *testing.T) {
	src, _ := NewImage(1, 1, 3)
	copy(src.Pix, []uint8{0xFF, 0, 0})

	dst, err := src.RGBA()
	if err != nil {
		t.Fatalf("RGBA: %v", err)
	}
	if dst.Channels != 4 || dst.Stride != 4 {
		t.Fatalf("channels %d stride %d, want 4 and 4", dst.Channels, dst.Stride)
	}

	b, _ := NewBackbuffer(2, 1)
	b.BlitRect(dst, Rect{Width: 1, Height: 1}, Rect{Width: 1, Height: 1})
	b.BlitBitmap(src, 1, 0)
	red := Color{R: 0xFF, A: 0xFF}.Pack()
	if b.Pix[0] != red || b.Pix[1] != red {
		t.Errorf("pixels = %v, %v; want both red", Unpack(b.Pix[0]), Unpack(b.Pix[1]))
	}

	if same, _ := dst.RGBA(); same != dst {
		t.Error("RGBA of a 4-channel image made a copy")
	}
	if _, err := (*Image)(nil).RGBA(); err == nil {
		t.Error("RGBA of nil image succeeded")
	}
}

func TestImageAt(t *testing.T) {
	img, _ := NewImage(2, 1, 3)
	copy(img.Pix, []uint8{1, 2, 3, 4, 5, 6})

	got := img.At(1, 0)
	want := color.NRGBA{R: 4, G: 5, B: 6, A: 0xFF}
	if got != want {
		t.Errorf("At(1,0) = %v, want %v", got, want)
	}
	if img.At(5, 5) != (color.NRGBA{}) {
		t.Error("At outside bounds should be transparent")
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})
	src.Set(6, 5, color.RGBA{G: 255, A: 255})

	img, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if img.Width != 2 || img.Height != 1 || img.Channels != 4 {
		t.Fatalf("got %dx%dx%d, want 2x1x4", img.Width, img.Height, img.Channels)
	}
	if c := img.ColorAt(0, 0, OrderRGB); c != (Color{255, 0, 0, 255}) {
		t.Errorf("pixel 0 = %v", c)
	}
	if c := img.ColorAt(1, 0, OrderRGB); c != (Color{0, 255, 0, 255}) {
		t.Errorf("pixel 1 = %v", c)
	}

	if _, err := FromImage(image.NewRGBA(image.Rectangle{})); err == nil {
		t.Error("FromImage(empty) succeeded")
	}
}
