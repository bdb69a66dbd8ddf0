package imgerr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"corrupt matches corrupt", New("bmp.Decode", KindCorrupt, "bad magic"), ErrCorrupt, true},
		{"corrupt is not io", New("bmp.Decode", KindCorrupt, "bad magic"), ErrIO, false},
		{"wrapped twice", fmt.Errorf("outer: %w", Wrap("ppm.Load", KindIO, io.ErrUnexpectedEOF)), ErrIO, true},
		{"underlying still reachable", Wrap("ppm.Load", KindIO, io.ErrUnexpectedEOF), io.ErrUnexpectedEOF, true},
		{"plain error", io.EOF, ErrUnsupported, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap("op", KindIO, nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("load: %w", New("ppm.Decode", KindUnsupported, "maxval %d", 65535))
	if got := KindOf(err); got != KindUnsupported {
		t.Errorf("KindOf() = %v, want %v", got, KindUnsupported)
	}
	if got := KindOf(io.EOF); got != KindUnknown {
		t.Errorf("KindOf(io.EOF) = %v, want %v", got, KindUnknown)
	}
}

func TestErrorString(t *testing.T) {
	err := New("ppm.Decode", KindUnsupported, "maxval %d", 65535)
	want := "ppm.Decode [unsupported format]: maxval 65535"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if ErrCorrupt.Error() != "corrupt format" {
		t.Errorf("ErrCorrupt.Error() = %q", ErrCorrupt.Error())
	}
}
