package platform

import (
	"errors"
	"fmt"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		b    Rect
		want Rect
	}{
		{"inside", Rect{X: 10, Y: 10, Width: 20, Height: 20}, Rect{X: 10, Y: 10, Width: 20, Height: 20}},
		{"partial", Rect{X: 50, Y: 80, Width: 100, Height: 100}, Rect{X: 50, Y: 80, Width: 50, Height: 20}},
		{"touching edge", Rect{X: 100, Y: 0, Width: 10, Height: 10}, Rect{}},
		{"disjoint", Rect{X: 200, Y: 200, Width: 10, Height: 10}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersect(tt.b); got != tt.want {
				t.Fatalf("Intersect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectWithin(t *testing.T) {
	outer := Rect{X: 10, Y: 10, Width: 100, Height: 50}
	if !(Rect{X: 10, Y: 10, Width: 100, Height: 50}).Within(outer) {
		t.Fatalf("expected rect to be within itself")
	}
	if (Rect{X: 9, Y: 10, Width: 10, Height: 10}).Within(outer) {
		t.Fatalf("expected rect starting left of outer to be outside")
	}
}

func TestIsConnectionLost(t *testing.T) {
	lost := &ConnectionError{Op: "wait", Err: errors.New("eof"), Lost: true}
	if !IsConnectionLost(fmt.Errorf("loop: %w", lost)) {
		t.Fatalf("expected wrapped lost error to be detected")
	}
	if IsConnectionLost(&ConnectionError{Op: "map", Err: errors.New("BadWindow")}) {
		t.Fatalf("expected recoverable error not to be lost")
	}
	if IsConnectionLost(errors.New("plain")) {
		t.Fatalf("expected plain error not to be lost")
	}
}
