package floats_test

import (
	"testing"

	"example.com/robotino-nav/base/floats"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name      string
		input     []float64
		want      float64
		wantPanic bool
	}{
		{
			name:      "Nil slice",
			input:     nil,
			wantPanic: true,
		},
		{
			name:      "Empty slice",
			input:     []float64{},
			wantPanic: true,
		},
		{
			name:  "Single element",
			input: []float64{42.0},
			want:  42.0,
		},
		{
			name:  "Two elements",
			input: []float64{1.0, 2.0},
			want:  1.5,
		},
		{
			name:  "Three elements",
			input: []float64{3.0, 1.0, 2.0},
			want:  2.0,
		},
		{
			name:  "Four elements",
			input: []float64{4.0, 1.0, 3.0, 2.0},
			want:  2.5,
		},
		{
			name:  "Duplicate values",
			input: []float64{1.0, 2.0, 2.0, 3.0, 3.0, 4.0},
			want:  2.5,
		},
		{
			name:  "Negative values",
			input: []float64{-1.0, -2.0, -3.0, -4.0, -5.0},
			want:  -3.0,
		},
		{
			name:  "Mixed positive and negative values",
			input: []float64{-1.0, 2.0, -3.0, 4.0, -5.0, 6.0},
			want:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("expected panic, got none")
					}
				}()
				_ = floats.Median(tt.input)
			} else {
				got := floats.Median(tt.input)
				if got != tt.want {
					t.Errorf("Median(%v) = %v, want %v", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestMin(t *testing.T) {
	tests := []struct {
		x, y, want float64
	}{
		{1.0, 2.0, 1.0},
		{2.0, 1.0, 1.0},
		{-1.0, 1.0, -1.0},
		{0.0, 0.0, 0.0},
		{0.19, 0.41, 0.19},
	}

	for _, tt := range tests {
		got := floats.Min(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("Min(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		x, lo, hi float64
		want      float64
		wantPanic bool
	}{
		{name: "Below lower bound", x: -0.5, lo: -0.3, hi: 0.3, want: -0.3},
		{name: "Above upper bound", x: 0.5, lo: -0.3, hi: 0.3, want: 0.3},
		{name: "Within bounds", x: 0.1, lo: -0.3, hi: 0.3, want: 0.1},
		{name: "At lower bound", x: -0.3, lo: -0.3, hi: 0.3, want: -0.3},
		{name: "At upper bound", x: 0.3, lo: -0.3, hi: 0.3, want: 0.3},
		{name: "Zero", x: 0.0, lo: -0.3, hi: 0.3, want: 0.0},
		{name: "Inverted bounds", x: 0.0, lo: 1.0, hi: -1.0, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("expected panic, got none")
					}
				}()
				_ = floats.Clamp(tt.x, tt.lo, tt.hi)
			} else {
				got := floats.Clamp(tt.x, tt.lo, tt.hi)
				if got != tt.want {
					t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
				}
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	for _, x := range []float64{-1.0, -0.3, -0.1, 0.0, 0.1, 0.3, 1.0} {
		once := floats.Clamp(x, -0.3, 0.3)
		twice := floats.Clamp(once, -0.3, 0.3)
		if once != twice {
			t.Errorf("Clamp(Clamp(%v)) = %v, want %v", x, twice, once)
		}
	}
}
