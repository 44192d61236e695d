package gamemath

import (
	"math"
	"testing"
)

func TestFacingFromAngle(t *testing.T) {
	cases := []struct {
		angle  float64
		facing int
	}{
		{0, 0},
		{10, 0},
		{12, 1},
		{22.5, 1},
		{45, 2},
		{90, 4},
		{180, 8},
		{270, 12},
		{350, 0},
		{360, 0},
	}
	for _, c := range cases {
		if got := FacingFromAngle(c.angle); got != c.facing {
			t.Errorf("FacingFromAngle(%v) = %d, want %d", c.angle, got, c.facing)
		}
	}
}

func TestFacingFromAngleAlwaysInRange(t *testing.T) {
	for angle := -720; angle <= 720; angle++ {
		facing := FacingFromAngle(float64(angle))
		if facing < 0 || facing >= Rotations {
			t.Fatalf("FacingFromAngle(%d) = %d out of range", angle, facing)
		}
	}
}

func TestCalculateAngle(t *testing.T) {
	cases := []struct {
		sx, sy, ex, ey float64
		want           float64
	}{
		{0, 0, 0, 10, 0},    // due north
		{0, 0, -10, 0, 90},  // due west
		{0, 0, 0, -10, 180}, // due south
		{0, 0, 10, 0, 270},  // due east
	}
	for _, c := range cases {
		got := CalculateAngle(c.sx, c.sy, c.ex, c.ey)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("CalculateAngle(%v,%v -> %v,%v) = %v, want %v", c.sx, c.sy, c.ex, c.ey, got, c.want)
		}
	}
}

func TestVectorFromAngleRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, 45, 90, 135, 200, 275, 359} {
		v := VectorFromAngle(angle, 5)
		if math.Abs(v.Length()-5) > 1e-9 {
			t.Fatalf("vector length for angle %v = %v, want 5", angle, v.Length())
		}
		back := CalculateAngle(0, 0, v.X, v.Y)
		if math.Abs(back-angle) > 1e-6 {
			t.Errorf("angle %v decomposed and recomposed to %v", angle, back)
		}
	}
}

func TestCircularAreaMatrix(t *testing.T) {
	counted := func(r int) int {
		radius := float64(r) * 1.6
		count := 0
		for x := -r; x <= r; x++ {
			for y := -r; y <= r; y++ {
				if float64(absInt(x)+absInt(y)) < radius {
					count++
				}
			}
		}
		return count
	}
	for _, r := range []int{1, 2, 3, 5, 8} {
		matrix := CircularAreaMatrix(r)
		if len(matrix) != counted(r) {
			t.Errorf("CircularAreaMatrix(%d) has %d offsets, want %d", r, len(matrix), counted(r))
		}
		seen := make(map[GridOffset]struct{})
		for _, offset := range matrix {
			if _, dup := seen[offset]; dup {
				t.Fatalf("duplicate offset %v for radius %d", offset, r)
			}
			seen[offset] = struct{}{}
			if absInt(offset.DX) > r || absInt(offset.DY) > r {
				t.Fatalf("offset %v outside square of radius %d", offset, r)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 3, 0) != 3 {
		t.Error("Clamp should cap at maximum")
	}
	if Clamp(-1, 3, 0) != 0 {
		t.Error("Clamp should floor at minimum")
	}
	if Clamp(2, 3, 0) != 2 {
		t.Error("Clamp should pass values in range")
	}
}
