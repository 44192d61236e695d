package gamemath

import "math"

// Rotations is how many discrete directions sprites can face.
const Rotations = 16

// CircleSlice is the angular width of a single rotation step in degrees.
const CircleSlice = 360.0 / Rotations

// RotationStep is the half-width of a rotation slice: the distance from a
// slice's center to its edge.
const RotationStep = CircleSlice / 2

// FacingTable maps every integer angle in [0, 360] to the nearest of the 16
// discrete facing directions. Slice 0 is centered at 0/360 degrees.
var FacingTable = precalculateFacingTable()

func precalculateFacingTable() [361]int {
	var table [361]int
	for i := 0; i <= 360; i++ {
		slice := int(math.Floor((float64(i) + RotationStep) / CircleSlice))
		table[i] = slice % Rotations
	}
	return table
}

// FacingFromAngle returns the discrete facing direction for an angle in degrees.
func FacingFromAngle(angle float64) int {
	a := int(angle) % 360
	if a < 0 {
		a += 360
	}
	return FacingTable[a]
}

// CalculateAngle returns the bearing in degrees from (sx, sy) to (ex, ey),
// measured counterclockwise from north (west is 90, east 270), in the range
// [0, 360).
func CalculateAngle(sx, sy, ex, ey float64) float64 {
	rads := math.Atan2(ex-sx, ey-sy)
	deg := math.Mod(-rads*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// VectorFromAngle decomposes a bearing and scalar speed into x and y velocity
// parts. The bearing uses the same counterclockwise-from-north convention as
// CalculateAngle.
func VectorFromAngle(angle, scalar float64) Vec2 {
	rad := -angle * math.Pi / 180
	return Vec2{X: math.Sin(rad) * scalar, Y: math.Cos(rad) * scalar}
}

// GridOffset is a relative (dx, dy) step inside a precalculated area matrix.
type GridOffset struct {
	DX, DY int
}

// CircularAreaMatrix enumerates the offsets of a pseudo-circular area of the
// given radius: all cells of the [-r, r] square whose Manhattan distance from
// the center is below r*1.6. Entities cache the matrix for their visibility
// radius and translate it by their current grid each time they move.
func CircularAreaMatrix(maxDistance int) []GridOffset {
	radius := float64(maxDistance) * 1.6
	var area []GridOffset
	for x := -maxDistance; x <= maxDistance; x++ {
		distX := absInt(x)
		for y := -maxDistance; y <= maxDistance; y++ {
			if float64(distX+absInt(y)) < radius {
				area = append(area, GridOffset{DX: x, DY: y})
			}
		}
	}
	return area
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
