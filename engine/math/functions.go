package math

import (
	"golang.org/x/exp/rand"
)

// NewRand returns a deterministic generator, used where reproducible values
// are needed (fixtures, property tests).
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ------------------------------------------
// Vector 2
// ------------------------------------------

// Elements returns the components in declaration order.
func (v Vec2) Elements() []float32 {
	return []float32{v.X, v.Y}
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{
		X: x,
		Y: y,
		Z: z,
	}
}

func (v Vec3) Elements() []float32 {
	return []float32{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

/**
 * @brief Creates and returns a new 4-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @param w The w value.
 * @return A new 4-element vector.
 */
func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

func (v Vec4) Elements() []float32 {
	return []float32{v.X, v.Y, v.Z, v.W}
}
