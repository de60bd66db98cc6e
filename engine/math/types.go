package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief a 4x4 matrix stored row by row, as it is laid out in a constant buffer's system memory. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}
