package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. Component order is (x, y, z, w). */
type Quaternion Vec4

/** @brief A 4x4 matrix stored as a flat 16-element array in column-major order. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief A pose in 3-space: a position, an orientation and the composed
 * matrix translate(position) * rotation(orientation). The decomposed parts
 * and the matrix always agree; callers may rely on either form.
 */
type RigidTransform struct {
	/** @brief The composed pose matrix, column-major. */
	Matrix Mat4
	/** @brief The position component of the pose. */
	Position Vec3
	/** @brief The orientation component of the pose, as a unit quaternion. */
	Orientation Quaternion
}
