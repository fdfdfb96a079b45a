package math

/**
 * @brief Creates a rigid transform from the given position and orientation.
 * The matrix is composed as translate(position) * rotation(orientation), so
 * the decomposed parts and the matrix always agree.
 *
 * @param position The position component.
 * @param orientation The orientation component. Normalized before use.
 * @return A new rigid transform.
 */
func NewRigidTransform(position Vec3, orientation Quaternion) RigidTransform {
	n := orientation.Normalize()
	return RigidTransform{
		Matrix:      NewMat4Translation(position).Mul(n.ToMat4()),
		Position:    position,
		Orientation: n,
	}
}

/**
 * @brief Creates an identity rigid transform: zero position, identity orientation.
 */
func NewRigidTransformIdentity() RigidTransform {
	return NewRigidTransform(NewVec3Zero(), NewQuatIdentity())
}

/**
 * @brief Creates a rigid transform by decomposing the given pose matrix.
 * The matrix must be a rigid (unscaled, unskewed) transform; the position is
 * read from the translation column and the orientation is extracted from the
 * upper 3x3 rotation block.
 *
 * @param matrix The pose matrix to decompose, column-major.
 * @return A new rigid transform.
 */
func NewRigidTransformFromMatrix(matrix Mat4) RigidTransform {
	d := matrix.Data
	position := Vec3{d[12], d[13], d[14]}

	// Shepperd's method: pick the largest diagonal term to keep the
	// extraction numerically stable.
	var q Quaternion
	trace := d[0] + d[5] + d[10]
	switch {
	case trace > 0:
		s := ksqrt(trace+1.0) * 2.0
		q = Quaternion{
			(d[6] - d[9]) / s,
			(d[8] - d[2]) / s,
			(d[1] - d[4]) / s,
			0.25 * s,
		}
	case d[0] > d[5] && d[0] > d[10]:
		s := ksqrt(1.0+d[0]-d[5]-d[10]) * 2.0
		q = Quaternion{
			0.25 * s,
			(d[4] + d[1]) / s,
			(d[8] + d[2]) / s,
			(d[6] - d[9]) / s,
		}
	case d[5] > d[10]:
		s := ksqrt(1.0+d[5]-d[0]-d[10]) * 2.0
		q = Quaternion{
			(d[4] + d[1]) / s,
			0.25 * s,
			(d[9] + d[6]) / s,
			(d[8] - d[2]) / s,
		}
	default:
		s := ksqrt(1.0+d[10]-d[0]-d[5]) * 2.0
		q = Quaternion{
			(d[8] + d[2]) / s,
			(d[9] + d[6]) / s,
			0.25 * s,
			(d[1] - d[4]) / s,
		}
	}

	return RigidTransform{
		Matrix:      matrix,
		Position:    position,
		Orientation: q.Normalize(),
	}
}

/**
 * @brief Returns the inverse of the rigid transform. Useful to obtain a view
 * matrix from an eye pose.
 */
func (rt RigidTransform) Inverse() RigidTransform {
	invOrientation := rt.Orientation.Conjugate()
	invPosition := invOrientation.Rotate(rt.Position.MulScalar(-1.0))
	return NewRigidTransform(invPosition, invOrientation)
}

/**
 * @brief Returns the result of applying the rigid transform to the given point.
 */
func (rt RigidTransform) TransformPoint(v Vec3) Vec3 {
	return v.Transform(rt.Matrix)
}

/**
 * @brief Verifies that the matrix still reconstructs, within tolerance, from
 * the decomposed position and orientation.
 *
 * @param tolerance The per-element difference tolerance.
 * @return True if the matrix and the decomposed parts agree; otherwise false.
 */
func (rt RigidTransform) Consistent(tolerance float32) bool {
	recomposed := NewMat4Translation(rt.Position).Mul(rt.Orientation.ToMat4())
	return rt.Matrix.Compare(recomposed, tolerance)
}

/**
 * @brief Compares two rigid transforms component-wise within the given tolerance.
 */
func (rt RigidTransform) Compare(other RigidTransform, tolerance float32) bool {
	if !rt.Position.Compare(other.Position, tolerance) {
		return false
	}
	// q and -q encode the same rotation.
	if kabs(rt.Orientation.Dot(other.Orientation)) < 1.0-tolerance {
		return false
	}
	return rt.Matrix.Compare(other.Matrix, tolerance)
}
