package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatWXYZ builds a quaternion from the scalar-first layout used by
// authoring tools.
func QuatWXYZ(q [4]float32) Quat {
	return Quat{X: q[1], Y: q[2], Z: q[3], W: q[0]}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Mul returns the Hamilton product q * other, the rotation that applies
// other first and then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// QuatFromEuler builds a rotation from Euler angles in radians. order names
// the axes in the sequence they are applied, e.g. "XYZ" rotates about X
// first and Z last. Unknown orders fall back to "XYZ".
func QuatFromEuler(angles [3]float32, order string) Quat {
	if len(order) != 3 {
		order = "XYZ"
	}
	axes := map[byte]struct {
		axis  Vec3
		angle float32
	}{
		'X': {Vec3{X: 1}, angles[0]},
		'Y': {Vec3{Y: 1}, angles[1]},
		'Z': {Vec3{Z: 1}, angles[2]},
	}
	q := QuatIdentity()
	for i := 0; i < 3; i++ {
		a, ok := axes[order[i]]
		if !ok {
			return QuatFromEuler(angles, "XYZ")
		}
		q = QuatFromAxisAngle(a.axis, a.angle).Mul(q)
	}
	return q
}
