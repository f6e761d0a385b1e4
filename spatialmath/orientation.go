package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// QuatToMatrix3 converts a quaternion to a rotation matrix with the standard formula. The quaternion is
// not normalized first; callers pass unit quaternions.
func QuatToMatrix3(q quat.Number) Matrix3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Matrix3{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	}
}

// QuatFromRPY converts URDF fixed-axis roll, pitch and yaw angles (radians) to a unit quaternion. The
// resulting rotation is Rz(yaw)*Ry(pitch)*Rx(roll).
func QuatFromRPY(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)

	q := quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
	if n := quat.Abs(q); n != 0 {
		q = quat.Scale(1/n, q)
	}
	return q
}
