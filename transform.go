package renderer

// AffineTransform3D represents a 3D affine transformation as a 3x4 matrix in
// row-major order:
//
//	| m00 m01 m02 m03 |
//	| m10 m11 m12 m13 |
//	| m20 m21 m22 m23 |
//
// representing x' = M*x for homogeneous x = (x, y, z, 1).
type AffineTransform3D struct {
	M [3][4]float64
}

// Identity3D returns the identity transform.
func Identity3D() AffineTransform3D {
	var t AffineTransform3D
	t.M[0][0] = 1
	t.M[1][1] = 1
	t.M[2][2] = 1
	return t
}

// Scale3D returns a diagonal scaling transform, one factor per axis.
func Scale3D(sx, sy, sz float64) AffineTransform3D {
	var t AffineTransform3D
	t.M[0][0] = sx
	t.M[1][1] = sy
	t.M[2][2] = sz
	return t
}

// ScreenScaleTransform returns the diagonal scale transform that maps
// canvas coordinates to screen-image coordinates for a screen scale s.
// The Z axis is left untouched: screen scaling only ever reduces the two
// canvas axes.
func ScreenScaleTransform(s float64) AffineTransform3D {
	return Scale3D(s, s, 1)
}

// Translate3D returns a pure translation transform.
func Translate3D(tx, ty, tz float64) AffineTransform3D {
	t := Identity3D()
	t.M[0][3] = tx
	t.M[1][3] = ty
	t.M[2][3] = tz
	return t
}

// Concatenate returns the transform equivalent to applying other first and
// then m (m.Concatenate(other) == m * other in matrix terms).
func (m AffineTransform3D) Concatenate(other AffineTransform3D) AffineTransform3D {
	var out AffineTransform3D
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m.M[r][k] * other.M[k][c]
			}
			out.M[r][c] = sum
		}
		out.M[r][3] = m.M[r][0]*other.M[0][3] + m.M[r][1]*other.M[1][3] + m.M[r][2]*other.M[2][3] + m.M[r][3]
	}
	return out
}

// Apply transforms a point (x, y, z) and returns the resulting point.
func (m AffineTransform3D) Apply(x, y, z float64) (float64, float64, float64) {
	rx := m.M[0][0]*x + m.M[0][1]*y + m.M[0][2]*z + m.M[0][3]
	ry := m.M[1][0]*x + m.M[1][1]*y + m.M[1][2]*z + m.M[1][3]
	rz := m.M[2][0]*x + m.M[2][1]*y + m.M[2][2]*z + m.M[2][3]
	return rx, ry, rz
}
