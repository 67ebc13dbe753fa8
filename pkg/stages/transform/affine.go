package transform

import "golang.org/x/image/math/f64"

// Affine is a 2x3 row-major matrix mapping source pixel coordinates to
// destination coordinates:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Affine f64.Aff3

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{1, 0, tx, 0, 1, ty}
}

// Scale returns an axis-aligned scale.
func Scale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0}
}

// Mul returns m·n, the transform that applies n first and then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Apply maps a source point to the destination.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// IsIdentity reports whether m leaves every point unchanged.
func (m Affine) IsIdentity() bool {
	return m == Identity()
}

// Aff3 returns the matrix in golang.org/x/image form.
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}
