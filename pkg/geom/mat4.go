package geom

// Mat4 is a 4x4 matrix in row-major order.
// Layout: [m0  m1  m2  m3 ]
//
//	[m4  m5  m6  m7 ]
//	[m8  m9  m10 m11]
//	[m12 m13 m14 m15]
//
// Row-major is also the wire order: Flatten hands the 16 elements to the
// native engine first row first, which is how the engine reads a world
// orientation back out of the transform buffer.
type Mat4 [16]float32

// ulpTolerance is the absolute tolerance used by IsIdentity. World
// transforms coming out of interactive editing are rarely bit-exact.
const ulpTolerance = 1e-6

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// TransformPoint applies the matrix to a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// IsIdentity reports whether the matrix is the identity within a small
// absolute tolerance.
func (m Mat4) IsIdentity() bool {
	id := Identity()
	for i, v := range m {
		d := v - id[i]
		if d > ulpTolerance || d < -ulpTolerance {
			return false
		}
	}
	return true
}

// Flatten returns the 16 elements in wire order (row-major).
func (m Mat4) Flatten() [16]float32 {
	return [16]float32(m)
}

// FromFlat builds a Mat4 from 16 wire-order floats. It is the inverse of
// Flatten and returns false if the slice has the wrong length.
func FromFlat(f []float32) (Mat4, bool) {
	if len(f) != 16 {
		return Mat4{}, false
	}
	var m Mat4
	copy(m[:], f)
	return m, true
}
