// Package transform converts between the backend's transform payloads and
// raylib matrices. The backend speaks two dialects: local TRS triples with
// Euler XYZ rotations in degrees, and absolute row-major 4x4 world matrices.
// Composition order matches the backend: M = T * R * S with column vectors,
// rotation composed as Rz*Ry*Rx.
package transform

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// TRS is position, rotation (Euler XYZ, degrees), and scale.
type TRS struct {
	Position rl.Vector3
	Rotation rl.Vector3
	Scale    rl.Vector3
}

// Identity returns the identity transform (zero position/rotation, unit scale).
func Identity() TRS {
	return TRS{Scale: rl.NewVector3(1, 1, 1)}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// rotationMatrix returns the 3x3 rotation for Euler XYZ degrees as a flat
// row-major [9]float32: R = Rz*Ry*Rx applied to column vectors.
func rotationMatrix(deg rl.Vector3) [9]float32 {
	rx, ry, rz := DegToRad(deg.X), DegToRad(deg.Y), DegToRad(deg.Z)
	cx, sx := math32.Cos(rx), math32.Sin(rx)
	cy, sy := math32.Cos(ry), math32.Sin(ry)
	cz, sz := math32.Cos(rz), math32.Sin(rz)
	return [9]float32{
		cy * cz, sx*sy*cz - cx*sz, cx*sy*cz + sx*sz,
		cy * sz, sx*sy*sz + cx*cz, cx*sy*sz - sx*cz,
		-sy, sx * cy, cx * cy,
	}
}

// eulerFromRotation extracts Euler XYZ degrees from a flat row-major 3x3
// rotation matrix. Degenerate pitch (|sin ry| ~ 1) pins rz to zero.
func eulerFromRotation(m [9]float32) rl.Vector3 {
	sy := -m[6]
	var rx, ry, rz float32
	if math32.Abs(sy) < 1-1e-6 {
		ry = math32.Asin(sy)
		rx = math32.Atan2(m[7], m[8])
		rz = math32.Atan2(m[3], m[0])
	} else {
		ry = math32.Copysign(math32.Pi/2, sy)
		rx = math32.Atan2(-m[5], m[4])
		rz = 0
	}
	return rl.NewVector3(RadToDeg(rx), RadToDeg(ry), RadToDeg(rz))
}

// Matrix composes the TRS into a raylib matrix: rotation columns scaled per
// axis, translation in the last column.
func (t TRS) Matrix() rl.Matrix {
	r := rotationMatrix(t.Rotation)
	sx, sy, sz := t.Scale.X, t.Scale.Y, t.Scale.Z
	var m rl.Matrix
	m.M0, m.M4, m.M8, m.M12 = r[0]*sx, r[1]*sy, r[2]*sz, t.Position.X
	m.M1, m.M5, m.M9, m.M13 = r[3]*sx, r[4]*sy, r[5]*sz, t.Position.Y
	m.M2, m.M6, m.M10, m.M14 = r[6]*sx, r[7]*sy, r[8]*sz, t.Position.Z
	m.M3, m.M7, m.M11, m.M15 = 0, 0, 0, 1
	return m
}

// Decompose splits a matrix into position, Euler XYZ rotation (degrees), and
// scale. Scale is recovered from the column norms; negative scale is not
// produced by the backend and is not handled.
func Decompose(m rl.Matrix) TRS {
	pos := rl.NewVector3(m.M12, m.M13, m.M14)
	sx := math32.Sqrt(m.M0*m.M0 + m.M1*m.M1 + m.M2*m.M2)
	sy := math32.Sqrt(m.M4*m.M4 + m.M5*m.M5 + m.M6*m.M6)
	sz := math32.Sqrt(m.M8*m.M8 + m.M9*m.M9 + m.M10*m.M10)
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if sz == 0 {
		sz = 1
	}
	r := [9]float32{
		m.M0 / sx, m.M4 / sy, m.M8 / sz,
		m.M1 / sx, m.M5 / sy, m.M9 / sz,
		m.M2 / sx, m.M6 / sy, m.M10 / sz,
	}
	return TRS{
		Position: pos,
		Rotation: eulerFromRotation(r),
		Scale:    rl.NewVector3(sx, sy, sz),
	}
}

// FromWire converts 16 row-major floats into a raylib matrix. Returns false
// when the slice is not exactly 16 values or any value is not finite; the
// caller keeps the node's prior transform in that case.
func FromWire(vals []float64) (rl.Matrix, bool) {
	if len(vals) != 16 {
		return rl.Matrix{}, false
	}
	var f [16]float32
	for i, v := range vals {
		f32 := float32(v)
		if math32.IsNaN(f32) || math32.IsInf(f32, 0) {
			return rl.Matrix{}, false
		}
		f[i] = f32
	}
	// Wire rows land on raylib's M0,M4,M8,M12 / M1,M5,M9,M13 / ... fields,
	// which is exactly the struct's declaration order.
	var m rl.Matrix
	m.M0, m.M4, m.M8, m.M12 = f[0], f[1], f[2], f[3]
	m.M1, m.M5, m.M9, m.M13 = f[4], f[5], f[6], f[7]
	m.M2, m.M6, m.M10, m.M14 = f[8], f[9], f[10], f[11]
	m.M3, m.M7, m.M11, m.M15 = f[12], f[13], f[14], f[15]
	return m, true
}

// ToWire converts a raylib matrix to 16 row-major floats.
func ToWire(m rl.Matrix) []float64 {
	return []float64{
		float64(m.M0), float64(m.M4), float64(m.M8), float64(m.M12),
		float64(m.M1), float64(m.M5), float64(m.M9), float64(m.M13),
		float64(m.M2), float64(m.M6), float64(m.M10), float64(m.M14),
		float64(m.M3), float64(m.M7), float64(m.M11), float64(m.M15),
	}
}

// Multiply returns parent * local, the world transform of a child under parent.
func Multiply(parent, local rl.Matrix) rl.Matrix {
	// raylib's MatrixMultiply applies the left operand first.
	return rl.MatrixMultiply(local, parent)
}
