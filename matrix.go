package retroview

// Matrix4 represents a 4x4 transformation matrix, stored in row-major order and applied to column vectors
// (so A.Mult(B) applies B first, then A). It is used only to place asset bounds in scene space; all rendering
// transforms are handled by the engine.
type Matrix4 [4][4]float64

// NewMatrix4 returns a new identity Matrix4.
func NewMatrix4() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4Translate returns a new Matrix4 that translates by the given x, y, and z values.
func NewMatrix4Translate(x, y, z float64) Matrix4 {
	mat := NewMatrix4()
	mat[0][3] = x
	mat[1][3] = y
	mat[2][3] = z
	return mat
}

// NewMatrix4Scale returns a new Matrix4 that scales by the given x, y, and z values.
func NewMatrix4Scale(x, y, z float64) Matrix4 {
	mat := NewMatrix4()
	mat[0][0] = x
	mat[1][1] = y
	mat[2][2] = z
	return mat
}

// NewMatrix4ColumnMajor creates a Matrix4 out of 16 floats stored in column-major order, which is how glTF stores matrices.
func NewMatrix4ColumnMajor(floats [16]float64) Matrix4 {
	mat := Matrix4{}
	for i, f := range floats {
		mat[i%4][i/4] = f
	}
	return mat
}

// Mult returns a new Matrix4 that is the calling Matrix4 multiplied by the other one.
func (matrix Matrix4) Mult(other Matrix4) Matrix4 {

	newMat := Matrix4{}

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			for i := 0; i < 4; i++ {
				newMat[row][col] += matrix[row][i] * other[i][col]
			}
		}
	}

	return newMat

}

// MultVec transforms the provided point by the Matrix4 (including translation).
func (matrix Matrix4) MultVec(vec Vector) Vector {
	return Vector{
		X: matrix[0][0]*vec.X + matrix[0][1]*vec.Y + matrix[0][2]*vec.Z + matrix[0][3],
		Y: matrix[1][0]*vec.X + matrix[1][1]*vec.Y + matrix[1][2]*vec.Z + matrix[1][3],
		Z: matrix[2][0]*vec.X + matrix[2][1]*vec.Y + matrix[2][2]*vec.Z + matrix[2][3],
	}
}

// IsIdentity returns true if the matrix is an unmodified identity matrix.
func (matrix Matrix4) IsIdentity() bool {
	return matrix == NewMatrix4()
}

// Quaternion represents a rotation, as stored in glTF node rotations (X, Y, Z, W order).
type Quaternion struct {
	X, Y, Z, W float64
}

func NewQuaternion(x, y, z, w float64) Quaternion {
	return Quaternion{x, y, z, w}
}

// ToMatrix4 returns the rotation Matrix4 the Quaternion represents.
func (quat Quaternion) ToMatrix4() Matrix4 {

	x, y, z, w := quat.X, quat.Y, quat.Z, quat.W

	return Matrix4{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0},
		{0, 0, 0, 1},
	}

}
