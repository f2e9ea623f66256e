package retroview

import (
	"fmt"
	"math"
)

// VecX represents a unit vector pointing right in the viewer's right-handed coordinate system.
var VecX = NewVector(1, 0, 0)

// VecY represents a unit vector pointing upwards.
var VecY = NewVector(0, 1, 0)

// VecZ represents a unit vector pointing backwards, towards the viewer.
var VecZ = NewVector(0, 0, 1)

// Vector represents a 3D Vector, used for positions, offsets and directions in scene configuration.
// Any Vector functions that modify the calling Vector return copies of the modified Vector, meaning you can do method-chaining easily.
type Vector struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	Z float64 `toml:"z" yaml:"z"`
}

// NewVector creates a new Vector with the specified x, y, and z components.
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns a copy of the calling vector, added together with the other Vector provided.
func (vec Vector) Add(other Vector) Vector {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Sub returns a copy of the calling Vector, with the other Vector subtracted from it.
func (vec Vector) Sub(other Vector) Vector {
	vec.X -= other.X
	vec.Y -= other.Y
	vec.Z -= other.Z
	return vec
}

// Scale returns a copy of the Vector with each component multiplied by the scalar provided.
func (vec Vector) Scale(scalar float64) Vector {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// MultComp returns a copy of the Vector, multiplied component-wise by the other Vector.
func (vec Vector) MultComp(other Vector) Vector {
	vec.X *= other.X
	vec.Y *= other.Y
	vec.Z *= other.Z
	return vec
}

func (vec Vector) Invert() Vector {
	vec.X = -vec.X
	vec.Y = -vec.Y
	vec.Z = -vec.Z
	return vec
}

// Cross returns a new Vector, indicating the cross product of the calling Vector and the provided Other Vector.
func (vec Vector) Cross(other Vector) Vector {

	ogVecY := vec.Y
	ogVecZ := vec.Z

	vec.Z = vec.X*other.Y - other.X*vec.Y
	vec.Y = ogVecZ*other.X - other.Z*vec.X
	vec.X = ogVecY*other.Z - other.Y*ogVecZ

	return vec

}

// Dot returns the dot product of the two Vectors.
func (vec Vector) Dot(other Vector) float64 {
	return vec.X*other.X + vec.Y*other.Y + vec.Z*other.Z
}

// Magnitude returns the length of the Vector.
func (vec Vector) Magnitude() float64 {
	return math.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

func (vec Vector) Distance(other Vector) float64 {
	return vec.Sub(other).Magnitude()
}

// Unit returns a copy of the Vector, normalized (set to be of unit length).
// A zero-length Vector is returned unmodified.
func (vec Vector) Unit() Vector {
	l := vec.Magnitude()
	if l < 1e-8 {
		return vec
	}
	vec.X /= l
	vec.Y /= l
	vec.Z /= l
	return vec
}

// Equals returns true if the two Vectors are equal to within the tolerance given.
func (vec Vector) Equals(other Vector, tolerance float64) bool {
	return math.Abs(vec.X-other.X) <= tolerance &&
		math.Abs(vec.Y-other.Y) <= tolerance &&
		math.Abs(vec.Z-other.Z) <= tolerance
}

// IsZero returns true if all components of the Vector are 0.
func (vec Vector) IsZero() bool {
	return vec.X == 0 && vec.Y == 0 && vec.Z == 0
}

// String returns a string representation of the Vector, rounded to three decimal places.
func (vec Vector) String() string {
	return fmt.Sprintf("{%.3f, %.3f, %.3f}", vec.X, vec.Y, vec.Z)
}

// Floats returns the Vector's components as a slice, in X, Y, Z order.
func (vec Vector) Floats() []float64 {
	return []float64{vec.X, vec.Y, vec.Z}
}
