// Package volume holds the dense 3D intensity volume and the
// preprocessing step that every feature engine consumes: foreground mask,
// filtered intensity population and 8-bit quantized levels.
package volume

import "math"

// Spacing is the physical voxel size in millimetres along each axis.
type Spacing struct {
	X float64
	Y float64
	Z float64
}

// VoxelVolume returns the physical volume of a single voxel in mm^3.
func (s Spacing) VoxelVolume() float64 {
	return s.X * s.Y * s.Z
}

// Volume is a dense 3D array of real-valued intensities. Data is stored
// flat with index z*NX*NY + y*NX + x, matching the per-slice access order
// of the texture engines. A Volume is immutable once decoded.
type Volume struct {
	NX, NY, NZ int
	Spacing    Spacing
	Data       []float64
}

// New allocates a zeroed volume with the given dimensions and spacing.
func New(nx, ny, nz int, spacing Spacing) *Volume {
	return &Volume{
		NX:      nx,
		NY:      ny,
		NZ:      nz,
		Spacing: spacing,
		Data:    make([]float64, nx*ny*nz),
	}
}

// At returns the intensity at voxel (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[z*v.NX*v.NY+y*v.NX+x]
}

// Set writes the intensity at voxel (x, y, z).
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[z*v.NX*v.NY+y*v.NX+x] = value
}

// NumVoxels returns the total voxel count.
func (v *Volume) NumVoxels() int {
	return v.NX * v.NY * v.NZ
}

// Mask is a boolean 3D array with the same dimensions as its volume,
// true where the voxel belongs to the foreground. Never mutated after
// construction.
type Mask struct {
	NX, NY, NZ int
	Data       []bool
}

// At reports whether voxel (x, y, z) is foreground.
func (m *Mask) At(x, y, z int) bool {
	return m.Data[z*m.NX*m.NY+y*m.NX+x]
}

// Count returns the number of foreground voxels.
func (m *Mask) Count() int {
	n := 0
	for _, fg := range m.Data {
		if fg {
			n++
		}
	}
	return n
}

// Quantized is the volume rescaled to unsigned 8-bit gray levels for
// texture matrix construction. Levels records how many levels the
// rescaling targeted; all stored values lie in [0, Levels-1].
type Quantized struct {
	NX, NY, NZ int
	Levels     int
	Data       []uint8
}

// At returns the quantized level at voxel (x, y, z).
func (q *Quantized) At(x, y, z int) uint8 {
	return q.Data[z*q.NX*q.NY+y*q.NX+x]
}

// Slice returns the flat pixel data of the z-th slice.
func (q *Quantized) Slice(z int) []uint8 {
	size := q.NX * q.NY
	return q.Data[z*size : (z+1)*size]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
