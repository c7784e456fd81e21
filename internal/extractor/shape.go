package extractor

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "go-radiomics-extractor/internal/errors"
	"go-radiomics-extractor/internal/volume"
	"go-radiomics-extractor/pkg/models"
)

// axisEpsilon keeps the principal axes away from exact zero length when
// the mask collapses onto a plane or a line.
const axisEpsilon = 1e-9

// ShapeCalculator derives geometric descriptors from the foreground mask
// and the voxel spacing.
type ShapeCalculator struct{}

// NewShapeCalculator creates a shape feature calculator
func NewShapeCalculator() *ShapeCalculator {
	return &ShapeCalculator{}
}

// Calculate returns the 11 shape features. An empty mask yields an empty
// category rather than an error; the first-order calculator is the one
// that fails the file in that case.
func (c *ShapeCalculator) Calculate(mask *volume.Mask, spacing volume.Spacing) (models.FeatureCategory, error) {
	cat := models.FeatureCategory{Name: models.CategoryShape}

	count := mask.Count()
	if count == 0 {
		return cat, nil
	}

	physVolume := float64(count) * spacing.VoxelVolume()
	surface := c.surfaceArea(mask, spacing)

	large, mid, small, err := c.principalAxes(mask, spacing, count)
	if err != nil {
		return cat, err
	}

	sphericity := math.Pow(math.Pi, 1.0/3.0) * math.Pow(6*physVolume, 2.0/3.0) / surface

	cat.Add("volume_mm3", physVolume)
	cat.Add("surface_area_mm2", surface)
	cat.Add("surface_volume_ratio", surface/physVolume)
	cat.Add("sphericity", sphericity)
	cat.Add("compactness_1", physVolume/(math.Sqrt(math.Pi)*math.Pow(surface, 1.5)))
	cat.Add("compactness_2", 36*math.Pi*physVolume*physVolume/(surface*surface*surface))
	cat.Add("major_axis_length", 4*math.Sqrt(large))
	cat.Add("minor_axis_length", 4*math.Sqrt(mid))
	cat.Add("least_axis_length", 4*math.Sqrt(small))
	cat.Add("elongation", math.Sqrt(mid/large))
	cat.Add("flatness", math.Sqrt(small/large))

	return cat, nil
}

// principalAxes solves the 3x3 covariance eigenproblem over the physical
// coordinates of the foreground voxels. Eigenvalues come back sorted
// descending with axisEpsilon added.
func (c *ShapeCalculator) principalAxes(mask *volume.Mask, spacing volume.Spacing, count int) (large, mid, small float64, err error) {
	coords := mat.NewDense(count, 3, nil)
	row := 0
	for z := 0; z < mask.NZ; z++ {
		for y := 0; y < mask.NY; y++ {
			for x := 0; x < mask.NX; x++ {
				if !mask.At(x, y, z) {
					continue
				}
				coords.Set(row, 0, float64(x)*spacing.X)
				coords.Set(row, 1, float64(y)*spacing.Y)
				coords.Set(row, 2, float64(z)*spacing.Z)
				row++
			}
		}
	}

	var cov mat.SymDense
	if count > 1 {
		stat.CovarianceMatrix(&cov, coords, nil)
	} else {
		cov = *mat.NewSymDense(3, nil)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, false); !ok {
		return 0, 0, 0, apperrors.NewComputationError("covariance eigendecomposition failed", nil)
	}
	values := eig.Values(nil) // ascending

	clamp := func(v float64) float64 {
		if v < 0 {
			v = 0
		}
		return v + axisEpsilon
	}
	return clamp(values[2]), clamp(values[1]), clamp(values[0]), nil
}

// surfaceArea counts the axis-aligned faces of foreground voxels that
// border a background voxel or the volume boundary, weighted by the
// physical area of each face orientation. A 6-connectivity boundary-face
// count, not a mesh surface: deterministic for a given mask.
func (c *ShapeCalculator) surfaceArea(mask *volume.Mask, spacing volume.Spacing) float64 {
	faceAreaX := spacing.Y * spacing.Z
	faceAreaY := spacing.X * spacing.Z
	faceAreaZ := spacing.X * spacing.Y

	exposed := func(x, y, z int) bool {
		if x < 0 || x >= mask.NX || y < 0 || y >= mask.NY || z < 0 || z >= mask.NZ {
			return true
		}
		return !mask.At(x, y, z)
	}

	var area float64
	for z := 0; z < mask.NZ; z++ {
		for y := 0; y < mask.NY; y++ {
			for x := 0; x < mask.NX; x++ {
				if !mask.At(x, y, z) {
					continue
				}
				if exposed(x-1, y, z) {
					area += faceAreaX
				}
				if exposed(x+1, y, z) {
					area += faceAreaX
				}
				if exposed(x, y-1, z) {
					area += faceAreaY
				}
				if exposed(x, y+1, z) {
					area += faceAreaY
				}
				if exposed(x, y, z-1) {
					area += faceAreaZ
				}
				if exposed(x, y, z+1) {
					area += faceAreaZ
				}
			}
		}
	}
	return area
}
