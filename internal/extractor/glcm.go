package extractor

import (
	"math"

	"go-radiomics-extractor/internal/volume"
	"go-radiomics-extractor/pkg/models"
)

// GLCMEngine builds the gray-level co-occurrence matrix and its derived
// features. Co-occurrences are accumulated for the single fixed offset
// [0,+1] (same row, next column) per slice, summed over slices and
// L1-normalized. Downstream consumers expect exactly this single-offset
// definition, not the multi-angle Haralick one.
type GLCMEngine struct {
	levels int
}

// NewGLCMEngine creates a co-occurrence engine with the given level count
func NewGLCMEngine(levels int) *GLCMEngine {
	return &GLCMEngine{levels: levels}
}

// Matrix accumulates and normalizes the co-occurrence matrix, returned as
// a flat levels*levels row-major slice. Entries sum to 1 unless the
// volume has no horizontal voxel pairs at all.
func (e *GLCMEngine) Matrix(q *volume.Quantized) []float64 {
	L := e.levels
	p := make([]float64, L*L)

	var total float64
	for z := 0; z < q.NZ; z++ {
		slice := q.Slice(z)
		for y := 0; y < q.NY; y++ {
			row := slice[y*q.NX : (y+1)*q.NX]
			for x := 0; x+1 < q.NX; x++ {
				p[int(row[x])*L+int(row[x+1])]++
				total++
			}
		}
	}
	if total > 0 {
		for i := range p {
			p[i] /= total
		}
	}
	return p
}

// Calculate returns the 16 GLCM features.
func (e *GLCMEngine) Calculate(q *volume.Quantized) (models.FeatureCategory, error) {
	cat := models.FeatureCategory{Name: models.CategoryGLCM}
	L := e.levels
	p := e.Matrix(q)

	// Marginals and the |i-j| difference distribution.
	px := make([]float64, L)
	py := make([]float64, L)
	pDiff := make([]float64, L)
	for i := 0; i < L; i++ {
		base := i * L
		for j := 0; j < L; j++ {
			v := p[base+j]
			if v == 0 {
				continue
			}
			px[i] += v
			py[j] += v
			pDiff[abs(i-j)] += v
		}
	}

	// Gray levels are 1-based inside the feature sums.
	var muX, muY float64
	for i := 0; i < L; i++ {
		muX += float64(i+1) * px[i]
		muY += float64(i+1) * py[i]
	}
	var sigmaX, sigmaY float64
	for i := 0; i < L; i++ {
		sigmaX += (float64(i+1) - muX) * (float64(i+1) - muX) * px[i]
		sigmaY += (float64(i+1) - muY) * (float64(i+1) - muY) * py[i]
	}
	sigmaX = math.Sqrt(sigmaX)
	sigmaY = math.Sqrt(sigmaY)

	var (
		autocorrelation, contrast, correlation, homogeneity float64
		jointEnergy, jointEntropy                           float64
		clusterProminence, clusterShadow                    float64
		idm, idmn, maxProbability                           float64
		hxy1, hxy2                                          float64
	)
	norm := float64((L - 1) * (L - 1))
	for i := 0; i < L; i++ {
		ig := float64(i + 1)
		base := i * L
		for j := 0; j < L; j++ {
			v := p[base+j]
			jg := float64(j + 1)
			d := float64(i - j)
			marginal := px[i] * py[j]
			if marginal > 0 {
				hxy2 -= marginal * math.Log2(marginal+eps)
			}
			if v == 0 {
				continue
			}
			autocorrelation += ig * jg * v
			contrast += d * d * v
			correlation += (ig - muX) * (jg - muY) * v
			homogeneity += v / (1 + math.Abs(d))
			jointEnergy += v * v
			jointEntropy -= v * math.Log2(v+eps)
			cluster := ig + jg - muX - muY
			clusterShadow += cluster * cluster * cluster * v
			clusterProminence += cluster * cluster * cluster * cluster * v
			idm += v / (1 + d*d)
			idmn += v / (1 + d*d/norm)
			if v > maxProbability {
				maxProbability = v
			}
			hxy1 -= v * math.Log2(marginal+eps)
		}
	}
	correlation /= sigmaX*sigmaY + eps

	var hx, hy float64
	for i := 0; i < L; i++ {
		if px[i] > 0 {
			hx -= px[i] * math.Log2(px[i]+eps)
		}
		if py[i] > 0 {
			hy -= py[i] * math.Log2(py[i]+eps)
		}
	}
	imc1 := 0.0
	if m := math.Max(hx, hy); m > eps {
		imc1 = (jointEntropy - hxy1) / m
	}
	// The radicand can dip below zero from rounding; clamp before the root.
	imc2 := math.Sqrt(math.Max(0, 1-math.Exp(-2*(hxy2-jointEntropy))))

	var diffMean, diffEntropy, diffVariance float64
	for k, v := range pDiff {
		if v == 0 {
			continue
		}
		diffMean += float64(k) * v
		diffEntropy -= v * math.Log2(v+eps)
	}
	for k, v := range pDiff {
		if v == 0 {
			continue
		}
		diffVariance += (float64(k) - diffMean) * (float64(k) - diffMean) * v
	}

	cat.Add("autocorrelation", autocorrelation)
	cat.Add("contrast", contrast)
	cat.Add("correlation", correlation)
	cat.Add("homogeneity", homogeneity)
	cat.Add("joint_energy", jointEnergy)
	cat.Add("joint_entropy", jointEntropy)
	cat.Add("difference_mean", diffMean)
	cat.Add("difference_entropy", diffEntropy)
	cat.Add("difference_variance", diffVariance)
	cat.Add("cluster_prominence", clusterProminence)
	cat.Add("cluster_shadow", clusterShadow)
	cat.Add("imc1", imc1)
	cat.Add("imc2", imc2)
	cat.Add("inverse_difference_moment", idm)
	cat.Add("inverse_difference_moment_normalized", idmn)
	cat.Add("maximum_probability", maxProbability)

	return cat, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
