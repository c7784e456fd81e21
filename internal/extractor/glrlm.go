package extractor

import (
	"math"

	"go-radiomics-extractor/internal/volume"
	"go-radiomics-extractor/pkg/models"
)

// GLRLMEngine builds the gray-level run-length matrix. A run is a maximal
// horizontal sequence of identical quantized values within one slice row;
// runs longer than the cap are silently dropped, a known approximation.
type GLRLMEngine struct {
	levels       int
	maxRunLength int
}

// NewGLRLMEngine creates a run-length engine
func NewGLRLMEngine(levels, maxRunLength int) *GLRLMEngine {
	return &GLRLMEngine{levels: levels, maxRunLength: maxRunLength}
}

// Matrix accumulates the run-length counts, returned as a flat
// levels*maxRunLength row-major slice (column j = run length j+1) plus the
// number of recorded runs.
func (e *GLRLMEngine) Matrix(q *volume.Quantized) ([]float64, float64) {
	R := e.maxRunLength
	counts := make([]float64, e.levels*R)

	var totalRuns float64
	for z := 0; z < q.NZ; z++ {
		slice := q.Slice(z)
		for y := 0; y < q.NY; y++ {
			row := slice[y*q.NX : (y+1)*q.NX]
			for x := 0; x < len(row); {
				value := row[x]
				run := 1
				for x+run < len(row) && row[x+run] == value {
					run++
				}
				if run <= R {
					counts[int(value)*R+run-1]++
					totalRuns++
				}
				x += run
			}
		}
	}
	return counts, totalRuns
}

// Calculate returns the 19 GLRLM features.
func (e *GLRLMEngine) Calculate(q *volume.Quantized) (models.FeatureCategory, error) {
	cat := models.FeatureCategory{Name: models.CategoryGLRLM}
	L := e.levels
	R := e.maxRunLength

	p, totalRuns := e.Matrix(q)
	if totalRuns > 0 {
		for i := range p {
			p[i] /= totalRuns
		}
	}

	pGray := make([]float64, L)
	pRun := make([]float64, R)
	var (
		sre, lre, lglre, hglre, lglre2, hglre2    float64
		srlgle, srhgle, lrlgle, lrhgle            float64
		grayMean, runMean, runEntropy, uniformity float64
	)
	for i := 0; i < L; i++ {
		ig := float64(i + 1)
		cg := float64(L - i) // complement level, levels - index + 1
		base := i * R
		for j := 0; j < R; j++ {
			v := p[base+j]
			if v == 0 {
				continue
			}
			jr := float64(j + 1)
			pGray[i] += v
			pRun[j] += v
			sre += v / (jr * jr)
			lre += v * jr * jr
			srlgle += v / (ig * ig * jr * jr)
			srhgle += v * ig * ig / (jr * jr)
			lrlgle += v * jr * jr / (ig * ig)
			lrhgle += v * ig * ig * jr * jr
			grayMean += v * ig
			runMean += v * jr
			runEntropy -= v * math.Log2(v+eps)
			uniformity += v * v
		}
		lglre += pGray[i] / (ig * ig)
		hglre += pGray[i] * ig * ig
		lglre2 += pGray[i] / (cg * cg)
		hglre2 += pGray[i] * cg * cg
	}

	var grayNonUniformity, runNonUniformity float64
	for _, v := range pGray {
		grayNonUniformity += v * v
	}
	for _, v := range pRun {
		runNonUniformity += v * v
	}
	grayNonUniformity *= totalRuns
	runNonUniformity *= totalRuns

	var grayVariance, runVariance float64
	for i := 0; i < L; i++ {
		base := i * R
		for j := 0; j < R; j++ {
			v := p[base+j]
			if v == 0 {
				continue
			}
			grayVariance += v * (float64(i+1) - grayMean) * (float64(i+1) - grayMean)
			runVariance += v * (float64(j+1) - runMean) * (float64(j+1) - runMean)
		}
	}

	runPercentage := 0.0
	if voxels := q.NX * q.NY * q.NZ; voxels > 0 {
		runPercentage = totalRuns / float64(voxels)
	}

	cat.Add("short_run_emphasis", sre)
	cat.Add("long_run_emphasis", lre)
	cat.Add("gray_level_nonuniformity", grayNonUniformity)
	cat.Add("run_length_nonuniformity", runNonUniformity)
	cat.Add("run_percentage", runPercentage)
	cat.Add("low_gray_level_run_emphasis", lglre)
	cat.Add("high_gray_level_run_emphasis", hglre)
	cat.Add("low_gray_level_run_emphasis_2", lglre2)
	cat.Add("high_gray_level_run_emphasis_2", hglre2)
	cat.Add("gray_level_variance", grayVariance)
	cat.Add("run_length_variance", runVariance)
	cat.Add("gray_level_mean", grayMean)
	cat.Add("run_length_mean", runMean)
	cat.Add("run_entropy", runEntropy)
	cat.Add("uniformity", uniformity)
	cat.Add("short_run_low_gray_level_emphasis", srlgle)
	cat.Add("short_run_high_gray_level_emphasis", srhgle)
	cat.Add("long_run_low_gray_level_emphasis", lrlgle)
	cat.Add("long_run_high_gray_level_emphasis", lrhgle)

	return cat, nil
}
