package extractor

import (
	"math"

	"go-radiomics-extractor/internal/volume"
	"go-radiomics-extractor/pkg/models"
)

// GLSZMEngine builds the gray-level size-zone matrix. Each 2D slice is
// partitioned into 8-connected zones of identical quantized values by a
// stack-based flood fill; every pixel of every slice lands in exactly one
// zone, background included. The matrix width grows with the largest zone
// observed and is trimmed to the last non-empty column before
// normalization.
type GLSZMEngine struct {
	levels int
}

// NewGLSZMEngine creates a size-zone engine
func NewGLSZMEngine(levels int) *GLSZMEngine {
	return &GLSZMEngine{levels: levels}
}

// Matrix accumulates zone counts per (level, zone size). rows[i][j] counts
// zones of level i with size j+1; the second return is the total zone
// count. Row lengths are already trimmed to the widest zone seen.
func (e *GLSZMEngine) Matrix(q *volume.Quantized) ([][]float64, float64) {
	rows := make([][]float64, e.levels)
	maxSize := 0
	var totalZones float64

	sliceSize := q.NX * q.NY
	visited := make([]bool, sliceSize)
	for z := 0; z < q.NZ; z++ {
		slice := q.Slice(z)
		for i := range visited {
			visited[i] = false
		}
		for idx := 0; idx < sliceSize; idx++ {
			if visited[idx] {
				continue
			}
			level := int(slice[idx])
			size := e.fillZone(slice, visited, q.NX, q.NY, idx)
			if size > maxSize {
				maxSize = size
			}
			if len(rows[level]) < size {
				grown := make([]float64, size)
				copy(grown, rows[level])
				rows[level] = grown
			}
			rows[level][size-1]++
			totalZones++
		}
	}

	// maxSize is the largest zone recorded, so it is exactly the last
	// non-empty column.
	for i := range rows {
		if len(rows[i]) < maxSize {
			grown := make([]float64, maxSize)
			copy(grown, rows[i])
			rows[i] = grown
		}
	}
	return rows, totalZones
}

// fillZone flood-fills the 8-connected zone containing start and returns
// its size. Stack-based rather than recursive so a zone covering a whole
// slice cannot overflow the goroutine stack. Every visited pixel is marked
// exactly once.
func (e *GLSZMEngine) fillZone(slice []uint8, visited []bool, nx, ny, start int) int {
	value := slice[start]
	stack := []int{start}
	visited[start] = true
	size := 0

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		x := idx % nx
		y := idx / nx
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				px, py := x+dx, y+dy
				if px < 0 || px >= nx || py < 0 || py >= ny {
					continue
				}
				next := py*nx + px
				if visited[next] || slice[next] != value {
					continue
				}
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return size
}

// Calculate returns the 16 GLSZM features.
func (e *GLSZMEngine) Calculate(q *volume.Quantized) (models.FeatureCategory, error) {
	cat := models.FeatureCategory{Name: models.CategoryGLSZM}

	rows, totalZones := e.Matrix(q)
	if totalZones == 0 {
		return cat, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	pGray := make([]float64, e.levels)
	pSize := make([]float64, width)
	var (
		sze, lze, lglze, hglze                      float64
		szlgle, szhgle, lzlgle, lzhgle              float64
		grayMean, sizeMean, zoneEntropy, uniformity float64
	)
	for i, row := range rows {
		ig := float64(i + 1)
		for j, count := range row {
			if count == 0 {
				continue
			}
			v := count / totalZones
			js := float64(j + 1)
			pGray[i] += v
			pSize[j] += v
			sze += v / (js * js)
			lze += v * js * js
			szlgle += v / (ig * ig * js * js)
			szhgle += v * ig * ig / (js * js)
			lzlgle += v * js * js / (ig * ig)
			lzhgle += v * ig * ig * js * js
			grayMean += v * ig
			sizeMean += v * js
			zoneEntropy -= v * math.Log2(v+eps)
			uniformity += v * v
		}
		lglze += pGray[i] / (ig * ig)
		hglze += pGray[i] * ig * ig
	}

	var grayNonUniformityNorm, sizeNonUniformityNorm float64
	for _, v := range pGray {
		grayNonUniformityNorm += v * v
	}
	for _, v := range pSize {
		sizeNonUniformityNorm += v * v
	}

	var grayVariance, sizeVariance float64
	for i, row := range rows {
		for j, count := range row {
			if count == 0 {
				continue
			}
			v := count / totalZones
			grayVariance += v * (float64(i+1) - grayMean) * (float64(i+1) - grayMean)
			sizeVariance += v * (float64(j+1) - sizeMean) * (float64(j+1) - sizeMean)
		}
	}

	zonePercentage := 0.0
	if pixels := q.NX * q.NY * q.NZ; pixels > 0 {
		zonePercentage = totalZones / float64(pixels)
	}

	cat.Add("small_zone_emphasis", sze)
	cat.Add("large_zone_emphasis", lze)
	cat.Add("gray_level_nonuniformity", grayNonUniformityNorm*totalZones)
	cat.Add("zone_size_nonuniformity", sizeNonUniformityNorm*totalZones)
	cat.Add("zone_size_nonuniformity_normalized", sizeNonUniformityNorm)
	cat.Add("zone_percentage", zonePercentage)
	cat.Add("low_gray_level_zone_emphasis", lglze)
	cat.Add("high_gray_level_zone_emphasis", hglze)
	cat.Add("gray_level_variance", grayVariance)
	cat.Add("zone_size_variance", sizeVariance)
	cat.Add("zone_entropy", zoneEntropy)
	cat.Add("uniformity", uniformity)
	cat.Add("small_zone_low_gray_level_emphasis", szlgle)
	cat.Add("small_zone_high_gray_level_emphasis", szhgle)
	cat.Add("large_zone_low_gray_level_emphasis", lzlgle)
	cat.Add("large_zone_high_gray_level_emphasis", lzhgle)

	return cat, nil
}
