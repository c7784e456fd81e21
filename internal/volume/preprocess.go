package volume

import (
	"math"

	apperrors "go-radiomics-extractor/internal/errors"
)

// Preprocessed bundles the three derived inputs the feature engines share.
// All three live only for the duration of one file's processing.
type Preprocessed struct {
	Mask        *Mask
	Intensities []float64
	Quantized   *Quantized
}

// Preprocess derives the foreground mask, the filtered intensity
// population and the quantized volume.
//
// The mask is intensity > 0. The population drops NaN/Inf values; an empty
// population fails with an empty-foreground error and skips every engine
// for this file. Quantization rescales over the min/max of the entire
// volume, not just the mask, and fails with a degenerate-range error when
// the range is zero instead of dividing by it.
func Preprocess(v *Volume, levels int) (*Preprocessed, error) {
	mask := &Mask{NX: v.NX, NY: v.NY, NZ: v.NZ, Data: make([]bool, len(v.Data))}

	intensities := make([]float64, 0, len(v.Data))
	for i, value := range v.Data {
		if value > 0 {
			mask.Data[i] = true
			if isFinite(value) {
				intensities = append(intensities, value)
			}
		}
	}
	if len(intensities) == 0 {
		return nil, apperrors.NewEmptyForegroundError("no foreground voxels after NaN/Inf filtering")
	}

	quantized, err := Quantize(v, levels)
	if err != nil {
		return nil, err
	}

	return &Preprocessed{
		Mask:        mask,
		Intensities: intensities,
		Quantized:   quantized,
	}, nil
}

// Quantize min-max rescales the volume to levels gray values:
// level = round((value-min)/(max-min)*(levels-1)), clamped. Non-finite
// intensities are excluded from the min/max scan and quantize to level 0.
func Quantize(v *Volume, levels int) (*Quantized, error) {
	min, max, any := finiteMinMax(v.Data)
	if !any || max == min {
		return nil, apperrors.NewDegenerateRangeError("zero intensity range, quantization undefined")
	}

	q := &Quantized{NX: v.NX, NY: v.NY, NZ: v.NZ, Levels: levels, Data: make([]uint8, len(v.Data))}
	for i, value := range v.Data {
		if !isFinite(value) {
			continue
		}
		// Ratio form, not a precomputed scale factor; the two round
		// differently at .5 tie points (e.g. 50/100*255 = 127.5 -> 128,
		// while 50*(255/100) lands just under it).
		level := int(math.Round((value - min) / (max - min) * float64(levels-1)))
		if level < 0 {
			level = 0
		} else if level > levels-1 {
			level = levels - 1
		}
		q.Data[i] = uint8(level)
	}
	return q, nil
}

// finiteMinMax scans for the smallest and largest finite intensities.
func finiteMinMax(data []float64) (min, max float64, any bool) {
	for _, v := range data {
		if !isFinite(v) {
			continue
		}
		if !any {
			min, max = v, v
			any = true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, any
}
