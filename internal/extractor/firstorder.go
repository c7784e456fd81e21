package extractor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "go-radiomics-extractor/internal/errors"
	"go-radiomics-extractor/pkg/models"
)

// histogramBins is the bin count for the entropy and mode histograms.
const histogramBins = 256

// FirstOrderCalculator computes histogram, percentile and moment
// statistics over the masked intensity population.
type FirstOrderCalculator struct{}

// NewFirstOrderCalculator creates a first-order statistics calculator
func NewFirstOrderCalculator() *FirstOrderCalculator {
	return &FirstOrderCalculator{}
}

// Calculate returns the first-order feature category for the given
// intensity population. voxelVolume scales the energy to physical units.
func (c *FirstOrderCalculator) Calculate(intensities []float64, voxelVolume float64) (models.FeatureCategory, error) {
	cat := models.FeatureCategory{Name: models.CategoryFirstOrder}
	n := len(intensities)
	if n == 0 {
		return cat, apperrors.NewEmptyForegroundError("intensity population is empty")
	}

	sorted := append([]float64(nil), intensities...)
	sort.Float64s(sorted)
	min := sorted[0]
	max := sorted[n-1]

	mean := stat.Mean(intensities, nil)
	variance := 0.0
	if n > 1 {
		variance = stat.Variance(intensities, nil)
	}
	stdDev := math.Sqrt(variance)

	var energy float64
	for _, v := range intensities {
		energy += v * v
	}
	rms := math.Sqrt(energy / float64(n))

	p10 := stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p25 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	median := stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p75 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	p90 := stat.Quantile(0.90, stat.LinInterp, sorted, nil)

	entropy, renyi, mode := histogramStats(intensities, min, max)

	var mad, medianMAD float64
	for _, v := range intensities {
		mad += math.Abs(v - mean)
		medianMAD += math.Abs(v - median)
	}
	mad /= float64(n)
	medianMAD /= float64(n)

	skewness := 0.0
	if n > 2 {
		skewness = stat.Skew(intensities, nil)
		if math.IsNaN(skewness) || math.IsInf(skewness, 0) {
			skewness = 0
		}
	}
	kurtosis := 0.0
	if n > 3 {
		kurtosis = stat.ExKurtosis(intensities, nil) + 3
		if math.IsNaN(kurtosis) || math.IsInf(kurtosis, 0) {
			kurtosis = 0
		}
	}

	cv := 0.0
	if math.Abs(mean) > eps {
		cv = stdDev / mean
	}
	qcd := 0.0
	if math.Abs(p75+p25) > eps {
		qcd = (p75 - p25) / (p75 + p25)
	}

	// Robust MAD restricts both the mean and the deviations to the
	// [p10, p90] population.
	var robustSum float64
	var robustCount int
	for _, v := range intensities {
		if v >= p10 && v <= p90 {
			robustSum += v
			robustCount++
		}
	}
	rmad := 0.0
	if robustCount > 0 {
		robustMean := robustSum / float64(robustCount)
		for _, v := range intensities {
			if v >= p10 && v <= p90 {
				rmad += math.Abs(v - robustMean)
			}
		}
		rmad /= float64(robustCount)
	}

	cat.Add("mean", mean)
	cat.Add("variance", variance)
	cat.Add("std_dev", stdDev)
	cat.Add("min", min)
	cat.Add("max", max)
	cat.Add("energy", energy)
	cat.Add("total_energy", energy*voxelVolume)
	cat.Add("entropy", entropy)
	cat.Add("percentile_10", p10)
	cat.Add("percentile_25", p25)
	cat.Add("median", median)
	cat.Add("percentile_75", p75)
	cat.Add("percentile_90", p90)
	cat.Add("interquartile_range", p75-p25)
	cat.Add("range", max-min)
	cat.Add("mean_absolute_deviation", mad)
	cat.Add("root_mean_squared", rms)
	cat.Add("skewness", skewness)
	cat.Add("kurtosis", kurtosis)
	cat.Add("renyi_entropy", renyi)
	cat.Add("normalized_entropy", entropy/math.Log2(histogramBins))
	cat.Add("mode", mode)
	cat.Add("coefficient_of_variation", cv)
	cat.Add("robust_range", p90-p10)
	cat.Add("quartile_coefficient", qcd)
	cat.Add("robust_mean_absolute_deviation", rmad)
	cat.Add("median_absolute_deviation", medianMAD)

	return cat, nil
}

// histogramStats bins the population into 256 bins spanning [min, max]
// and derives Shannon entropy, Renyi entropy (alpha=2) and the center of
// the modal bin. Zero-probability bins are excluded from the log-sums so
// a population narrower than one bin width still terminates with zero
// entropy.
func histogramStats(values []float64, min, max float64) (entropy, renyi, mode float64) {
	if max <= min {
		return 0, 0, min
	}

	hist := make([]float64, histogramBins)
	binWidth := (max - min) / float64(histogramBins)
	for _, v := range values {
		binIdx := int((v - min) / binWidth)
		if binIdx >= histogramBins {
			binIdx = histogramBins - 1
		} else if binIdx < 0 {
			binIdx = 0
		}
		hist[binIdx]++
	}

	n := float64(len(values))
	var sumP2 float64
	modalBin := 0
	for i, count := range hist {
		if count > hist[modalBin] {
			modalBin = i
		}
		if count > 0 {
			p := count / n
			entropy -= p * math.Log2(p)
			sumP2 += p * p
		}
	}
	if sumP2 > 0 {
		renyi = -math.Log2(sumP2)
	}
	mode = min + (float64(modalBin)+0.5)*binWidth
	return entropy, renyi, mode
}
