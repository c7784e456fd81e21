package extractor

import (
	"math"
	"testing"

	"go-radiomics-extractor/pkg/models"
)

func mustLookup(t *testing.T, cat models.FeatureCategory, name string) float64 {
	t.Helper()
	v, ok := cat.Lookup(name)
	if !ok {
		t.Fatalf("Feature %s missing from %s", name, cat.Name)
	}
	return v
}

func TestFirstOrderBasicStatistics(t *testing.T) {
	calc := NewFirstOrderCalculator()
	values := []float64{1, 2, 3, 4}

	cat, err := calc.Calculate(values, 2.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if got := mustLookup(t, cat, "mean"); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Expected mean 2.5, got %f", got)
	}
	if got := mustLookup(t, cat, "min"); got != 1 {
		t.Errorf("Expected min 1, got %f", got)
	}
	if got := mustLookup(t, cat, "max"); got != 4 {
		t.Errorf("Expected max 4, got %f", got)
	}
	if got := mustLookup(t, cat, "range"); got != 3 {
		t.Errorf("Expected range 3, got %f", got)
	}
	if got := mustLookup(t, cat, "energy"); math.Abs(got-30) > 1e-9 {
		t.Errorf("Expected energy 30, got %f", got)
	}
	if got := mustLookup(t, cat, "total_energy"); math.Abs(got-60) > 1e-9 {
		t.Errorf("Expected total energy 60, got %f", got)
	}
	if got := mustLookup(t, cat, "root_mean_squared"); math.Abs(got-math.Sqrt(7.5)) > 1e-9 {
		t.Errorf("Expected RMS sqrt(7.5), got %f", got)
	}
	if got := mustLookup(t, cat, "mean_absolute_deviation"); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected MAD 1.0, got %f", got)
	}
}

func TestFirstOrderFeatureCount(t *testing.T) {
	calc := NewFirstOrderCalculator()
	cat, err := calc.Calculate([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 1.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if len(cat.Features) != 27 {
		t.Errorf("Expected 27 first-order features, got %d", len(cat.Features))
	}
}

func TestFirstOrderPercentilesOrdered(t *testing.T) {
	calc := NewFirstOrderCalculator()
	values := []float64{5, 1, 9, 3, 7, 2, 8, 4, 6, 10}

	cat, err := calc.Calculate(values, 1.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	p10 := mustLookup(t, cat, "percentile_10")
	p25 := mustLookup(t, cat, "percentile_25")
	p50 := mustLookup(t, cat, "median")
	p75 := mustLookup(t, cat, "percentile_75")
	p90 := mustLookup(t, cat, "percentile_90")

	if !(p10 <= p25 && p25 <= p50 && p50 <= p75 && p75 <= p90) {
		t.Errorf("Percentiles out of order: %f %f %f %f %f", p10, p25, p50, p75, p90)
	}
	if p10 < 1 || p90 > 10 {
		t.Errorf("Percentiles escaped data range: p10=%f p90=%f", p10, p90)
	}
	if got := mustLookup(t, cat, "robust_range"); math.Abs(got-(p90-p10)) > 1e-9 {
		t.Errorf("Expected robust range p90-p10, got %f", got)
	}
	if got := mustLookup(t, cat, "interquartile_range"); math.Abs(got-(p75-p25)) > 1e-9 {
		t.Errorf("Expected IQR p75-p25, got %f", got)
	}
}

func TestFirstOrderTwoLevelEntropy(t *testing.T) {
	calc := NewFirstOrderCalculator()
	// Two equally likely values land in the first and last histogram
	// bins: entropy is exactly one bit.
	values := []float64{1, 1, 2, 2}

	cat, err := calc.Calculate(values, 1.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if got := mustLookup(t, cat, "entropy"); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected entropy 1 bit, got %f", got)
	}
	if got := mustLookup(t, cat, "renyi_entropy"); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected Renyi entropy 1 bit, got %f", got)
	}
	if got := mustLookup(t, cat, "normalized_entropy"); math.Abs(got-0.125) > 1e-9 {
		t.Errorf("Expected normalized entropy 1/8, got %f", got)
	}
}

func TestFirstOrderConstantPopulation(t *testing.T) {
	calc := NewFirstOrderCalculator()
	values := []float64{3, 3, 3, 3, 3}

	cat, err := calc.Calculate(values, 1.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	// Single-bin population: the entropy computation must terminate with
	// zero, not spin or divide by zero.
	if got := mustLookup(t, cat, "entropy"); got != 0 {
		t.Errorf("Expected zero entropy for constant population, got %f", got)
	}
	if got := mustLookup(t, cat, "variance"); got != 0 {
		t.Errorf("Expected zero variance, got %f", got)
	}
	if got := mustLookup(t, cat, "mode"); got != 3 {
		t.Errorf("Expected mode 3, got %f", got)
	}
	for _, f := range cat.Features {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			t.Errorf("Non-finite value for %s: %f", f.Name, f.Value)
		}
	}
}

func TestFirstOrderEmptyPopulation(t *testing.T) {
	calc := NewFirstOrderCalculator()
	if _, err := calc.Calculate(nil, 1.0); err == nil {
		t.Error("Expected error for empty population")
	}
}

func TestFirstOrderSingleValue(t *testing.T) {
	calc := NewFirstOrderCalculator()
	cat, err := calc.Calculate([]float64{42}, 1.0)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	for _, f := range cat.Features {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			t.Errorf("Non-finite value for %s with n=1: %f", f.Name, f.Value)
		}
	}
}
