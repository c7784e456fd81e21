package extractor

import (
	"go-radiomics-extractor/pkg/models"
)

// FeatureExtractor is the contract exposed to the calling layer.
type FeatureExtractor interface {
	// Extract processes every file independently and aggregates the
	// per-file results into one batch result. A per-file failure never
	// aborts the batch.
	Extract(paths []string, parallel bool) models.BatchResult
}

// eps guards every log and division in the texture engines against
// log(0) and divide-by-zero.
const eps = 1e-10
