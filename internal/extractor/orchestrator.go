package extractor

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-radiomics-extractor/internal/errors"
	"go-radiomics-extractor/internal/logger"
	"go-radiomics-extractor/internal/storage"
	"go-radiomics-extractor/internal/volume"
	"go-radiomics-extractor/pkg/models"
)

// Orchestrator composes the per-file pipeline (decode, preprocess, five
// feature engines) and fans it out across files. Each file owns its
// Volume/Mask/Quantized exclusively for the duration of its task; the
// only shared structure is the pre-sized result array, written at
// disjoint indices.
type Orchestrator struct {
	decoder    storage.VolumeDecoder
	opts       Options
	firstOrder *FirstOrderCalculator
	shape      *ShapeCalculator
	glcm       *GLCMEngine
	glrlm      *GLRLMEngine
	glszm      *GLSZMEngine
}

// NewOrchestrator creates an extraction orchestrator with all engines
func NewOrchestrator(decoder storage.VolumeDecoder, opts Options) *Orchestrator {
	opts = opts.Normalize()
	return &Orchestrator{
		decoder:    decoder,
		opts:       opts,
		firstOrder: NewFirstOrderCalculator(),
		shape:      NewShapeCalculator(),
		glcm:       NewGLCMEngine(opts.GrayLevels),
		glrlm:      NewGLRLMEngine(opts.GrayLevels, opts.MaxRunLength),
		glszm:      NewGLSZMEngine(opts.GrayLevels),
	}
}

// Extract processes every file independently, sequentially or across a
// bounded worker pool. Result order always matches input order; a batch
// succeeds when at least one file does.
func (o *Orchestrator) Extract(paths []string, parallel bool) models.BatchResult {
	start := time.Now()
	batchID := uuid.NewString()

	mode := models.ModeSequential
	if parallel {
		mode = models.ModeParallel
	}
	logger.WithFields(logrus.Fields{
		"batch_id": batchID,
		"files":    len(paths),
		"mode":     mode,
	}).Info("Starting feature extraction batch")

	results := make([]models.FileResult, len(paths))
	if parallel && len(paths) > 1 {
		pool := NewWorkerPool(o.opts.MaxWorkers)
		pool.Start()
		for i, path := range paths {
			i, path := i, path
			pool.Submit(func() {
				results[i] = o.extractOne(batchID, path)
			})
		}
		pool.Wait()
		pool.Close()
	} else {
		for i, path := range paths {
			results[i] = o.extractOne(batchID, path)
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	batch := models.BatchResult{
		Success:   succeeded > 0,
		Results:   results,
		TotalTime: time.Since(start).Seconds(),
		Mode:      mode,
		Processed: len(paths),
		Succeeded: succeeded,
		Failed:    len(paths) - succeeded,
		BatchID:   batchID,
	}

	logger.WithFields(logrus.Fields{
		"batch_id":  batchID,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
		"seconds":   batch.TotalTime,
	}).Info("Feature extraction batch completed")

	return batch
}

// extractOne runs the full pipeline for a single file. Every failure in
// any stage is converted into a failed FileResult; nothing propagates to
// sibling files.
func (o *Orchestrator) extractOne(batchID, path string) models.FileResult {
	filename := filepath.Base(path)

	vol, err := o.decoder.Decode(path)
	if err != nil {
		return o.failResult(batchID, filename, err)
	}

	pre, err := volume.Preprocess(vol, o.opts.GrayLevels)
	if err != nil {
		return o.failResult(batchID, filename, err)
	}

	set := make(models.FeatureSet, 0, 5)
	stages := []func() (models.FeatureCategory, error){
		func() (models.FeatureCategory, error) {
			return o.firstOrder.Calculate(pre.Intensities, vol.Spacing.VoxelVolume())
		},
		func() (models.FeatureCategory, error) {
			return o.shape.Calculate(pre.Mask, vol.Spacing)
		},
		func() (models.FeatureCategory, error) { return o.glcm.Calculate(pre.Quantized) },
		func() (models.FeatureCategory, error) { return o.glrlm.Calculate(pre.Quantized) },
		func() (models.FeatureCategory, error) { return o.glszm.Calculate(pre.Quantized) },
	}
	for _, stage := range stages {
		cat, err := stage()
		if err != nil {
			return o.failResult(batchID, filename, err)
		}
		set = append(set, cat)
	}

	if err := set.Validate(); err != nil {
		return o.failResult(batchID, filename,
			apperrors.NewComputationError("non-finite feature value", err))
	}

	return models.FileResult{
		Filename:     filename,
		Success:      true,
		FeatureCount: set.Count(),
		Features:     set,
	}
}

func (o *Orchestrator) failResult(batchID, filename string, err error) models.FileResult {
	logger.WithError(err).WithFields(logrus.Fields{
		"batch_id": batchID,
		"file":     filename,
	}).Warn("File extraction failed")

	return models.FileResult{
		Filename: filename,
		Success:  false,
		Error:    err.Error(),
	}
}
