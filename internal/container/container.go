package container

import (
	"net/http"

	"go-radiomics-extractor/internal/config"
	"go-radiomics-extractor/internal/extractor"
	"go-radiomics-extractor/internal/storage"
	"go-radiomics-extractor/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	decoder   storage.VolumeDecoder
	extractor extractor.FeatureExtractor
	handler   http.Handler
}

// NewContainer wires the dependency graph: decoder into orchestrator into
// the HTTP handler.
func NewContainer(cfg *config.Config) (*Container, error) {
	decoder := storage.NewRawVolumeDecoder()

	opts := extractor.DefaultOptions().
		WithGrayLevels(cfg.GrayLevels).
		WithRunLength(cfg.MaxRunLength).
		WithWorkers(cfg.MaxWorkers)

	orch := extractor.NewOrchestrator(decoder, opts)
	handler := transport.NewHandler(orch, cfg)

	return &Container{
		config:    cfg,
		decoder:   decoder,
		extractor: orch,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Extractor returns the feature extractor
func (c *Container) Extractor() extractor.FeatureExtractor {
	return c.extractor
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
