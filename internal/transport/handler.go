package transport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-radiomics-extractor/internal/config"
	apperrors "go-radiomics-extractor/internal/errors"
	"go-radiomics-extractor/internal/extractor"
	"go-radiomics-extractor/internal/logger"
)

// ExtractionRequest is the wire request for a batch extraction.
type ExtractionRequest struct {
	Files    []string `json:"archivos" binding:"required,min=1"`
	Parallel bool     `json:"paralelo"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP surface: a health probe and the batch
// extraction endpoint.
func NewHandler(ex extractor.FeatureExtractor, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck)
	r.POST("/extract", extractBatch(ex))

	return r
}

func extractBatch(ex extractor.FeatureExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing extraction request")

		var req ExtractionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := validateFilePaths(req.Files); err != nil {
			logger.WithError(err).Error("Invalid file list")
			respondError(c, apperrors.GetStatusCode(err), "invalid file list", err)
			return
		}

		// Per-file failures live inside the batch result; the HTTP
		// status stays 200 even for a fully failed batch.
		result := ex.Extract(req.Files, req.Parallel)

		logger.WithFields(logrus.Fields{
			"batch_id":           result.BatchID,
			"files":              result.Processed,
			"succeeded":          result.Succeeded,
			"failed":             result.Failed,
			"mode":               result.Mode,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Extraction request completed")

		c.JSON(http.StatusOK, result)
	}
}

func validateFilePaths(paths []string) error {
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("empty file path at index %d", i), nil)
		}
	}
	return nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
