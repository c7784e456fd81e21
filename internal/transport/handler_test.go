package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-radiomics-extractor/internal/config"
	"go-radiomics-extractor/pkg/models"
)

// fakeExtractor records the last call and answers with a canned batch.
type fakeExtractor struct {
	lastPaths    []string
	lastParallel bool
}

func (f *fakeExtractor) Extract(paths []string, parallel bool) models.BatchResult {
	f.lastPaths = paths
	f.lastParallel = parallel

	mode := models.ModeSequential
	if parallel {
		mode = models.ModeParallel
	}
	results := make([]models.FileResult, len(paths))
	for i, p := range paths {
		cat := models.FeatureCategory{Name: models.CategoryFirstOrder}
		cat.Add("mean", 1.5)
		results[i] = models.FileResult{
			Filename:     p,
			Success:      true,
			FeatureCount: 1,
			Features:     models.FeatureSet{cat},
		}
	}
	return models.BatchResult{
		Success:   len(paths) > 0,
		Results:   results,
		TotalTime: 0.01,
		Mode:      mode,
		Processed: len(paths),
		Succeeded: len(paths),
		BatchID:   "test-batch",
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 1 << 20,
		GrayLevels:         256,
		MaxRunLength:       50,
	}
}

func newTestServer() (*fakeExtractor, http.Handler) {
	gin.SetMode(gin.TestMode)
	ex := &fakeExtractor{}
	return ex, NewHandler(ex, testConfig())
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON body: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("Expected status available, got %q", body["status"])
	}
}

func TestExtractEndpoint(t *testing.T) {
	ex, handler := newTestServer()

	payload := `{"archivos": ["a.rvol", "b.rvol"], "paralelo": true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ex.lastPaths) != 2 || !ex.lastParallel {
		t.Errorf("Expected 2 parallel paths forwarded, got %v (parallel=%v)",
			ex.lastPaths, ex.lastParallel)
	}

	body := w.Body.String()
	for _, key := range []string{
		`"modo_usado":"paralelo"`, `"archivos_procesados":2`,
		`"archivo":"a.rvol"`, `"num_caracteristicas":1`, `"caracteristicas"`,
	} {
		if !strings.Contains(body, key) {
			t.Errorf("Expected %s in response %s", key, body)
		}
	}
	if strings.Contains(body, "test-batch") {
		t.Error("Expected batch id excluded from the response")
	}
}

func TestExtractRejectsMalformedJSON(t *testing.T) {
	_, handler := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{"archivos": [`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestExtractRejectsEmptyFileList(t *testing.T) {
	_, handler := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{"archivos": []}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty list, got %d", w.Code)
	}
}

func TestExtractRejectsBlankPath(t *testing.T) {
	_, handler := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract",
		strings.NewReader(`{"archivos": ["a.rvol", "  "]}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank path, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "index 1") {
		t.Errorf("Expected offending index in %s", w.Body.String())
	}
}

func TestExtractRejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.MaxRequestBodySize = 32
	handler := NewHandler(&fakeExtractor{}, cfg)

	payload := `{"archivos": ["` + strings.Repeat("x", 128) + `.rvol"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for oversized body, got %d", w.Code)
	}
}
