// Package server is the thin HTTP surface over the processing pipeline:
// multipart upload in, JSON (or XLSX) result out.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/export"
	"github.com/doni010520/ocr-pdf/internal/pipeline"
)

// Version is the advertised service version.
const Version = "2.0.0"

type Service struct {
	cfg       *common.Config
	processor *pipeline.Processor
	fetcher   *pipeline.Fetcher
	exporter  *export.Service
	logger    *slog.Logger
}

func NewService(cfg *common.Config, proc *pipeline.Processor, fetcher *pipeline.Fetcher, exporter *export.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		processor: proc,
		fetcher:   fetcher,
		exporter:  exporter,
		logger:    logger,
	}
}

// Router builds the HTTP routing table.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/status", s.handleStatus)
	r.Get("/capabilities", s.handleCapabilities)
	r.Post("/process", s.handleProcess)
	r.Post("/process-url", s.handleProcessURL)
	r.Post("/export", s.handleExport)

	return r
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "Universal PDF OCR",
		"version": Version,
		"endpoints": map[string]string{
			"GET /status":       "API status",
			"GET /capabilities": "system capabilities",
			"POST /process":     "process an uploaded file",
			"POST /process-url": "process a remote document",
			"POST /export":      "process an uploaded file, respond with XLSX",
		},
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "online",
		"version": Version,
		"capabilities": []string{
			"Análise inteligente de PDF",
			"Detecção automática de tipo de documento",
			"Conversão automática quando necessário",
			"Extração de dados genérica",
			"Suporte a múltiplos tipos de documento",
		},
	})
}

func (s *Service) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, capabilitiesPayload(s.cfg.Upload.MaxBytes))
}
