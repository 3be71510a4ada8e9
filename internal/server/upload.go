package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/doni010520/ocr-pdf/constants"
	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/pipeline"
)

// saveUpload writes the multipart "file" part into the upload directory and
// returns the scoped Document. The handler owns cleanup.
func (s *Service) saveUpload(r *http.Request) (pipeline.Document, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.Document{}, common.NewAppError("NO_FILE",
			"no file provided", common.ErrUnsupportedInput)
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return pipeline.Document{}, common.NewAppError("BAD_FORMAT",
			fmt.Sprintf("unsupported file extension %q", ext), common.ErrUnsupportedInput)
	}

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		return pipeline.Document{}, fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(s.cfg.Upload.Dir, pipeline.TempFileName("."+ext))
	out, err := os.Create(dst)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(out, file)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return pipeline.Document{}, fmt.Errorf("write temp file: %w", err)
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = constants.MapExtToMIME(ext)
	}
	return pipeline.Document{
		Path:     dst,
		MIMEType: mime,
		Name:     header.Filename,
		Size:     n,
	}, nil
}

func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)

	doc, err := s.saveUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer doc.Cleanup(s.logger)

	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.processor.Process(r.Context(), doc, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(res, r.FormValue("include_raw_text") == "true"))
}

type processURLRequest struct {
	URL            string `json:"url"`
	Mode           string `json:"mode"`
	IncludeRawText bool   `json:"include_raw_text"`
}

func (s *Service) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	var req processURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	defer doc.Cleanup(s.logger)

	res, err := s.processor.Process(r.Context(), doc, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(res, req.IncludeRawText))
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)

	doc, err := s.saveUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer doc.Cleanup(s.logger)

	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.processor.Process(r.Context(), doc, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	xlsx, err := s.exporter.ResultXLSX(res)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extracao.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}
