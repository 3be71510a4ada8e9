package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/doni010520/ocr-pdf/constants"
	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/extract"
	"github.com/doni010520/ocr-pdf/internal/ocr"
	"github.com/doni010520/ocr-pdf/internal/ocrspace"
	"github.com/doni010520/ocr-pdf/internal/pipeline"
)

// rawTextPreview caps raw_text when the client did not ask for all of it.
const rawTextPreview = 500

type fileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type processingInfo struct {
	Mode             string `json:"mode"`
	PDFHasText       bool   `json:"pdf_has_text"`
	UsedOCR          bool   `json:"used_ocr"`
	ConvertedToImage bool   `json:"converted_to_image"`
	ProcessingTime   string `json:"processing_time"`
}

type processResponse struct {
	Success         bool           `json:"success"`
	File            fileInfo       `json:"file"`
	ProcessingInfo  processingInfo `json:"processing_info"`
	DocumentType    string         `json:"document_type"`
	ExtractedData   extract.Fields `json:"extracted_data"`
	RawText         string         `json:"raw_text"`
	ConfidenceScore int            `json:"confidence_score"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// buildResponse assembles the public payload for one pipeline result.
func buildResponse(res *pipeline.Result, includeRawText bool) processResponse {
	raw := res.RawText
	if !includeRawText && len(raw) > rawTextPreview {
		raw = raw[:rawTextPreview] + "..."
	}
	fields := res.Fields
	fields.DocType = fields.Label()

	return processResponse{
		Success: true,
		File: fileInfo{
			Name: res.Document.Name,
			Size: res.Document.Size,
			Type: res.Document.MIMEType,
		},
		ProcessingInfo: processingInfo{
			Mode:             string(res.Mode),
			PDFHasText:       res.PDFHasText,
			UsedOCR:          res.UsedOCR,
			ConvertedToImage: res.Rasterized,
			ProcessingTime:   res.ProcessedAt.Format(time.RFC3339),
		},
		DocumentType:    string(fields.DocType),
		ExtractedData:   fields,
		RawText:         raw,
		ConfidenceScore: fields.Quality.Confidence,
	}
}

func capabilitiesPayload(maxUploadBytes int64) map[string]any {
	types := make([]string, 0, len(constants.DocTypes)+1)
	for _, t := range constants.DocTypes {
		types = append(types, string(t))
	}
	types = append(types, "Documento Genérico")

	return map[string]any{
		"supported_formats": []string{"PDF", "JPG", "JPEG", "PNG", "GIF", "BMP"},
		"max_file_size":     maxUploadBytes,
		"document_types":    types,
		"extraction_modes": map[string]string{
			"smart":     "Detecta automaticamente o melhor método",
			"ocr_only":  "Força uso de OCR mesmo com texto",
			"text_only": "Extrai apenas texto nativo (PDFs)",
		},
		"data_extracted": []string{
			"valores_monetarios",
			"datas",
			"cpf_cnpj",
			"emails",
			"telefones",
			"numeros_documento",
			"empresas",
			"palavras_chave",
			"dados_especificos_por_tipo",
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline failures to HTTP statuses and attaches the
// remediation hint the original API promised.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{
		Error:   err.Error(),
		Details: "Verifique se o arquivo é válido",
	}

	var se *ocrspace.ServiceError
	var te *ocrspace.TransportError
	var ce *ocr.ConversionError
	switch {
	case errors.Is(err, common.ErrUnsupportedInput), errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
		resp.Suggestion = "Tente com mode=ocr_only se o PDF for baseado em imagem"
	case errors.As(err, &se), errors.As(err, &te):
		status = http.StatusBadGateway
		resp.Details = "O serviço de OCR não conseguiu processar o documento"
		resp.Suggestion = "Tente novamente em instantes ou envie um arquivo menor"
	case errors.As(err, &ce):
		resp.Details = "A conversão de PDF para imagem falhou"
		resp.Suggestion = "Instale poppler-utils ou envie o documento como imagem"
	default:
		resp.Suggestion = "Tente com mode=ocr_only se o PDF for baseado em imagem"
	}

	writeJSON(w, status, resp)
}
