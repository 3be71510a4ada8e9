// Package export renders one extraction result as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/doni010520/ocr-pdf/internal/pipeline"
)

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultXLSX returns an XLSX workbook (as bytes) for one pipeline result:
// a summary sheet with the typed fields and a detail sheet with every
// generic match.
func (s *Service) ResultXLSX(res *pipeline.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const summary = "Resumo"
	const detail = "Dados"

	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}

	writeRow := func(sheet string, row int, values ...any) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow(summary, 1, "Campo", "Valor")
	row := 2
	put := func(field string, value any) {
		writeRow(summary, row, field, value)
		row++
	}
	put("Arquivo", res.Document.Name)
	put("Tamanho (bytes)", res.Document.Size)
	put("Tipo MIME", res.Document.MIMEType)
	put("Modo", string(res.Mode))
	put("Usou OCR", res.UsedOCR)
	put("Convertido para imagem", res.Rasterized)
	put("Tipo de documento", string(res.Fields.Label()))
	put("Confiança", res.Fields.Quality.Confidence)
	for field, value := range res.Fields.TypedFields {
		put(field, value)
	}

	writeRow(detail, 1, "Categoria", "Valor", "Detalhe")
	drow := 2
	add := func(category, value, extra string) {
		writeRow(detail, drow, category, value, extra)
		drow++
	}
	for _, m := range res.Fields.Money {
		add("valor_monetario", m.Original, fmt.Sprintf("%.2f", m.Value))
	}
	for _, d := range res.Fields.Dates {
		add("data", d, "")
	}
	for _, id := range res.Fields.TaxIDs {
		add(strings.ToLower(id.Kind), id.Value, "")
	}
	for _, n := range res.Fields.DocNumbers {
		add("numero_documento", n.Number, n.Label)
	}
	for _, e := range res.Fields.Emails {
		add("email", e, "")
	}
	for _, p := range res.Fields.Phones {
		add("telefone", p, "")
	}
	for _, c := range res.Fields.Companies {
		add("empresa", c, "")
	}
	for _, k := range res.Fields.Keywords {
		add("palavra_chave", k, "")
	}

	_ = f.SetColWidth(summary, "A", "A", 26)
	_ = f.SetColWidth(summary, "B", "B", 48)
	_ = f.SetColWidth(detail, "A", "A", 20)
	_ = f.SetColWidth(detail, "B", "B", 48)
	_ = f.SetColWidth(detail, "C", "C", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"file", res.Document.Name,
		"rows", drow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
