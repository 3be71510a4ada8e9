// Package extract turns raw OCR text into typed fields using an ordered
// battery of pattern rules. Extraction is pure and best-effort: a pattern
// that does not match leaves its field empty, never errors.
package extract

import "github.com/doni010520/ocr-pdf/constants"

// Money is a monetary literal paired with its normalized numeric value.
type Money struct {
	Original string  `json:"texto_original"`
	Value    float64 `json:"valor_numerico"`
}

// TaxID is a national tax identifier tagged by which format matched.
type TaxID struct {
	Kind  string `json:"tipo"` // "CPF" | "CNPJ"
	Value string `json:"valor"`
}

// DocNumber is a labeled reference number such as "NF: 12345".
type DocNumber struct {
	Label  string `json:"tipo"`
	Number string `json:"numero"`
}

// Quality summarizes how much structure the battery recovered.
type Quality struct {
	TotalChars     int  `json:"total_caracteres"`
	HasTypedFields bool `json:"tem_dados_estruturados"`
	MoneyCount     int  `json:"quantidade_valores"`
	DateCount      int  `json:"quantidade_datas"`
	Confidence     int  `json:"confianca"`
}

// Fields is the full structured-extraction result for one document.
// JSON field names keep the original API's Portuguese vocabulary.
type Fields struct {
	DocType     constants.DocType `json:"tipo_documento"`
	TypedFields map[string]string `json:"dados_extraidos"`
	Money       []Money           `json:"valores_monetarios"`
	Dates       []string          `json:"datas"`
	DocNumbers  []DocNumber       `json:"numeros_documento"`
	Emails      []string          `json:"emails"`
	Phones      []string          `json:"telefones"`
	TaxIDs      []TaxID           `json:"cpf_cnpj"`
	Companies   []string          `json:"empresas"`
	Keywords    []string          `json:"palavras_chave"`
	Quality     Quality           `json:"qualidade_extracao"`
}

// Classified reports whether a document-type signature matched.
func (f *Fields) Classified() bool {
	return f.DocType != "" && f.DocType != constants.DocTypeUnknown
}

// Label returns the document type for display, mapping the unclassified case
// to the canonical unknown label.
func (f *Fields) Label() constants.DocType {
	if !f.Classified() {
		return constants.DocTypeUnknown
	}
	return f.DocType
}

func newFields() Fields {
	return Fields{
		TypedFields: map[string]string{},
		Money:       []Money{},
		Dates:       []string{},
		DocNumbers:  []DocNumber{},
		Emails:      []string{},
		Phones:      []string{},
		TaxIDs:      []TaxID{},
		Companies:   []string{},
		Keywords:    []string{},
	}
}
