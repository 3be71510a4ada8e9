package extract

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildFieldsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the extracted-data object. It is the published
// contract for API consumers and is used locally to validate payloads.
func BuildFieldsJSONSchema() map[string]any {
	moneyItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"texto_original": map[string]any{"type": "string"},
			"valor_numerico": map[string]any{"type": "number"},
		},
		"required": []string{"texto_original", "valor_numerico"},
	}
	taxIDItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"tipo":  map[string]any{"type": "string", "enum": []string{"CPF", "CNPJ"}},
			"valor": map[string]any{"type": "string"},
		},
		"required": []string{"tipo", "valor"},
	}
	docNumberItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"tipo":   map[string]any{"type": "string"},
			"numero": map[string]any{"type": "string"},
		},
		"required": []string{"tipo", "numero"},
	}
	stringList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"tipo_documento":     map[string]any{"type": "string"},
			"dados_extraidos":    map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}},
			"valores_monetarios": map[string]any{"type": "array", "items": moneyItem},
			"datas":              stringList,
			"numeros_documento":  map[string]any{"type": "array", "items": docNumberItem},
			"emails":             stringList,
			"telefones":          stringList,
			"cpf_cnpj":           map[string]any{"type": "array", "items": taxIDItem},
			"empresas":           stringList,
			"palavras_chave":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": maxKeywords},
			"qualidade_extracao": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"total_caracteres":       map[string]any{"type": "integer", "minimum": 0},
					"tem_dados_estruturados": map[string]any{"type": "boolean"},
					"quantidade_valores":     map[string]any{"type": "integer", "minimum": 0},
					"quantidade_datas":       map[string]any{"type": "integer", "minimum": 0},
					"confianca":              map[string]any{"type": "integer", "minimum": 0, "maximum": maxScore},
				},
				"required": []string{"confianca"},
			},
		},
		"required": []string{"tipo_documento", "dados_extraidos", "qualidade_extracao"},
	}
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// compiledFieldsSchema compiles the schema once.
func compiledFieldsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := json.Marshal(BuildFieldsJSONSchema())
		if err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = jsonschema.CompileString("fields.schema.json", string(raw))
	})
	return compiledSchema, schemaErr
}

// ValidateJSON checks a serialized extracted-data object against the
// published schema.
func ValidateJSON(data []byte) error {
	sch, err := compiledFieldsSchema()
	if err != nil {
		return fmt.Errorf("compile fields schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse fields payload: %w", err)
	}
	return sch.Validate(v)
}
