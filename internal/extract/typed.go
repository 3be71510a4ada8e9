package extract

import (
	"regexp"
	"strings"

	"github.com/doni010520/ocr-pdf/constants"
)

// fieldRule captures one type-specific field: a name, the pattern that finds
// it, and an optional prefix restored onto the captured value. Each field is
// independently optional.
type fieldRule struct {
	field  string
	re     *regexp.Regexp
	prefix string
}

// typedRules holds the extra field set evaluated after classification.
var typedRules = map[constants.DocType][]fieldRule{
	constants.DocTypeEnergia: {
		{"cliente", regexp.MustCompile(`(?i)(?:CLIENTE|NOME|TITULAR)[:\s]+([^\n]+)`), ""},
		{"vencimento", regexp.MustCompile(`(?i)(?:VENCIMENTO|VENCE)[:\s]*(\d{2}[/\-]\d{2}[/\-]\d{4})`), ""},
		{"valor_total", regexp.MustCompile(`(?i)(?:TOTAL|VALOR)\s*:?\s*R\$\s*([\d.,]+)`), "R$ "},
		{"consumo_kwh", regexp.MustCompile(`(?i)(\d+)\s*KWH`), ""},
		{"numero_instalacao", regexp.MustCompile(`(?i)(?:INSTALA[ÇC][ÃA]O|UC|CONTA)[:\s]*(\d{6,})`), ""},
	},
	constants.DocTypeNotaFiscal: {
		{"numero_nf", regexp.MustCompile(`(?i)(?:NF-?e?|NOTA FISCAL)[:\s]*(\d+)`), ""},
		{"chave_acesso", regexp.MustCompile(`(\d{44})`), ""},
		{"data_emissao", regexp.MustCompile(`(?i)(?:EMISS[ÃA]O|EMITIDA)[:\s]*(\d{2}[/\-]\d{2}[/\-]\d{4})`), ""},
		{"valor_total", regexp.MustCompile(`(?i)(?:VALOR TOTAL|TOTAL)[:\s]*R\$\s*([\d.,]+)`), "R$ "},
	},
	constants.DocTypeBoleto: {
		{"codigo_barras", regexp.MustCompile(`(\d{5}\.\d{5}\s\d{5}\.\d{6}\s\d{5}\.\d{6}\s\d\s\d{14})`), ""},
		{"vencimento", regexp.MustCompile(`(?i)VENCIMENTO[:\s]*(\d{2}[/\-]\d{2}[/\-]\d{4})`), ""},
		{"valor", regexp.MustCompile(`(?i)VALOR[:\s]*R\$\s*([\d.,]+)`), ""},
	},
}

// extractTyped runs the field set for the classified type. Unclassified
// documents and types without a field set yield an empty map.
func extractTyped(docType constants.DocType, text string) map[string]string {
	out := map[string]string{}
	for _, rule := range typedRules[docType] {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		out[rule.field] = rule.prefix + value
	}
	return out
}
