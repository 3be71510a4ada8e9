package extract

import (
	"regexp"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/doni010520/ocr-pdf/constants"
)

// signature ties a document category to its keyword pattern. Categories are
// not mutually exclusive in raw text, so declaration order is the tie-break:
// the first matching signature wins.
type signature struct {
	docType constants.DocType
	re      *regexp.Regexp
}

// signatures is evaluated against diacritic-folded text, so each pattern only
// needs the unaccented spelling.
var signatures = []signature{
	{constants.DocTypeEnergia, regexp.MustCompile(`(?i)(?:CONTA|FATURA).*(?:ENERGIA|LUZ|ELETRICA)`)},
	{constants.DocTypeNotaFiscal, regexp.MustCompile(`(?i)(?:NOTA\s*FISCAL|NF-?e|DANFE)`)},
	{constants.DocTypeBoleto, regexp.MustCompile(`(?i)(?:BOLETO|COBRANCA|PAGAMENTO)`)},
	{constants.DocTypeContrato, regexp.MustCompile(`(?i)(?:CONTRATO|ACORDO|TERMO)`)},
	{constants.DocTypeExtrato, regexp.MustCompile(`(?i)(?:EXTRATO|SALDO|MOVIMENTACAO)`)},
	{constants.DocTypeCurriculo, regexp.MustCompile(`(?i)(?:CURRICULUM|CURRICULO|RESUME|\bCV\b)`)},
	{constants.DocTypeReceita, regexp.MustCompile(`(?i)(?:RECEITA|PRESCRICAO|MEDICA|MEDICO)`)},
	{constants.DocTypeCertidao, regexp.MustCompile(`(?i)(?:CERTIDAO|CERTIFICADO|DIPLOMA)`)},
	{constants.DocTypeOrcamento, regexp.MustCompile(`(?i)(?:ORCAMENTO|PROPOSTA|COTACAO)`)},
	{constants.DocTypeRecibo, regexp.MustCompile(`(?i)(?:RECIBO|COMPROVANTE)`)},
}

// classify returns the first matching category, or "" when nothing matched.
func classify(foldedText string) constants.DocType {
	for _, s := range signatures {
		if s.re.MatchString(foldedText) {
			return s.docType
		}
	}
	return ""
}

// foldDiacritics strips combining marks so ELÉTRICA and ELETRICA match the
// same signature. OCR output is inconsistent about accents.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

// Generic battery patterns, run on the raw text.
var (
	reMoney = regexp.MustCompile(`R\$\s*[\d.,]+|(?:R\$|RS)\s*\d+(?:[.,]\d{3})*(?:[.,]\d{2})?|\d+(?:[.,]\d{3})*(?:[.,]\d{2})\s*(?:reais|REAIS)`)
	reDate  = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-]\d{1,2}[/\-]\d{1,2}`)
	reCPF   = regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}|\b\d{11}\b`)
	reCNPJ  = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}|\b\d{14}\b`)
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`(?:\+?55\s?)?(?:\(?\d{2}\)?\s?)?(?:9\s?)?\d{4}[-\s]?\d{4}`)

	// Labeled reference numbers: "NF: 12345", "PROTOCOLO 9-88", "Nº 42"...
	reDocNumber = regexp.MustCompile(`(?i)(NF|NOTA|PROTOCOLO|C[ÓO]DIGO|REGISTRO|REF|Nº|N°|#)\s*:?\s*(\d[\d\-./]*)`)

	// Uppercase runs ending in a legal-entity suffix token. The \b anchors
	// keep suffixes like ME from matching inside ordinary words.
	reCompany = regexp.MustCompile(`[A-Z][A-Z\s]{3,}(?:S\.?A\.?\b|S/A|LTDA\b|ME\b|EPP\b|EIRELI\b|IND(?:[ÚU]STRIA)?\b|COM(?:[ÉE]RCIO)?\b)`)

	// Uppercase tokens of at least 4 letters, the generic keyword pool.
	reKeyword = regexp.MustCompile(`\b[A-Z]{4,}\b`)
)

// maxKeywords caps the keyword list at the first 20 distinct tokens.
const maxKeywords = 20
