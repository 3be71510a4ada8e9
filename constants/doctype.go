package constants

// DocType is the classified document category. Values are the canonical
// Portuguese labels returned in API payloads.
type DocType string

const (
	DocTypeEnergia    DocType = "Conta de Energia"
	DocTypeNotaFiscal DocType = "Nota Fiscal"
	DocTypeBoleto     DocType = "Boleto"
	DocTypeContrato   DocType = "Contrato"
	DocTypeExtrato    DocType = "Extrato Bancário"
	DocTypeCurriculo  DocType = "Currículo"
	DocTypeReceita    DocType = "Receita Médica"
	DocTypeCertidao   DocType = "Certidão/Certificado"
	DocTypeOrcamento  DocType = "Orçamento"
	DocTypeRecibo     DocType = "Recibo"

	// DocTypeUnknown is the label used when no signature matched.
	DocTypeUnknown DocType = "Não identificado"
)

// DocTypes lists every classifiable category in classification priority order.
var DocTypes = []DocType{
	DocTypeEnergia,
	DocTypeNotaFiscal,
	DocTypeBoleto,
	DocTypeContrato,
	DocTypeExtrato,
	DocTypeCurriculo,
	DocTypeReceita,
	DocTypeCertidao,
	DocTypeOrcamento,
	DocTypeRecibo,
}
