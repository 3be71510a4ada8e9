package extract

import "strings"

// Extract runs the full battery over raw text. It is a pure function and
// never fails: empty or garbage input simply produces an empty result with
// confidence 0.
func Extract(text string) Fields {
	f := newFields()
	folded := fold(text)

	f.DocType = classify(folded)

	for _, literal := range reMoney.FindAllString(text, -1) {
		f.Money = append(f.Money, Money{
			Original: literal,
			Value:    ParseAmount(literal),
		})
	}

	f.Dates = dedupe(reDate.FindAllString(text, -1))
	f.Emails = dedupe(reEmail.FindAllString(text, -1))
	f.Phones = dedupe(rePhone.FindAllString(text, -1))

	for _, v := range dedupe(reCPF.FindAllString(text, -1)) {
		f.TaxIDs = append(f.TaxIDs, TaxID{Kind: "CPF", Value: v})
	}
	for _, v := range dedupe(reCNPJ.FindAllString(text, -1)) {
		f.TaxIDs = append(f.TaxIDs, TaxID{Kind: "CNPJ", Value: v})
	}

	// Labeled numbers keep document order and allow duplicates.
	for _, m := range reDocNumber.FindAllStringSubmatch(text, -1) {
		f.DocNumbers = append(f.DocNumbers, DocNumber{
			Label:  strings.ToUpper(m[1]),
			Number: m[2],
		})
	}

	for _, c := range dedupe(reCompany.FindAllString(text, -1)) {
		f.Companies = append(f.Companies, strings.TrimSpace(c))
	}

	keywords := dedupe(reKeyword.FindAllString(text, -1))
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	f.Keywords = keywords

	f.TypedFields = extractTyped(f.DocType, text)

	f.Quality = Quality{
		TotalChars:     len(text),
		HasTypedFields: len(f.TypedFields) > 0,
		MoneyCount:     len(f.Money),
		DateCount:      len(f.Dates),
	}
	f.Quality.Confidence = score(&f)

	return f
}

// dedupe removes duplicates preserving first-appearance order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
