package extract

// Confidence weights. An additive quality signal, not a probability.
const (
	ptsClassified  = 20
	ptsMoney       = 15
	ptsDates       = 15
	ptsTaxIDs      = 15
	ptsTypedFields = 20 // more than 3 type-specific fields populated
	ptsCompanies   = 15

	maxScore = 100
)

// score computes the extraction confidence in [0,100].
func score(f *Fields) int {
	s := 0
	if f.Classified() {
		s += ptsClassified
	}
	if len(f.Money) > 0 {
		s += ptsMoney
	}
	if len(f.Dates) > 0 {
		s += ptsDates
	}
	if len(f.TaxIDs) > 0 {
		s += ptsTaxIDs
	}
	if len(f.TypedFields) > 3 {
		s += ptsTypedFields
	}
	if len(f.Companies) > 0 {
		s += ptsCompanies
	}
	if s > maxScore {
		s = maxScore
	}
	return s
}
