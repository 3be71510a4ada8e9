package ocrspace

import "encoding/json"

// envelope is the JSON response shape of the parse endpoint.
type envelope struct {
	IsErroredOnProcessing bool           `json:"IsErroredOnProcessing"`
	ErrorMessage          stringList     `json:"ErrorMessage"`
	ParsedResults         []parsedResult `json:"ParsedResults"`
}

type parsedResult struct {
	ParsedText string `json:"ParsedText"`
}

// stringList tolerates the service sending ErrorMessage as either a single
// string or an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one != "" {
		*s = []string{one}
	}
	return nil
}
