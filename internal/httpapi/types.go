package httpapi

import (
	"encoding/json"
	"fmt"
)

// stringOrSlice decodes a JSON value that may be either a single string or a
// list of strings, remembering which shape the caller used so the response
// can mirror it back: scalar in, scalar out; list in, list out.
type stringOrSlice struct {
	values   []string
	isScalar bool
	set      bool
}

func (s *stringOrSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		s.values = []string{single}
		s.isScalar = true
		s.set = true
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		s.values = list
		s.isScalar = false
		s.set = true
		return nil
	}

	return fmt.Errorf("must be a string or an array of strings")
}

// translateRequestBody is the decoded JSON body of POST /api/translate.
type translateRequestBody struct {
	Src               stringOrSlice  `json:"src"`
	SrcLang           *stringOrSlice `json:"src_lang"`
	TgtLang           string         `json:"tgt_lang"`
	BeamSize          *int           `json:"beam_size"`
	Patience          *int           `json:"patience"`
	LengthPenalty     *float64       `json:"length_penalty"`
	CoveragePenalty   *float64       `json:"coverage_penalty"`
	RepetitionPenalty *float64       `json:"repetition_penalty"`
	MaxDecodingLength *int           `json:"max_decoding_length"`
}

// translateResponseBody is the JSON body of a successful /api/translate
// response. Each "or slice" field is emitted scalar iff the request's src
// was a scalar.
type translateResponseBody struct {
	Translation    any     `json:"translation"`
	SrcLang        any     `json:"src_lang"`
	SrcLangScore   any     `json:"src_lang_score"`
	TgtLang        string  `json:"tgt_lang"`
	ProcessingTime float64 `json:"processing_time"`
	ModelUsed      any     `json:"model_used"`
}

// identifyRequestBody is the decoded JSON body of POST /api/identify-language.
type identifyRequestBody struct {
	Src       stringOrSlice `json:"src"`
	K         *int          `json:"k"`
	Threshold *float64      `json:"threshold"`
}

// identifyResponseBody is the JSON body of a successful
// /api/identify-language response.
type identifyResponseBody struct {
	Results        any     `json:"results"`
	ProcessingTime float64 `json:"processing_time"`
}

type langResult struct {
	Lang  string  `json:"lang"`
	Score float64 `json:"score"`
}

type modelInfoBody struct {
	ModelID string `json:"model_id"`
	SrcLang string `json:"src_lang"`
	TgtLang string `json:"tgt_lang"`
	Loaded  bool   `json:"loaded"`
}

type modelsResponseBody struct {
	Models []modelInfoBody `json:"models"`
}

type languagesResponseBody map[string][]string

type healthResponseBody struct {
	Status       string   `json:"status"`
	LoadedModels []string `json:"loaded_models"`
	MaxModels    int      `json:"max_models"`
}

// errorBody is the JSON body written on any non-2xx response.
type errorBody struct {
	Detail string `json:"detail"`
}

// scalarOrSlice returns v[0] when isScalar is true and len(v)==1, else v
// itself — the inverse of [stringOrSlice.UnmarshalJSON]'s shape tracking,
// applied to any parallel output slice.
func scalarOrSlice[T any](v []T, isScalar bool) any {
	if isScalar && len(v) == 1 {
		return v[0]
	}
	return v
}
