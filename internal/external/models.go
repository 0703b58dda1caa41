package external

// TranslateRequest is the body of POST /translate
type TranslateRequest struct {
	Texts      []string `json:"texts"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

// TranslateResponse holds translations in request order
type TranslateResponse struct {
	Translations []string `json:"translations"`
}
