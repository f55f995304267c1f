package domain

// BrokerTask is a missing-required-field follow-up produced by the form mapper.
// Consumed as metadata only; tasks are never scored.
type BrokerTask struct {
	FieldName         string `json:"field_name"`
	FormSection       string `json:"form_section,omitempty"`
	SuggestedQuestion string `json:"suggested_question,omitempty"`
}

// MappedFormOutput is the pre-validated record the form mapper hands over.
// Absent facts are zero values; the mapper never fabricates.
type MappedFormOutput struct {
	BusinessName            string       `json:"business_name"`
	IndustryCode            string       `json:"industry_code,omitempty"`
	State                   string       `json:"state,omitempty"`
	Hazards                 []string     `json:"hazards,omitempty"`
	AlcoholPercentage       float64      `json:"alcohol_percentage,omitempty"`
	LiquorLiabilityRequired bool         `json:"liquor_liability_required,omitempty"`
	LiveEntertainment       bool         `json:"live_entertainment,omitempty"`
	AnnualRevenue           float64      `json:"annual_revenue,omitempty"`
	SocialContextNotes      string       `json:"social_context_notes,omitempty"`
	BrokerTasks             []BrokerTask `json:"broker_tasks,omitempty"`
}

// RiskProfile is the normalized subset of submission facts relevant to
// underwriter matching. Derived once per submission; re-derive instead of
// patching if the source data changes.
type RiskProfile struct {
	IndustryCode            string   `json:"industry_code,omitempty"`
	Region                  Region   `json:"region,omitempty"`
	Hazards                 []string `json:"hazards,omitempty"`
	RequiresLiquorLiability bool     `json:"requires_liquor_liability"`
	BusinessTypeTags        []string `json:"business_type_tags,omitempty"`
}

// ScoredCandidate pairs an underwriter with its score and the ordered trace of
// contributing factors, one entry per non-zero term.
type ScoredCandidate struct {
	Underwriter   UnderwriterRecord `json:"underwriter"`
	Score         float64           `json:"score"`
	Justification []string          `json:"justification"`
}
