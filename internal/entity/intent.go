package entity

type IntentLabel string

const (
	IntentGutHealth      IntentLabel = "gut_health"
	IntentProbioticInfo  IntentLabel = "probiotic_info"
	IntentFiberInfo      IntentLabel = "fiber_info"
	IntentDiversityInfo  IntentLabel = "diversity_info"
	IntentDietSuggestion IntentLabel = "diet_suggestion"
	IntentHello          IntentLabel = "hello"
	IntentUnknown        IntentLabel = "unknown"
)

var IntentLabels = []IntentLabel{
	IntentGutHealth,
	IntentProbioticInfo,
	IntentFiberInfo,
	IntentDiversityInfo,
	IntentDietSuggestion,
	IntentHello,
	IntentUnknown,
}

func IsValidIntent(label string) bool {
	switch IntentLabel(label) {
	case IntentGutHealth, IntentProbioticInfo, IntentFiberInfo, IntentDiversityInfo,
		IntentDietSuggestion, IntentHello, IntentUnknown:
		return true
	default:
		return false
	}
}

func (i IntentLabel) String() string {
	return string(i)
}

type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ClassificationResult struct {
	Intent      IntentLabel `json:"intent"`
	Keywords    []string    `json:"keywords"`
	Entities    []Entity    `json:"entities"`
	Confidence  float64     `json:"confidence"`
	MatchedRule string      `json:"matched_rule,omitempty"`
}
