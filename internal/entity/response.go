package entity

type Provenance string

const (
	ProvenanceCanonical Provenance = "canonical"
	ProvenanceCorrected Provenance = "corrected"
)

type ResponsePayload struct {
	ResponseText    string     `json:"response_text"`
	Recommendations []string   `json:"recommendations"`
	Provenance      Provenance `json:"provenance"`
}
