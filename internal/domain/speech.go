package domain

// DecodeOptions configures the speech recognition model
type DecodeOptions struct {
	Language                string
	BeamSize                int
	ConditionOnPreviousText bool
}

// Segment is one chunk of recognized speech, in emitted order
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
