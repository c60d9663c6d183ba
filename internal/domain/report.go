package domain

// Feedback is the fixed-shape record every feedback node asks the model for.
type Feedback struct {
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}

type Evaluation string

const (
	EvaluationApproved    Evaluation = "approved"
	EvaluationNotApproved Evaluation = "not approved"
)

type OverallFeedback struct {
	Feedback   string     `json:"feedback"`
	Evaluation Evaluation `json:"evaluation"`
}

// Report is the state carried through the essay pipeline. Each node fills in its fields.
type Report struct {
	Topic     string           `json:"topic"`
	Essay     string           `json:"essay"`
	Depth     *Feedback        `json:"depth,omitempty"`
	Grammar   *Feedback        `json:"grammar,omitempty"`
	Structure *Feedback        `json:"structure,omitempty"`
	AvgScore  float64          `json:"avg_score"`
	Overall   *OverallFeedback `json:"overall,omitempty"`
}
