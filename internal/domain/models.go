package domain

// Outcome is the result of probing one concrete hostname.
// Only domain/success/message are part of the persisted artifact.
type Outcome struct {
	Domain     string  `json:"domain"`
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	IP         string  `json:"-"`
	HTTPStatus int     `json:"-"`
	LatencyMS  float64 `json:"-"`
}

type CategoryResult struct {
	Category string
	Outcomes []Outcome
}

// Failures returns the outcomes that were judged unreachable.
func (c CategoryResult) Failures() []Outcome {
	var out []Outcome
	for _, o := range c.Outcomes {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}
