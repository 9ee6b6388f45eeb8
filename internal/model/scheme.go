package model

// Option is a single selectable answer to an eligibility question
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is one step of the scheme eligibility questionnaire
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Scheme describes a government scheme and the income brackets it covers
type Scheme struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Eligible    []string `json:"eligible"`
}
