package service

import "gram_sahay/internal/model"

// The questionnaire and scheme tables are fixed data; eligibility is
// decided by the income answer alone.
var eligibilityQuestions = []model.Question{
	{
		ID:       "income",
		Question: "What is your annual household income?",
		Options: []model.Option{
			{Value: "below_1lakh", Label: "Below 1 lakh"},
			{Value: "1_3lakh", Label: "1 to 3 lakh"},
			{Value: "above_3lakh", Label: "Above 3 lakh"},
		},
	},
	{
		ID:       "category",
		Question: "Which category do you belong to?",
		Options: []model.Option{
			{Value: "general", Label: "General"},
			{Value: "obc", Label: "OBC"},
			{Value: "sc", Label: "SC"},
			{Value: "st", Label: "ST"},
		},
	},
	{
		ID:       "age",
		Question: "What is your age?",
		Options: []model.Option{
			{Value: "below_18", Label: "Below 18 years"},
			{Value: "18_60", Label: "18 to 60 years"},
			{Value: "above_60", Label: "Above 60 years"},
		},
	},
	{
		ID:       "gender",
		Question: "What is your gender?",
		Options: []model.Option{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
			{Value: "other", Label: "Other"},
		},
	},
}

var schemes = []model.Scheme{
	{
		ID:          "pmay",
		Name:        "Pradhan Mantri Awas Yojana",
		Description: "Housing construction assistance",
		Eligible:    []string{"below_1lakh", "1_3lakh"},
	},
	{
		ID:          "ujjwala",
		Name:        "Pradhan Mantri Ujjwala Yojana",
		Description: "Gas connection assistance",
		Eligible:    []string{"below_1lakh"},
	},
	{
		ID:          "kisan",
		Name:        "Kisan Samman Nidhi",
		Description: "Financial support for farmers",
		Eligible:    []string{"1_3lakh", "below_1lakh"},
	},
}

// SchemeService answers the scheme awareness questionnaire
type SchemeService interface {
	Questions() []model.Question
	EligibleSchemes(answers map[string]string) []model.Scheme
}

type schemeService struct{}

// NewSchemeService creates a new SchemeService
func NewSchemeService() SchemeService {
	return &schemeService{}
}

// Questions returns the eligibility questionnaire in presentation order.
func (s *schemeService) Questions() []model.Question {
	return eligibilityQuestions
}

// EligibleSchemes filters schemes by the income answer. Without an income
// answer no scheme can be recommended.
func (s *schemeService) EligibleSchemes(answers map[string]string) []model.Scheme {
	income := answers["income"]
	if income == "" {
		return []model.Scheme{}
	}

	eligible := make([]model.Scheme, 0, len(schemes))
	for _, scheme := range schemes {
		for _, bracket := range scheme.Eligible {
			if bracket == income {
				eligible = append(eligible, scheme)
				break
			}
		}
	}
	return eligible
}
