package models

// FrameworkCategory groups brainstorming templates
type FrameworkCategory string

const (
	CategoryProblemDefinition FrameworkCategory = "problem-definition"
	CategoryIdeation          FrameworkCategory = "ideation"
	CategoryUserResearch      FrameworkCategory = "user-research"
	CategoryValidation        FrameworkCategory = "validation"
	CategoryPlanning          FrameworkCategory = "planning"
)

// FrameworkTemplate is a named, static brainstorming template
type FrameworkTemplate struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Template    string            `json:"template" yaml:"template"`
	Category    FrameworkCategory `json:"category" yaml:"category"`
	Difficulty  string            `json:"difficulty" yaml:"difficulty"` // "beginner", "intermediate", "advanced"
}
