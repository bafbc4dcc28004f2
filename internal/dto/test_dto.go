package dto

import "time"

// QuestionResponseDTO is used for displaying question details to admins.
type QuestionResponseDTO struct {
	ID            uint     `json:"id"`
	TestID        uint     `json:"test_id"`
	Prompt        string   `json:"prompt"`
	Kind          string   `json:"kind"`
	Choices       []string `json:"choices,omitempty"`
	ScaleMin      *int     `json:"scale_min,omitempty"`
	ScaleMax      *int     `json:"scale_max,omitempty"`
	CorrectOption *string  `json:"correct_option,omitempty"`
	Weight        float64  `json:"weight"`
	DisplayOrder  int      `json:"display_order"`
}

// TestResponseDTO is used for displaying full test details.
type TestResponseDTO struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      string                `json:"status"`
	Config      TestConfigDTO         `json:"config"`
	Questions   []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// TestSummaryDTO is used for listing tests.
type TestSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
