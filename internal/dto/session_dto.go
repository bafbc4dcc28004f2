package dto

import "time"

// SessionQuestionDTO is the candidate-facing view of a question. It never
// carries the correct option.
type SessionQuestionDTO struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Kind     string   `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	ScaleMin *int     `json:"scale_min,omitempty"`
	ScaleMax *int     `json:"scale_max,omitempty"`
}

// SessionResponse is rendered by the test page. State is one of active,
// submitting, submit_failed, completed or unavailable.
type SessionResponse struct {
	State            string              `json:"state"`
	AlreadyCompleted bool                `json:"already_completed"`
	TestTitle        string              `json:"test_title"`
	TestDescription  string              `json:"test_description,omitempty"`
	CandidateName    string              `json:"candidate_name"`
	Index            int                 `json:"index"`
	Total            int                 `json:"total"`
	Answered         int                 `json:"answered"`
	Progress         int                 `json:"progress"`
	Question         *SessionQuestionDTO `json:"question,omitempty"`
	Answer           string              `json:"answer,omitempty"`
	RemainingSeconds *int                `json:"remaining_seconds,omitempty"`
	Score            *int                `json:"score,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}
