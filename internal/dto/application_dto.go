package dto

import "time"

type ResultsDTO struct {
	Answers          map[uint]string `json:"answers"`
	Score            int             `json:"score"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
}

type ApplicationResponseDTO struct {
	ID             uint        `json:"id"`
	TestID         uint        `json:"test_id"`
	TestTitle      string      `json:"test_title"`
	CandidateID    uint        `json:"candidate_id"`
	CandidateName  string      `json:"candidate_name"`
	CandidateEmail string      `json:"candidate_email"`
	BatchID        *uint       `json:"batch_id,omitempty"`
	Status         string      `json:"status"`
	LinkToken      string      `json:"link_token"`
	Link           string      `json:"link"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	Results        *ResultsDTO `json:"results,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type ApplicationStatsDTO struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	InProgress     int64 `json:"in_progress"`
	Completed      int64 `json:"completed"`
	CompletionRate int   `json:"completion_rate"`
}

type ReviewResponseDTO struct {
	ApplicationID uint   `json:"application_id"`
	Summary       string `json:"summary"`
}
