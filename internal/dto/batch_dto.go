package dto

import "time"

type BatchResponseDTO struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	TestID         uint       `json:"test_id"`
	TestTitle      string     `json:"test_title"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CandidateLimit *int       `json:"candidate_limit,omitempty"`
	Status         string     `json:"status"`
	SentCount      int64      `json:"sent_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

type BatchListDTO struct {
	Batches  []BatchResponseDTO `json:"batches"`
	Total    int                `json:"total"`
	Active   int                `json:"active"`
	Inactive int                `json:"inactive"`
	Expired  int                `json:"expired"`
}
