package dto

import "time"

type NotificationResponseDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	ApplicationID uint      `json:"application_id"`
	Score         int       `json:"score"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
