package model

import (
	"time"

	"gorm.io/gorm"
)

type BatchStatus string

const (
	BatchActive   BatchStatus = "active"
	BatchInactive BatchStatus = "inactive"
	BatchExpired  BatchStatus = "expired"
)

// Batch groups applications sent for one test under a shared expiry and
// candidate cap.
type Batch struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CompanyID      uint           `json:"company_id" gorm:"not null;index"`
	TestID         uint           `json:"test_id" gorm:"not null;index"`
	Test           Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Name           string         `json:"name" gorm:"not null"`
	Description    string         `json:"description,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CandidateLimit *int           `json:"candidate_limit,omitempty"`
	Status         BatchStatus    `json:"status" gorm:"not null;default:'active'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Batch) Expired(now time.Time) bool {
	return b.Status == BatchExpired || (b.ExpiresAt != nil && !now.Before(*b.ExpiresAt))
}
