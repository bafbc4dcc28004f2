package model

import (
	"time"

	"gorm.io/gorm"
)

type CandidateStatus string

const (
	CandidateActive    CandidateStatus = "active"
	CandidateInReview  CandidateStatus = "in_review"
	CandidateConcluded CandidateStatus = "concluded"
)

type Candidate struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	CompanyID uint            `json:"company_id" gorm:"not null;uniqueIndex:idx_candidates_company_email"`
	Name      string          `json:"name" gorm:"not null"`
	Email     string          `json:"email" gorm:"not null;uniqueIndex:idx_candidates_company_email"`
	Phone     string          `json:"phone,omitempty"`
	Position  string          `json:"position,omitempty"`
	Status    CandidateStatus `json:"status" gorm:"not null;default:'active'"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
