package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusPending    ApplicationStatus = "pending"
	StatusInProgress ApplicationStatus = "in_progress"
	StatusCompleted  ApplicationStatus = "completed"
)

// Results is written once, together with the transition to completed.
type Results struct {
	Answers          map[uint]string `json:"answers"`
	Score            int             `json:"score"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
}

func (r Results) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return errors.New("score must be within [0, 100]")
	}
	if r.TimeSpentSeconds < 0 {
		return errors.New("time_spent_seconds must not be negative")
	}
	return nil
}

type Application struct {
	ID          uint                         `gorm:"primarykey" json:"id"`
	CompanyID   uint                         `json:"company_id" gorm:"not null;index"`
	TestID      uint                         `json:"test_id" gorm:"not null;index"`
	Test        Test                         `json:"test,omitempty" gorm:"foreignKey:TestID"`
	CandidateID uint                         `json:"candidate_id" gorm:"not null;index"`
	Candidate   Candidate                    `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	BatchID     *uint                        `json:"batch_id,omitempty" gorm:"index"`
	LinkToken   string                       `json:"link_token" gorm:"not null;size:64;uniqueIndex"`
	Status      ApplicationStatus            `json:"status" gorm:"not null;default:'pending';index"`
	StartedAt   *time.Time                   `json:"started_at,omitempty"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty"`
	Results     datatypes.JSONType[*Results] `json:"results"` // JSON null until completed
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	DeletedAt   gorm.DeletedAt               `gorm:"index" json:"-"`
}
