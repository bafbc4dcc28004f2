package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestStatus string

const (
	TestDraft    TestStatus = "draft"
	TestActive   TestStatus = "active"
	TestInactive TestStatus = "inactive"
)

// Sendable reports whether new applications may be created for the test.
// An unset status counts as active.
func (s TestStatus) Sendable() bool {
	return s != TestDraft && s != TestInactive
}

// TestConfig is the typed form of a test's configuration column.
type TestConfig struct {
	TimeLimitMinutes *int `json:"time_limit_minutes,omitempty"`
	ShuffleQuestions bool `json:"shuffle_questions,omitempty"`
	ShowResult       bool `json:"show_result,omitempty"`
}

func (c TestConfig) Validate() error {
	if c.TimeLimitMinutes != nil && *c.TimeLimitMinutes <= 0 {
		return errors.New("time_limit_minutes must be positive")
	}
	return nil
}

// TimeLimit returns zero when the test is untimed.
func (c TestConfig) TimeLimit() time.Duration {
	if c.TimeLimitMinutes == nil {
		return 0
	}
	return time.Duration(*c.TimeLimitMinutes) * time.Minute
}

type Test struct {
	ID          uint                           `gorm:"primarykey" json:"id"`
	CompanyID   uint                           `json:"company_id" gorm:"not null;index"`
	Title       string                         `json:"title" gorm:"not null"`
	Description string                         `json:"description,omitempty"`
	Status      TestStatus                     `json:"status" gorm:"not null;default:'active'"`
	Config      datatypes.JSONType[TestConfig] `json:"config"`
	Questions   []Question                     `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt                 `gorm:"index" json:"-"`
}

func (t *Test) BeforeSave(tx *gorm.DB) error {
	return t.Config.Data().Validate()
}
