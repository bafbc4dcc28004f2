package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindFreeText       QuestionKind = "free_text"
	KindScale          QuestionKind = "scale"
)

// RequiresAnswer reports whether an empty answer is rejected for this kind.
func (k QuestionKind) RequiresAnswer() bool {
	return k == KindMultipleChoice || k == KindScale
}

// QuestionOptions holds the kind-specific payload: Choices for
// multiple_choice, Min/Max for scale.
type QuestionOptions struct {
	Choices []string `json:"choices,omitempty"`
	Min     *int     `json:"min,omitempty"`
	Max     *int     `json:"max,omitempty"`
}

type Question struct {
	ID            uint                                `gorm:"primarykey" json:"id"`
	TestID        uint                                `json:"test_id" gorm:"not null;uniqueIndex:idx_questions_test_order"`
	Prompt        string                              `json:"prompt" gorm:"type:text;not null"`
	Kind          QuestionKind                        `json:"kind" gorm:"not null"`
	Options       datatypes.JSONType[QuestionOptions] `json:"options"`
	CorrectOption *string                             `json:"correct_option,omitempty"` // authoring only, never scored
	Weight        float64                             `json:"weight" gorm:"not null;default:1"`
	DisplayOrder  int                                 `json:"display_order" gorm:"not null;uniqueIndex:idx_questions_test_order"`
	CreatedAt     time.Time                           `json:"created_at"`
	UpdatedAt     time.Time                           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt                      `gorm:"index" json:"-"`
}

func (q *Question) Validate() error {
	if q.Weight < 0 {
		return fmt.Errorf("question %d: weight must not be negative", q.DisplayOrder)
	}
	opts := q.Options.Data()
	switch q.Kind {
	case KindMultipleChoice:
		if len(opts.Choices) < 2 {
			return fmt.Errorf("question %d: multiple_choice needs at least two choices", q.DisplayOrder)
		}
	case KindScale:
		if opts.Min == nil || opts.Max == nil {
			return fmt.Errorf("question %d: scale needs min and max", q.DisplayOrder)
		}
		if *opts.Min >= *opts.Max {
			return fmt.Errorf("question %d: scale min must be below max", q.DisplayOrder)
		}
	case KindFreeText:
	default:
		return fmt.Errorf("question %d: unknown kind %q", q.DisplayOrder, q.Kind)
	}
	return nil
}

func (q *Question) BeforeSave(tx *gorm.DB) error {
	if q.Prompt == "" {
		return errors.New("question prompt is required")
	}
	return q.Validate()
}
