package repository

import (
	"context"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByTestID(ctx context.Context, testID uint) ([]model.Question, error)
	CountByTestID(ctx context.Context, testID uint) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByTestID(ctx context.Context, testID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.WithContext(ctx).Where("test_id = ?", testID).Order("display_order ASC").Find(&questions).Error; err != nil {
		return nil, translateError(err)
	}
	return questions, nil
}

func (r *questionRepository) CountByTestID(ctx context.Context, testID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, translateError(err)
}
