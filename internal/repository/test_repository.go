package repository

import (
	"context"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/gorm"
)

type TestWithQuestionCount struct {
	model.Test
	QuestionCount int
}

type TestRepository interface {
	Create(ctx context.Context, test *model.Test) error
	FindByID(ctx context.Context, companyID, id uint) (*model.Test, error)
	FindByIDWithQuestions(ctx context.Context, companyID, id uint) (*model.Test, error)
	FindAllWithQuestionCount(ctx context.Context, companyID uint) ([]TestWithQuestionCount, error)
	// Update rewrites the test fields and replaces its whole question set.
	Update(ctx context.Context, test *model.Test) error
	UpdateStatus(ctx context.Context, companyID, id uint, status model.TestStatus) error
	Delete(ctx context.Context, companyID, id uint) error
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *model.Test) error {
	// Questions are inserted through the association in the same statement batch.
	return translateError(r.db.WithContext(ctx).Create(test).Error)
}

func (r *testRepository) FindByID(ctx context.Context, companyID, id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&test, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(ctx context.Context, companyID, id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.display_order ASC")
	}).Where("company_id = ?", companyID).First(&test, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

func (r *testRepository) FindAllWithQuestionCount(ctx context.Context, companyID uint) ([]TestWithQuestionCount, error) {
	var results []TestWithQuestionCount
	err := r.db.WithContext(ctx).Model(&model.Test{}).
		Select("tests.*, (SELECT COUNT(*) FROM questions WHERE questions.test_id = tests.id AND questions.deleted_at IS NULL) as question_count").
		Where("tests.company_id = ? AND tests.deleted_at IS NULL", companyID).
		Order("tests.created_at DESC").
		Scan(&results).Error
	return results, translateError(err)
}

func (r *testRepository) Update(ctx context.Context, test *model.Test) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Test{}).
			Where("id = ? AND company_id = ?", test.ID, test.CompanyID).
			Updates(map[string]interface{}{
				"title":       test.Title,
				"description": test.Description,
				"status":      test.Status,
				"config":      test.Config,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		// Hard delete keeps the (test_id, display_order) index free for the new set.
		if err := tx.Unscoped().Where("test_id = ?", test.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if len(test.Questions) == 0 {
			return nil
		}
		for i := range test.Questions {
			test.Questions[i].ID = 0
			test.Questions[i].TestID = test.ID
		}
		return tx.Create(&test.Questions).Error
	})
	return translateError(err)
}

func (r *testRepository) UpdateStatus(ctx context.Context, companyID, id uint, status model.TestStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Test{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("status", status)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *testRepository) Delete(ctx context.Context, companyID, id uint) error {
	res := r.db.WithContext(ctx).Where("company_id = ?", companyID).Delete(&model.Test{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
