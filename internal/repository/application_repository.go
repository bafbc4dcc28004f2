package repository

import (
	"context"
	"time"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationFilter struct {
	CompanyID uint
	Status    model.ApplicationStatus
	TestID    uint
	BatchID   uint
	From      *time.Time
	To        *time.Time
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	CreateMany(ctx context.Context, apps []model.Application) error
	FindByID(ctx context.Context, companyID, id uint) (*model.Application, error)
	// FindByLinkToken loads the application with its test, ordered questions
	// and candidate.
	FindByLinkToken(ctx context.Context, token string) (*model.Application, error)
	// MarkStarted moves a pending application to in_progress. It returns
	// ErrConflict when the application is no longer pending.
	MarkStarted(ctx context.Context, id uint, at time.Time) error
	// MarkCompleted stores the results and moves the application to
	// completed. It returns ErrConflict when it was already completed.
	MarkCompleted(ctx context.Context, id uint, at time.Time, results model.Results) error
	List(ctx context.Context, filter ApplicationFilter) ([]model.Application, error)
	CountByStatus(ctx context.Context, companyID uint) (map[model.ApplicationStatus]int64, error)
	CountByBatch(ctx context.Context, batchID uint) (int64, error)
	// CountByTest counts the test's applications, limited to statuses when
	// any are given.
	CountByTest(ctx context.Context, testID uint, statuses ...model.ApplicationStatus) (int64, error)
	CountByCandidate(ctx context.Context, candidateID uint) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	return translateError(r.db.WithContext(ctx).Omit("Test", "Candidate").Create(app).Error)
}

func (r *applicationRepository) CreateMany(ctx context.Context, apps []model.Application) error {
	if len(apps) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Test", "Candidate").Create(&apps).Error
	})
	return translateError(err)
}

func (r *applicationRepository) FindByID(ctx context.Context, companyID, id uint) (*model.Application, error) {
	var app model.Application
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("applications.company_id = ?", companyID).
		First(&app, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &app, nil
}

func (r *applicationRepository) FindByLinkToken(ctx context.Context, token string) (*model.Application, error) {
	var app model.Application
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("link_token = ?", token).
		First(&app).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &app, nil
}

func (r *applicationRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Test").
		Preload("Test.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.display_order ASC")
		}).
		Preload("Candidate")
}

func (r *applicationRepository) MarkStarted(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":     model.StatusInProgress,
			"started_at": at,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *applicationRepository) MarkCompleted(ctx context.Context, id uint, at time.Time, results model.Results) error {
	if err := results.Validate(); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ? AND status <> ?", id, model.StatusCompleted).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"completed_at": at,
			"results":      datatypes.NewJSONType(&results),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]model.Application, error) {
	query := r.db.WithContext(ctx).
		Preload("Test").
		Preload("Candidate").
		Where("company_id = ?", filter.CompanyID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TestID != 0 {
		query = query.Where("test_id = ?", filter.TestID)
	}
	if filter.BatchID != 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var apps []model.Application
	if err := query.Order("created_at DESC").Order("id DESC").Find(&apps).Error; err != nil {
		return nil, translateError(err)
	}
	return apps, nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context, companyID uint) (map[model.ApplicationStatus]int64, error) {
	var rows []struct {
		Status model.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select("status, COUNT(*) as count").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	counts := make(map[model.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *applicationRepository) CountByBatch(ctx context.Context, batchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).Where("batch_id = ?", batchID).Count(&count).Error
	return count, translateError(err)
}

func (r *applicationRepository) CountByTest(ctx context.Context, testID uint, statuses ...model.ApplicationStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Application{}).Where("test_id = ?", testID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	err := query.Count(&count).Error
	return count, translateError(err)
}

func (r *applicationRepository) CountByCandidate(ctx context.Context, candidateID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).Where("candidate_id = ?", candidateID).Count(&count).Error
	return count, translateError(err)
}
