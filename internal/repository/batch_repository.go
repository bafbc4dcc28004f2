package repository

import (
	"context"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/gorm"
)

type BatchRepository interface {
	Create(ctx context.Context, batch *model.Batch) error
	FindByID(ctx context.Context, companyID, id uint) (*model.Batch, error)
	List(ctx context.Context, companyID uint) ([]model.Batch, error)
	UpdateStatus(ctx context.Context, companyID, id uint, status model.BatchStatus) error
	Update(ctx context.Context, batch *model.Batch) error
	Delete(ctx context.Context, companyID, id uint) error
}

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *model.Batch) error {
	return translateError(r.db.WithContext(ctx).Omit("Test").Create(batch).Error)
}

func (r *batchRepository) FindByID(ctx context.Context, companyID, id uint) (*model.Batch, error) {
	var batch model.Batch
	if err := r.db.WithContext(ctx).Preload("Test").Where("company_id = ?", companyID).First(&batch, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &batch, nil
}

func (r *batchRepository) List(ctx context.Context, companyID uint) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.WithContext(ctx).Preload("Test").Where("company_id = ?", companyID).Order("created_at DESC").Find(&batches).Error
	return batches, translateError(err)
}

func (r *batchRepository) UpdateStatus(ctx context.Context, companyID, id uint, status model.BatchStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Batch{}).
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

func (r *batchRepository) Update(ctx context.Context, batch *model.Batch) error {
	res := r.db.WithContext(ctx).Model(&model.Batch{}).
		Where("id = ? AND company_id = ?", batch.ID, batch.CompanyID).
		Updates(map[string]interface{}{
			"name":            batch.Name,
			"description":     batch.Description,
			"test_id":         batch.TestID,
			"expires_at":      batch.ExpiresAt,
			"candidate_limit": batch.CandidateLimit,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *batchRepository) Delete(ctx context.Context, companyID, id uint) error {
	res := r.db.WithContext(ctx).Where("company_id = ?", companyID).Delete(&model.Batch{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
