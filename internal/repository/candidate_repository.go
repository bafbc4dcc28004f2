package repository

import (
	"context"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	FindByID(ctx context.Context, companyID, id uint) (*model.Candidate, error)
	FindByIDs(ctx context.Context, companyID uint, ids []uint) ([]model.Candidate, error)
	List(ctx context.Context, companyID uint) ([]model.Candidate, error)
	Update(ctx context.Context, candidate *model.Candidate) error
	UpdateStatus(ctx context.Context, companyID, id uint, status model.CandidateStatus) error
	// Delete removes the row for good so the email can be registered again.
	Delete(ctx context.Context, companyID, id uint) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	return translateError(r.db.WithContext(ctx).Create(candidate).Error)
}

func (r *candidateRepository) FindByID(ctx context.Context, companyID, id uint) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&candidate, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByIDs(ctx context.Context, companyID uint, ids []uint) ([]model.Candidate, error) {
	var candidates []model.Candidate
	if len(ids) == 0 {
		return candidates, nil
	}
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Order("id ASC").
		Find(&candidates).Error
	return candidates, translateError(err)
}

func (r *candidateRepository) List(ctx context.Context, companyID uint) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&candidates).Error
	return candidates, translateError(err)
}

func (r *candidateRepository) Update(ctx context.Context, candidate *model.Candidate) error {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id = ? AND company_id = ?", candidate.ID, candidate.CompanyID).
		Updates(map[string]interface{}{
			"name":     candidate.Name,
			"email":    candidate.Email,
			"phone":    candidate.Phone,
			"position": candidate.Position,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, companyID, id uint, status model.CandidateStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
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

func (r *candidateRepository) Delete(ctx context.Context, companyID, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Where("company_id = ?", companyID).Delete(&model.Candidate{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
