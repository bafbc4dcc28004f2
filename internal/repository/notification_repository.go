package repository

import (
	"context"

	"github.com/traitview/traitview/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByCompany(ctx context.Context, companyID uint, limit int) ([]model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return translateError(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) ListByCompany(ctx context.Context, companyID uint, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, translateError(err)
}
