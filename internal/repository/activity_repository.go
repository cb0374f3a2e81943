package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository stores the per-document audit trail
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.DocumentActivity) error {
	return database.Conn(ctx, r.db).Create(activity).Error
}

// ListByDocument returns the trail of a document, oldest first
func (r *ActivityRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentActivity, error) {
	var activities []domain.DocumentActivity
	err := database.Conn(ctx, r.db).
		Where("document_id = ?", documentID).
		Order("occurred_at ASC, created_at ASC").
		Find(&activities).Error
	return activities, err
}
