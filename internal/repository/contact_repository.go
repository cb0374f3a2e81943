package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return database.Conn(ctx, r.db).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := database.Conn(ctx, r.db).First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return database.Conn(ctx, r.db).Save(contact).Error
}

func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Delete(&domain.Contact{}, "id = ?", id).Error
}

// List returns contacts ordered by name, optionally filtered by type and a
// case-insensitive search over name, email and tax id.
func (r *ContactRepository) List(ctx context.Context, page, pageSize int, contactType *domain.ContactType, search string) ([]domain.Contact, int64, error) {
	var contacts []domain.Contact
	var total int64

	query := database.Conn(ctx, r.db).Model(&domain.Contact{})
	if contactType != nil {
		query = query.Where("contact_type = ?", *contactType)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR tax_id LIKE ?", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&contacts).Error

	return contacts, total, err
}
