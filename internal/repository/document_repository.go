package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentFilters narrows a document listing
type DocumentFilters struct {
	Type    *domain.DocumentType
	Status  *domain.DocumentStatus
	PartyID *uuid.UUID
	Search  string
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, position ASC")
}

// Create inserts the document together with its lines. The party association
// is never written through a document.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return database.Conn(ctx, r.db).Omit("Party").Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := database.Conn(ctx, r.db).
		Preload("Party").
		Preload("Lines", orderedLines).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetForUpdate loads the document and locks its row until the surrounding
// transaction ends.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines", orderedLines).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update writes the document columns. Lines are managed by ReplaceLines.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(doc).Error
}

// Delete removes the document and its lines
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("document_id = ?", id).Delete(&domain.LineItem{}).Error; err != nil {
		return err
	}
	return conn.Delete(&domain.Document{}, "id = ?", id).Error
}

func (r *DocumentRepository) List(ctx context.Context, page, pageSize int, filters DocumentFilters) ([]domain.Document, int64, error) {
	var docs []domain.Document
	var total int64

	query := database.Conn(ctx, r.db).Model(&domain.Document{})

	if filters.Type != nil {
		query = query.Where("document_type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PartyID != nil {
		query = query.Where("party_id = ?", *filters.PartyID)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Party").
		Preload("Lines", orderedLines).
		Order("created_at DESC, document_number DESC, revision DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&docs).Error

	return docs, total, err
}

// MaxRevision returns the highest revision issued under a document number
func (r *DocumentRepository) MaxRevision(ctx context.Context, docType domain.DocumentType, number string) (int, error) {
	var max int
	err := database.Conn(ctx, r.db).Model(&domain.Document{}).
		Where("document_type = ? AND document_number = ?", docType, number).
		Select("COALESCE(MAX(revision), 0)").
		Scan(&max).Error
	return max, err
}

// RevisionKey identifies a revision family
type RevisionKey struct {
	Type   domain.DocumentType
	Number string
}

// MaxRevisions returns the highest revision of every family the documents belong to
func (r *DocumentRepository) MaxRevisions(ctx context.Context, docs []domain.Document) (map[RevisionKey]int, error) {
	result := make(map[RevisionKey]int, len(docs))
	if len(docs) == 0 {
		return result, nil
	}

	numbers := make([]string, 0, len(docs))
	for _, d := range docs {
		numbers = append(numbers, d.DocumentNumber)
	}

	var rows []struct {
		DocumentType   domain.DocumentType
		DocumentNumber string
		Revision       int
	}
	err := database.Conn(ctx, r.db).Model(&domain.Document{}).
		Select("document_type, document_number, MAX(revision) AS revision").
		Where("document_number IN ?", numbers).
		Group("document_type, document_number").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[RevisionKey{Type: row.DocumentType, Number: row.DocumentNumber}] = row.Revision
	}
	return result, nil
}

// ListRevisions returns every revision of a document number, oldest first
func (r *DocumentRepository) ListRevisions(ctx context.Context, docType domain.DocumentType, number string) ([]domain.Document, error) {
	var docs []domain.Document
	err := database.Conn(ctx, r.db).
		Preload("Party").
		Preload("Lines", orderedLines).
		Where("document_type = ? AND document_number = ?", docType, number).
		Order("revision ASC").
		Find(&docs).Error
	return docs, err
}

// ExpireOverdue moves every open document of the given types whose validity
// ended before today to EXPIRED in a single statement. Converted documents
// are never touched.
func (r *DocumentRepository) ExpireOverdue(ctx context.Context, types []domain.DocumentType, today, now time.Time) (int64, error) {
	result := database.Conn(ctx, r.db).Model(&domain.Document{}).
		Where("document_type IN ?", types).
		Where("status IN ?", []domain.DocumentStatus{domain.StatusDraft, domain.StatusSubmitted}).
		Where("valid_until IS NOT NULL AND valid_until < ?", domain.DateOf(today)).
		Where("converted_to_invoice_id IS NULL AND converted_to_bill_id IS NULL").
		Updates(map[string]interface{}{
			"status":     domain.StatusExpired,
			"expired_at": now,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// CountByParty returns how many documents reference a contact
func (r *DocumentRepository) CountByParty(ctx context.Context, partyID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&domain.Document{}).
		Where("party_id = ?", partyID).
		Count(&count).Error
	return count, err
}
