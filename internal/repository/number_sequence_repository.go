package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Sequences are kept per document type and period (YYYYMM) and reset each month.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber increments and returns the sequence for a document type and
// period. The increment is a single upsert, so concurrent callers serialize on
// the sequence row and each receives a distinct value. When called inside a
// transaction the row stays locked until that transaction ends.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, docType domain.DocumentType, period string) (int, error) {
	var next int

	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		seq := domain.NumberSequence{
			DocumentType: docType,
			Period:       period,
			LastSequence: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "document_type"}, {Name: "period"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_sequence": gorm.Expr("number_sequences.last_sequence + 1"),
				"updated_at":    now,
			}),
		}).Create(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to increment number sequence: %w", err)
		}

		var current domain.NumberSequence
		if err := tx.Where("document_type = ? AND period = ?", docType, period).First(&current).Error; err != nil {
			return fmt.Errorf("failed to read number sequence: %w", err)
		}
		next = current.LastSequence
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}
