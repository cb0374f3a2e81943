package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
)

// ReplaceLines deletes every line of a document and inserts the given lines in
// their place. Positions are reassigned from the slice order.
func (r *DocumentRepository) ReplaceLines(ctx context.Context, documentID uuid.UUID, lines []domain.LineItem) error {
	conn := database.Conn(ctx, r.db)

	if err := conn.Where("document_id = ?", documentID).Delete(&domain.LineItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete document lines: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	for i := range lines {
		lines[i].ID = uuid.Nil
		lines[i].DocumentID = documentID
		lines[i].Position = i
	}
	if err := conn.Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to create document lines: %w", err)
	}
	return nil
}

// UpdateLineAmounts writes the derived amounts of existing lines
func (r *DocumentRepository) UpdateLineAmounts(ctx context.Context, lines []domain.LineItem) error {
	conn := database.Conn(ctx, r.db)
	for _, line := range lines {
		err := conn.Model(&domain.LineItem{}).
			Where("id = ?", line.ID).
			Updates(map[string]interface{}{
				"discount_amount": line.DiscountAmount,
				"tax_amount":      line.TaxAmount,
				"line_total":      line.LineTotal,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update line amounts: %w", err)
		}
	}
	return nil
}
