package repository

// Read-only aggregations over documents used by the statistics endpoint.

import (
	"context"
	"fmt"
	"time"

	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
)

// StatusAggregate holds the count and summed totals of one status
type StatusAggregate struct {
	Status            domain.DocumentStatus
	Count             int64
	Total             int64
	BaseCurrencyTotal int64
}

// StatsFilters limits the statistics to a type and a document date range.
// Start and End are inclusive calendar dates.
type StatsFilters struct {
	Type  *domain.DocumentType
	Start *time.Time
	End   *time.Time
}

// AggregateByStatus counts documents and sums their totals per status
func (r *DocumentRepository) AggregateByStatus(ctx context.Context, filters StatsFilters) ([]StatusAggregate, error) {
	query := database.Conn(ctx, r.db).Model(&domain.Document{})

	if filters.Type != nil {
		query = query.Where("document_type = ?", *filters.Type)
	}
	if filters.Start != nil {
		query = query.Where("document_date >= ?", domain.DateOf(*filters.Start))
	}
	if filters.End != nil {
		query = query.Where("document_date <= ?", domain.DateOf(*filters.End))
	}

	var rows []StatusAggregate
	err := query.
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(base_currency_total), 0) AS base_currency_total").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate documents by status: %w", err)
	}
	return rows, nil
}
