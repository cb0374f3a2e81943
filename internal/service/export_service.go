package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	exportSheet       = "Documents"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{
	"Number", "Revision", "Type", "Status", "Party", "Date", "Valid Until", "Due Date",
	"Currency", "Subtotal", "Discount", "Tax", "Total", "Base Currency Total",
}

// ExportResult is a generated register workbook and where it was archived
type ExportResult struct {
	Filename    string
	StoragePath string
	ContentType string
	Rows        int
	Content     []byte
}

// ExportService renders filtered document registers to .xlsx and archives them
type ExportService struct {
	docRepo *repository.DocumentRepository
	store   storage.Storage
	clock   Clock
	maxRows int
	logger  *zap.Logger
}

func NewExportService(
	docRepo *repository.DocumentRepository,
	store storage.Storage,
	clock Clock,
	maxRows int,
	logger *zap.Logger,
) *ExportService {
	if maxRows < 1 {
		maxRows = 5000
	}
	return &ExportService{
		docRepo: docRepo,
		store:   store,
		clock:   clock,
		maxRows: maxRows,
		logger:  logger,
	}
}

// ExportDocuments writes up to maxRows matching documents, newest first. A nil
// store skips archiving.
func (s *ExportService) ExportDocuments(ctx context.Context, filters repository.DocumentFilters) (*ExportResult, error) {
	docs, total, err := s.docRepo.List(ctx, 1, s.maxRows, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if total > int64(len(docs)) {
		s.logger.Warn("export truncated",
			zap.Int64("matching", total),
			zap.Int("exported", len(docs)))
	}

	content, err := renderRegister(docs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	result := &ExportResult{
		Filename:    fmt.Sprintf("documents-%s.xlsx", now.Format("20060102-150405")),
		ContentType: exportContentType,
		Rows:        len(docs),
		Content:     content,
	}

	if s.store != nil {
		key := storage.ObjectKey("exports", now, ".xlsx")
		if _, err := s.store.Put(ctx, key, exportContentType, bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to archive export: %w", err)
		}
		result.StoragePath = key
	}

	s.logger.Info("document register exported",
		zap.Int("rows", result.Rows),
		zap.String("storage_path", result.StoragePath))

	return result, nil
}

func renderRegister(docs []domain.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range docs {
		doc := &docs[i]
		party := ""
		if doc.Party != nil {
			party = doc.Party.Name
		}
		row := []interface{}{
			doc.DocumentNumber,
			doc.Revision,
			string(doc.DocumentType),
			string(doc.Status),
			party,
			doc.DocumentDate.Format("2006-01-02"),
			optionalDate(doc.ValidUntil),
			optionalDate(doc.DueDate),
			doc.Currency,
			doc.Subtotal,
			doc.DiscountAmount,
			doc.TaxAmount,
			doc.Total,
			doc.BaseCurrencyTotal,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
