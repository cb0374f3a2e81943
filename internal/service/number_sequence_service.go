package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"go.uber.org/zap"
)

// NumberSequenceService generates document numbers.
//
// Format: {PREFIX}-{YYYY}{MM}-{SEQUENCE}
// Example: QUO-202610-0001, INV-202610-0042
//
// The sequence restarts every month and is kept per document type.
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// Generate issues the next number for docType in the month of date. Call it
// inside the transaction that creates the document so a rollback also returns
// the number.
func (s *NumberSequenceService) Generate(ctx context.Context, docType domain.DocumentType, date time.Time) (string, error) {
	if !docType.IsValid() {
		return "", domain.NewInvalidInput("unknown document type %q", docType)
	}

	period := Period(date)
	nextSeq, err := s.repo.GetNextNumber(ctx, docType, period)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("document_type", string(docType)),
			zap.String("period", period),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", docType, err)
	}

	number := FormatNumber(docType, period, nextSeq)

	s.logger.Debug("generated document number",
		zap.String("document_type", string(docType)),
		zap.String("number", number))

	return number, nil
}

// Period returns the YYYYMM sequence period of a date
func Period(date time.Time) string {
	return date.Format("200601")
}

// FormatNumber renders a document number, zero-padding the sequence to 4 digits
func FormatNumber(docType domain.DocumentType, period string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", docType.Prefix(), period, seq)
}
