package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/logger"
	"github.com/nusa-erp/erp-api/internal/money"
	"github.com/nusa-erp/erp-api/internal/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// stamp writes the audit columns of a status change onto the document
type stamp func(doc *domain.Document, at time.Time, actor domain.Actor, reason string)

var transitions = map[workflow.Event]struct {
	action domain.ActivityAction
	stamp  stamp
}{
	workflow.EventSubmit: {domain.ActivitySubmitted, func(doc *domain.Document, at time.Time, actor domain.Actor, _ string) {
		doc.SubmittedAt = &at
		doc.SubmittedBy = actor.ID
	}},
	workflow.EventApprove: {domain.ActivityApproved, func(doc *domain.Document, at time.Time, actor domain.Actor, _ string) {
		doc.ApprovedAt = &at
		doc.ApprovedBy = actor.ID
	}},
	workflow.EventReject: {domain.ActivityRejected, func(doc *domain.Document, at time.Time, actor domain.Actor, reason string) {
		doc.RejectedAt = &at
		doc.RejectedBy = actor.ID
		doc.RejectionReason = reason
	}},
	workflow.EventCancel: {domain.ActivityCancelled, func(doc *domain.Document, at time.Time, actor domain.Actor, reason string) {
		doc.CancelledAt = &at
		doc.CancelledBy = actor.ID
		doc.CancellationReason = reason
	}},
}

// Submit moves a DRAFT with at least one line to SUBMITTED
func (s *DocumentService) Submit(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.DocumentDTO, error) {
	return s.transition(ctx, id, workflow.EventSubmit, actor, "")
}

// Approve moves a SUBMITTED document to APPROVED. A quotation past its
// validity date can no longer be approved.
func (s *DocumentService) Approve(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.DocumentDTO, error) {
	return s.transition(ctx, id, workflow.EventApprove, actor, "")
}

// Reject moves a SUBMITTED document to REJECTED. The reason is mandatory.
func (s *DocumentService) Reject(ctx context.Context, id uuid.UUID, reason string, actor domain.Actor) (*domain.DocumentDTO, error) {
	return s.transition(ctx, id, workflow.EventReject, actor, reason)
}

// Cancel withdraws a document that has not been settled. The reason is mandatory.
func (s *DocumentService) Cancel(ctx context.Context, id uuid.UUID, reason string, actor domain.Actor) (*domain.DocumentDTO, error) {
	return s.transition(ctx, id, workflow.EventCancel, actor, reason)
}

// transition applies one status event under a row lock. The guard is evaluated
// against the locked row, so a concurrent change is seen before anything is written.
func (s *DocumentService) transition(ctx context.Context, id uuid.UUID, ev workflow.Event, actor domain.Actor, reason string) (*domain.DocumentDTO, error) {
	ctx, span := s.startSpan(ctx, "document."+string(ev), attribute.String("document.id", id.String()))
	defer span.End()

	row, ok := transitions[ev]
	if !ok {
		return nil, fmt.Errorf("no status change registered for event %q", ev)
	}

	var doc *domain.Document
	var from domain.DocumentStatus
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.lockDocument(ctx, id)
		if err != nil {
			return err
		}
		from = doc.Status

		to, err := s.fire(ctx, doc, ev, reason)
		if err != nil {
			return err
		}

		doc.Status = to
		row.stamp(doc, s.now(), actor, reason)
		if err := s.docRepo.Update(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}
		return s.record(ctx, doc, row.action, from, to, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithDocument(s.logger, doc.ID, doc.DocumentType, doc.DocumentNumber)
	logger.WithActor(log, actor).Info("document status changed",
		zap.String("event", string(ev)),
		zap.String("from", string(from)),
		zap.String("to", string(doc.Status)))

	return s.GetByID(ctx, id)
}

// Revise opens a new DRAFT revision of a settled document. The revision keeps
// the document number, increments the revision counter and points at the
// first document of the family. The source keeps its status.
func (s *DocumentService) Revise(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.DocumentDTO, error) {
	ctx, span := s.startSpan(ctx, "document.revise", attribute.String("document.id", id.String()))
	defer span.End()

	var revisionID uuid.UUID
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		source, err := s.lockDocument(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.fire(ctx, source, workflow.EventRevise, ""); err != nil {
			return err
		}

		max, err := s.docRepo.MaxRevision(ctx, source.DocumentType, source.DocumentNumber)
		if err != nil {
			return fmt.Errorf("failed to read latest revision: %w", err)
		}

		rev := copyContent(source)
		root := source.RootID()
		rev.DocumentNumber = source.DocumentNumber
		rev.Revision = max + 1
		rev.OriginalDocumentID = &root
		rev.DocumentDate = s.today()
		rev.CreatedBy = actor.ID
		rev.SetAppliesTo(source.AppliesTo())
		if rev.DocumentType == domain.DocumentTypeQuotation {
			rev.ValidUntil = nil
		}
		s.applyDateDefaults(rev)
		if err := money.Recalculate(rev); err != nil {
			return err
		}

		if err := s.docRepo.Create(ctx, rev); err != nil {
			return fmt.Errorf("failed to create revision: %w", err)
		}
		revisionID = rev.ID

		note := fmt.Sprintf("revision %d of %s", rev.Revision, rev.DocumentNumber)
		if err := s.record(ctx, source, domain.ActivityRevised, source.Status, source.Status, actor, note); err != nil {
			return err
		}
		return s.record(ctx, rev, domain.ActivityCreated, "", rev.Status, actor, note)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, revisionID)
}

// Convert turns an APPROVED document into its derived document: a quotation
// into an invoice, a purchase order or subcontractor work order into a bill.
// An empty target selects the conversion the source type supports.
func (s *DocumentService) Convert(ctx context.Context, id uuid.UUID, req *domain.ConvertDocumentRequest, actor domain.Actor) (*domain.ConversionResultDTO, error) {
	ctx, span := s.startSpan(ctx, "document.convert", attribute.String("document.id", id.String()))
	defer span.End()

	var dueDate *time.Time
	if req != nil && req.DueDate != "" {
		d, err := parseDate("dueDate", req.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = d
	}

	var sourceID, derivedID uuid.UUID
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		source, err := s.lockDocument(ctx, id)
		if err != nil {
			return err
		}

		m, err := workflow.For(source.DocumentType)
		if err != nil {
			return err
		}
		target, ok := m.ConvertsTo()
		if !ok {
			return domain.NewInvalidTransition("a %s cannot be converted", source.DocumentType)
		}
		if req != nil && req.Target != "" && req.Target != target {
			return domain.NewInvalidTransition("a %s converts into a %s, not a %s", source.DocumentType, target, req.Target)
		}
		factory, ok := factoryFor(target)
		if !ok {
			return fmt.Errorf("no factory registered for %s", target)
		}

		to, err := s.fire(ctx, source, workflow.EventConvert, "")
		if err != nil {
			return err
		}

		today := s.today()
		number, err := s.numbers.Generate(ctx, target, today)
		if err != nil {
			return err
		}
		due := dueDate
		if due == nil && s.defaults.PaymentTermDays > 0 {
			d := today.AddDate(0, 0, s.defaults.PaymentTermDays)
			due = &d
		}

		derived := factory.Build(source, DerivedSpec{Number: number, DocumentDate: today, DueDate: due, Actor: actor})
		if err := money.Recalculate(derived); err != nil {
			return err
		}
		if err := s.docRepo.Create(ctx, derived); err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}

		from := source.Status
		now := s.now()
		source.Status = to
		source.ConvertedAt = &now
		source.ConvertedBy = actor.ID
		source.SetConversionLink(factory.Link(derived.ID))
		if err := s.docRepo.Update(ctx, source); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}

		if err := s.record(ctx, source, domain.ActivityConverted, from, to, actor, "converted into "+derived.DocumentNumber); err != nil {
			return err
		}
		if err := s.record(ctx, derived, domain.ActivityCreated, "", derived.Status, actor,
			fmt.Sprintf("converted from %s revision %d", source.DocumentNumber, source.Revision)); err != nil {
			return err
		}

		sourceID, derivedID = source.ID, derived.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithActor(s.logger, actor).Info("document converted",
		zap.String("source_id", sourceID.String()),
		zap.String("derived_id", derivedID.String()))

	source, err := s.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	derived, err := s.GetByID(ctx, derivedID)
	if err != nil {
		return nil, err
	}
	return &domain.ConversionResultDTO{Source: *source, Derived: *derived}, nil
}

// ConvertToInvoice converts an approved quotation
func (s *DocumentService) ConvertToInvoice(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.ConversionResultDTO, error) {
	return s.Convert(ctx, id, &domain.ConvertDocumentRequest{Target: domain.DocumentTypeInvoice}, actor)
}

// ConvertToBill converts an approved purchase order or subcontractor work order
func (s *DocumentService) ConvertToBill(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.ConversionResultDTO, error) {
	return s.Convert(ctx, id, &domain.ConvertDocumentRequest{Target: domain.DocumentTypeBill}, actor)
}

// MarkExpired moves every open document past its validity date to EXPIRED in
// one statement and returns how many rows changed. A document valid until
// today is still valid.
func (s *DocumentService) MarkExpired(ctx context.Context, actor domain.Actor) (int64, error) {
	ctx, span := s.startSpan(ctx, "document.mark_expired")
	defer span.End()

	today := s.today()
	var expired int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		expired, err = s.docRepo.ExpireOverdue(ctx, workflow.ExpirableTypes(), today, s.now())
		if err != nil {
			return fmt.Errorf("failed to expire documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("documents.expired", expired))
	logger.WithActor(s.logger, actor).Info("expired overdue documents",
		zap.Int64("count", expired),
		zap.String("today", today.Format("2006-01-02")))

	return expired, nil
}
