package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/logger"
	"github.com/nusa-erp/erp-api/internal/mapper"
	"github.com/nusa-erp/erp-api/internal/money"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/workflow"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("erp-api/service")

// Transactor runs fn inside one database transaction carried on the context
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DocumentDefaults are applied to newly created documents
type DocumentDefaults struct {
	Currency        string
	TaxRate         decimal.Decimal
	ValidityDays    int
	PaymentTermDays int
}

// DefaultsFromConfig converts the documents config section
func DefaultsFromConfig(cfg *config.DocumentsConfig) DocumentDefaults {
	return DocumentDefaults{
		Currency:        cfg.DefaultCurrency,
		TaxRate:         decimal.NewFromFloat(cfg.DefaultTaxRate),
		ValidityDays:    cfg.ValidityDays,
		PaymentTermDays: cfg.PaymentTermDays,
	}
}

// DocumentService creates, edits and moves documents through their workflow.
// Every mutating method takes the acting user explicitly and runs in one
// transaction; "today" is the clock's date in the configured location.
type DocumentService struct {
	tx           Transactor
	docRepo      *repository.DocumentRepository
	contactRepo  *repository.ContactRepository
	activityRepo *repository.ActivityRepository
	numbers      *NumberSequenceService
	clock        Clock
	location     *time.Location
	defaults     DocumentDefaults
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	tx Transactor,
	docRepo *repository.DocumentRepository,
	contactRepo *repository.ContactRepository,
	activityRepo *repository.ActivityRepository,
	numbers *NumberSequenceService,
	clock Clock,
	location *time.Location,
	defaults DocumentDefaults,
	logger *zap.Logger,
) *DocumentService {
	if location == nil {
		location = time.UTC
	}
	return &DocumentService{
		tx:           tx,
		docRepo:      docRepo,
		contactRepo:  contactRepo,
		activityRepo: activityRepo,
		numbers:      numbers,
		clock:        clock,
		location:     location,
		defaults:     defaults,
		logger:       logger,
	}
}

// Create validates and stores a new DRAFT document with a freshly issued number
func (s *DocumentService) Create(ctx context.Context, req *domain.CreateDocumentRequest, actor domain.Actor) (*domain.DocumentDTO, error) {
	ctx, span := s.startSpan(ctx, "document.create", attribute.String("document.type", string(req.DocumentType)))
	defer span.End()

	if !req.DocumentType.IsValid() {
		return nil, domain.NewInvalidInput("unknown document type %q", req.DocumentType)
	}

	today := s.today()
	doc := &domain.Document{
		DocumentType: req.DocumentType,
		Status:       domain.StatusDraft,
		DocumentDate: today,
		Currency:     s.defaults.Currency,
		ExchangeRate: decimal.NewFromInt(1),
		DiscountType: domain.DiscountNone,
		TaxRate:      s.defaults.TaxRate,
		CreatedBy:    actor.ID,
	}
	if err := s.applyHeader(doc, headerOf(req)); err != nil {
		return nil, err
	}
	s.applyDateDefaults(doc)

	lines, err := buildLines(doc.DocumentType, req.Items)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	if err := money.Recalculate(doc); err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, doc); err != nil {
			return err
		}
		number, err := s.numbers.Generate(ctx, doc.DocumentType, today)
		if err != nil {
			return err
		}
		doc.DocumentNumber = number
		if err := s.docRepo.Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return s.record(ctx, doc, domain.ActivityCreated, "", doc.Status, actor, "")
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithDocument(s.logger, doc.ID, doc.DocumentType, doc.DocumentNumber)
	logger.WithActor(log, actor).Info("document created",
		zap.Int("lines", len(doc.Lines)),
		zap.Int64("total", doc.Total))

	return s.GetByID(ctx, doc.ID)
}

// Update edits a DRAFT document. A non-nil Items replaces every line.
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDocumentRequest, actor domain.Actor) (*domain.DocumentDTO, error) {
	ctx, span := s.startSpan(ctx, "document.update", attribute.String("document.id", id.String()))
	defer span.End()

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.lockDocument(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.fire(ctx, doc, workflow.EventEdit, ""); err != nil {
			return err
		}

		if err := s.applyHeader(doc, headerOfUpdate(req)); err != nil {
			return err
		}
		replace := req.Items != nil
		if replace {
			lines, err := buildLines(doc.DocumentType, req.Items)
			if err != nil {
				return err
			}
			doc.Lines = lines
		}
		if err := money.Recalculate(doc); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, doc); err != nil {
			return err
		}

		if replace {
			err = s.docRepo.ReplaceLines(ctx, doc.ID, doc.Lines)
		} else {
			err = s.docRepo.UpdateLineAmounts(ctx, doc.Lines)
		}
		if err != nil {
			return err
		}
		if err := s.docRepo.Update(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return s.record(ctx, doc, domain.ActivityUpdated, doc.Status, doc.Status, actor, "")
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetByID returns a document with its lines and derived flags
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	latest, err := s.isLatest(ctx, doc)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDocumentDTO(doc, mapper.DocumentView{Today: s.today(), Latest: latest})
	return &dto, nil
}

// List returns a page of documents
func (s *DocumentService) List(ctx context.Context, page, pageSize int, filters repository.DocumentFilters) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	docs, total, err := s.docRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos, err := s.toDTOs(ctx, docs)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a DRAFT document
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	var deleted *domain.Document
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.lockDocument(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.fire(ctx, doc, workflow.EventDelete, ""); err != nil {
			return err
		}
		if err := s.docRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		deleted = doc
		return nil
	})
	if err != nil {
		return err
	}

	log := logger.WithDocument(s.logger, deleted.ID, deleted.DocumentType, deleted.DocumentNumber)
	logger.WithActor(log, actor).Info("document deleted")
	return nil
}

// Duplicate copies party, money settings and lines into a new DRAFT with a new
// number. The copy has no link back to its source.
func (s *DocumentService) Duplicate(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.DocumentDTO, error) {
	ctx, span := s.startSpan(ctx, "document.duplicate", attribute.String("document.id", id.String()))
	defer span.End()

	var copyID uuid.UUID
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		source, err := s.lockDocument(ctx, id)
		if err != nil {
			return err
		}

		today := s.today()
		number, err := s.numbers.Generate(ctx, source.DocumentType, today)
		if err != nil {
			return err
		}

		dup := copyContent(source)
		dup.DocumentNumber = number
		dup.DocumentDate = today
		dup.ValidUntil = nil
		dup.DueDate = nil
		dup.CreatedBy = actor.ID
		dup.SetAppliesTo(source.AppliesTo())
		s.applyDateDefaults(dup)
		if err := money.Recalculate(dup); err != nil {
			return err
		}

		if err := s.docRepo.Create(ctx, dup); err != nil {
			return fmt.Errorf("failed to create duplicate: %w", err)
		}
		copyID = dup.ID
		return s.record(ctx, dup, domain.ActivityDuplicated, "", dup.Status, actor,
			fmt.Sprintf("duplicated from %s revision %d", source.DocumentNumber, source.Revision))
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, copyID)
}

// GetActivities returns the audit trail of a document
func (s *DocumentService) GetActivities(ctx context.Context, id uuid.UUID) ([]domain.DocumentActivityDTO, error) {
	if _, err := s.getDocument(ctx, id); err != nil {
		return nil, err
	}
	activities, err := s.activityRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.DocumentActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToDocumentActivityDTO(&activities[i])
	}
	return dtos, nil
}

// GetRevisions returns every revision sharing the document's number, oldest first
func (s *DocumentService) GetRevisions(ctx context.Context, id uuid.UUID) ([]domain.DocumentDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	revisions, err := s.docRepo.ListRevisions(ctx, doc.DocumentType, doc.DocumentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return s.toDTOs(ctx, revisions)
}

// Statistics counts and sums documents per status and derives approval and
// conversion rates. Start and end are inclusive document dates.
func (s *DocumentService) Statistics(ctx context.Context, docType *domain.DocumentType, start, end *time.Time) (*domain.DocumentStatisticsDTO, error) {
	if docType != nil && !docType.IsValid() {
		return nil, domain.NewInvalidInput("unknown document type %q", *docType)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, domain.NewInvalidInput("end date must not be before start date")
	}

	rows, err := s.docRepo.AggregateByStatus(ctx, repository.StatsFilters{Type: docType, Start: start, End: end})
	if err != nil {
		return nil, err
	}

	dto := &domain.DocumentStatisticsDTO{
		StartDate: formatOptionalDate(start),
		EndDate:   formatOptionalDate(end),
		ByStatus:  make([]domain.StatusStatisticsDTO, 0, len(rows)),
	}
	if docType != nil {
		dto.DocumentType = *docType
	}

	counts := make(map[domain.DocumentStatus]int64, len(rows))
	byStatus := make(map[domain.DocumentStatus]domain.StatusStatisticsDTO, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
		dto.TotalDocuments += row.Count
		dto.TotalValue += row.Total
		byStatus[row.Status] = domain.StatusStatisticsDTO{
			Status:            row.Status,
			Count:             row.Count,
			Total:             row.Total,
			BaseCurrencyTotal: row.BaseCurrencyTotal,
		}
	}

	// A single type reports every state it can reach, zero counts included
	if docType != nil {
		m, err := workflow.For(*docType)
		if err != nil {
			return nil, err
		}
		for _, st := range m.States() {
			if _, ok := byStatus[st]; !ok {
				byStatus[st] = domain.StatusStatisticsDTO{Status: st}
			}
		}
	}
	for _, row := range byStatus {
		dto.ByStatus = append(dto.ByStatus, row)
	}
	sort.Slice(dto.ByStatus, func(i, j int) bool { return dto.ByStatus[i].Status < dto.ByStatus[j].Status })

	converted := counts[domain.StatusConverted] + counts[domain.StatusReceived]
	accepted := counts[domain.StatusApproved] + converted
	dto.ApprovalRate = percentage(accepted, accepted+counts[domain.StatusRejected])
	dto.ConversionRate = percentage(converted, accepted)

	return dto, nil
}

// percentage returns part/whole*100 rounded to two decimals, 0 for an empty whole
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).Round(2).InexactFloat64()
}

// ============================================================================
// Helpers
// ============================================================================

func (s *DocumentService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *DocumentService) today() time.Time {
	return domain.DateOf(s.clock.Now().In(s.location))
}

func (s *DocumentService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *DocumentService) getDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// lockDocument reads the document under a row lock. It must run inside a transaction.
func (s *DocumentService) lockDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to lock document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) isLatest(ctx context.Context, doc *domain.Document) (bool, error) {
	max, err := s.docRepo.MaxRevision(ctx, doc.DocumentType, doc.DocumentNumber)
	if err != nil {
		return false, fmt.Errorf("failed to read latest revision: %w", err)
	}
	return doc.Revision >= max, nil
}

// fire evaluates an event against the document's current state and returns
// the status it leads to
func (s *DocumentService) fire(ctx context.Context, doc *domain.Document, ev workflow.Event, reason string) (domain.DocumentStatus, error) {
	m, err := workflow.For(doc.DocumentType)
	if err != nil {
		return doc.Status, err
	}
	latest, err := s.isLatest(ctx, doc)
	if err != nil {
		return doc.Status, err
	}
	return m.Fire(ev, workflow.SubjectOf(doc, latest), s.today(), reason)
}

func (s *DocumentService) record(ctx context.Context, doc *domain.Document, action domain.ActivityAction, from, to domain.DocumentStatus, actor domain.Actor, note string) error {
	activity := &domain.DocumentActivity{
		DocumentID: doc.ID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Note:       note,
		OccurredAt: s.now(),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (s *DocumentService) toDTOs(ctx context.Context, docs []domain.Document) ([]domain.DocumentDTO, error) {
	latest, err := s.docRepo.MaxRevisions(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest revisions: %w", err)
	}
	today := s.today()
	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		key := repository.RevisionKey{Type: docs[i].DocumentType, Number: docs[i].DocumentNumber}
		dtos[i] = mapper.ToDocumentDTO(&docs[i], mapper.DocumentView{
			Today:  today,
			Latest: docs[i].Revision >= latest[key],
		})
	}
	return dtos, nil
}

// applyDateDefaults fills the quotation validity window and the payment term
func (s *DocumentService) applyDateDefaults(doc *domain.Document) {
	if doc.DocumentType == domain.DocumentTypeQuotation && doc.ValidUntil == nil && s.defaults.ValidityDays > 0 {
		d := doc.DocumentDate.AddDate(0, 0, s.defaults.ValidityDays)
		doc.ValidUntil = &d
	}
	if doc.DocumentType.FlatLines() && doc.DueDate == nil && s.defaults.PaymentTermDays > 0 {
		d := doc.DocumentDate.AddDate(0, 0, s.defaults.PaymentTermDays)
		doc.DueDate = &d
	}
}

// checkReferences verifies the party and the return reference inside the
// transaction that writes the document
func (s *DocumentService) checkReferences(ctx context.Context, doc *domain.Document) error {
	if doc.PartyID != nil {
		party, err := s.contactRepo.GetByID(ctx, *doc.PartyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewInvalidInput("party %s does not exist", doc.PartyID)
			}
			return fmt.Errorf("failed to get party: %w", err)
		}
		if want := doc.DocumentType.PartyType(); want != "" && party.ContactType != want {
			return domain.NewInvalidInput("a %s party must be a %s, %s is a %s",
				strings.ReplaceAll(string(doc.DocumentType), "_", " "), want, party.Name, party.ContactType)
		}
	}

	if ref := doc.AppliesTo(); ref != nil {
		target, err := s.docRepo.GetByID(ctx, ref.ReferencedID())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewInvalidInput("referenced %s %s does not exist", ref.ReferencedType(), ref.ReferencedID())
			}
			return fmt.Errorf("failed to get referenced document: %w", err)
		}
		if target.DocumentType != ref.ReferencedType() {
			return domain.NewInvalidInput("referenced document %s is a %s, not a %s",
				target.DocumentNumber, target.DocumentType, ref.ReferencedType())
		}
	}
	return nil
}

// headerInput is the editable header shared by create and update requests
type headerInput struct {
	PartyID       *uuid.UUID
	DocumentDate  string
	ValidUntil    string
	DueDate       string
	Currency      string
	ExchangeRate  *decimal.Decimal
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	TaxRate       *decimal.Decimal
	Notes         string
	Terms         string
	AppliesToID   *uuid.UUID
}

func headerOf(req *domain.CreateDocumentRequest) headerInput {
	return headerInput{
		PartyID:       req.PartyID,
		DocumentDate:  req.DocumentDate,
		ValidUntil:    req.ValidUntil,
		DueDate:       req.DueDate,
		Currency:      req.Currency,
		ExchangeRate:  req.ExchangeRate,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		Notes:         req.Notes,
		Terms:         req.Terms,
		AppliesToID:   req.AppliesToID,
	}
}

func headerOfUpdate(req *domain.UpdateDocumentRequest) headerInput {
	return headerInput{
		PartyID:       req.PartyID,
		DocumentDate:  req.DocumentDate,
		ValidUntil:    req.ValidUntil,
		DueDate:       req.DueDate,
		Currency:      req.Currency,
		ExchangeRate:  req.ExchangeRate,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		Notes:         req.Notes,
		Terms:         req.Terms,
		AppliesToID:   req.AppliesToID,
	}
}

// applyHeader copies the set fields of in onto doc. Empty strings and nil
// pointers leave the current value in place; notes and terms are always replaced.
func (s *DocumentService) applyHeader(doc *domain.Document, in headerInput) error {
	if in.PartyID != nil {
		id := *in.PartyID
		doc.PartyID = &id
	}
	if in.DocumentDate != "" {
		d, err := parseDate("documentDate", in.DocumentDate)
		if err != nil {
			return err
		}
		doc.DocumentDate = *d
	}
	if in.ValidUntil != "" {
		d, err := parseDate("validUntil", in.ValidUntil)
		if err != nil {
			return err
		}
		doc.ValidUntil = d
	}
	if in.DueDate != "" {
		d, err := parseDate("dueDate", in.DueDate)
		if err != nil {
			return err
		}
		doc.DueDate = d
	}
	if in.Currency != "" {
		doc.Currency = strings.ToUpper(in.Currency)
	}
	if in.ExchangeRate != nil {
		if !in.ExchangeRate.IsPositive() {
			return domain.NewInvalidInput("exchange rate must be greater than zero, got %s", in.ExchangeRate.String())
		}
		doc.ExchangeRate = *in.ExchangeRate
	}
	if in.DiscountType == "" && !in.DiscountValue.IsZero() {
		return domain.NewInvalidInput("discount value %s needs a discount type", in.DiscountValue.String())
	}
	if in.DiscountType != "" {
		if !in.DiscountType.IsValid() {
			return domain.NewInvalidInput("unknown discount type %q", in.DiscountType)
		}
		doc.DiscountType = in.DiscountType
		doc.DiscountValue = in.DiscountValue
		if in.DiscountType == domain.DiscountNone {
			doc.DiscountValue = decimal.Zero
		}
	}
	if in.TaxRate != nil {
		doc.TaxRate = *in.TaxRate
	}
	doc.Notes = in.Notes
	doc.Terms = in.Terms

	if in.AppliesToID != nil {
		switch doc.DocumentType {
		case domain.DocumentTypeSalesReturn:
			doc.SetAppliesTo(domain.InvoiceRef{ID: *in.AppliesToID})
		case domain.DocumentTypePurchaseReturn:
			doc.SetAppliesTo(domain.BillRef{ID: *in.AppliesToID})
		default:
			return domain.NewInvalidInput("only return documents can reference an invoice or bill")
		}
	}
	return nil
}

// buildLines converts line requests into unsaved line items. Invoice and bill
// lines are flat: one unit priced at the requested amount.
func buildLines(docType domain.DocumentType, reqs []domain.LineItemRequest) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, len(reqs))
	for i, req := range reqs {
		if strings.TrimSpace(req.Description) == "" {
			return nil, domain.NewInvalidInput("line %d: description is required", i+1)
		}
		if docType.FlatLines() {
			if req.Amount < 0 {
				return nil, domain.NewInvalidInput("line %d: amount must not be negative, got %d", i+1, req.Amount)
			}
			lines[i] = flatLine(req.ProductID, req.Description, req.Amount, req.SortOrder, i)
			continue
		}
		lines[i] = domain.LineItem{
			ProductID:       req.ProductID,
			Description:     req.Description,
			Quantity:        req.Quantity,
			Unit:            req.Unit,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			TaxRate:         req.TaxRate,
			SortOrder:       req.SortOrder,
			Position:        i,
		}
	}
	return lines, nil
}

func flatLine(productID *uuid.UUID, description string, amount int64, sortOrder, position int) domain.LineItem {
	return domain.LineItem{
		ProductID:       productID,
		Description:     description,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       amount,
		DiscountPercent: decimal.Zero,
		TaxRate:         decimal.Zero,
		SortOrder:       sortOrder,
		Position:        position,
	}
}

// copyContent returns an unsaved DRAFT carrying the party, money settings and
// lines of source, with every workflow field reset
func copyContent(source *domain.Document) *domain.Document {
	doc := &domain.Document{
		DocumentType:  source.DocumentType,
		Status:        domain.StatusDraft,
		PartyID:       source.PartyID,
		DocumentDate:  source.DocumentDate,
		ValidUntil:    source.ValidUntil,
		DueDate:       source.DueDate,
		Currency:      source.Currency,
		ExchangeRate:  source.ExchangeRate,
		DiscountType:  source.DiscountType,
		DiscountValue: source.DiscountValue,
		TaxRate:       source.TaxRate,
		Notes:         source.Notes,
		Terms:         source.Terms,
	}
	doc.Lines = make([]domain.LineItem, len(source.Lines))
	for i, line := range source.Lines {
		doc.Lines[i] = domain.LineItem{
			ProductID:       line.ProductID,
			Description:     line.Description,
			Quantity:        line.Quantity,
			Unit:            line.Unit,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxRate:         line.TaxRate,
			DiscountAmount:  line.DiscountAmount,
			TaxAmount:       line.TaxAmount,
			LineTotal:       line.LineTotal,
			SortOrder:       line.SortOrder,
			Position:        i,
		}
	}
	return doc
}

func parseDate(field, value string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, domain.NewInvalidInput("%s must be a date in YYYY-MM-DD format, got %q", field, value)
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
