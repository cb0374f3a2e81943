package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
)

// DerivedSpec is what a factory needs besides the source document
type DerivedSpec struct {
	Number       string
	DocumentDate time.Time
	DueDate      *time.Time
	Actor        domain.Actor
}

// DerivedFactory builds the document a conversion produces. The result is an
// unsaved DRAFT whose totals are not yet computed.
type DerivedFactory interface {
	Target() domain.DocumentType
	Build(source *domain.Document, spec DerivedSpec) *domain.Document
	Link(id uuid.UUID) domain.ConversionTarget
}

// InvoiceFactory turns an approved quotation into an invoice
type InvoiceFactory struct{}

func (InvoiceFactory) Target() domain.DocumentType { return domain.DocumentTypeInvoice }

func (InvoiceFactory) Build(source *domain.Document, spec DerivedSpec) *domain.Document {
	return buildFlatDocument(domain.DocumentTypeInvoice, source, spec)
}

func (InvoiceFactory) Link(id uuid.UUID) domain.ConversionTarget {
	return domain.InvoiceTarget{ID: id}
}

// BillFactory turns an approved purchase order or subcontractor work order into a bill
type BillFactory struct{}

func (BillFactory) Target() domain.DocumentType { return domain.DocumentTypeBill }

func (BillFactory) Build(source *domain.Document, spec DerivedSpec) *domain.Document {
	return buildFlatDocument(domain.DocumentTypeBill, source, spec)
}

func (BillFactory) Link(id uuid.UUID) domain.ConversionTarget {
	return domain.BillTarget{ID: id}
}

// buildFlatDocument copies the party, currency, and discount and tax settings
// of source. Each source line collapses into one flat line whose amount is the
// source line total, so the derived totals equal the source totals.
func buildFlatDocument(target domain.DocumentType, source *domain.Document, spec DerivedSpec) *domain.Document {
	doc := &domain.Document{
		DocumentType:   target,
		DocumentNumber: spec.Number,
		Status:         domain.StatusDraft,
		PartyID:        source.PartyID,
		DocumentDate:   spec.DocumentDate,
		DueDate:        spec.DueDate,
		Currency:       source.Currency,
		ExchangeRate:   source.ExchangeRate,
		DiscountType:   source.DiscountType,
		DiscountValue:  source.DiscountValue,
		TaxRate:        source.TaxRate,
		Notes:          source.Notes,
		Terms:          source.Terms,
		CreatedBy:      spec.Actor.ID,
	}

	doc.Lines = make([]domain.LineItem, len(source.Lines))
	for i, line := range source.Lines {
		doc.Lines[i] = flatLine(line.ProductID, line.Description, line.LineTotal, line.SortOrder, i)
	}
	return doc
}

var factories = map[domain.DocumentType]DerivedFactory{
	domain.DocumentTypeInvoice: InvoiceFactory{},
	domain.DocumentTypeBill:    BillFactory{},
}

// factoryFor returns the factory producing target
func factoryFor(target domain.DocumentType) (DerivedFactory, bool) {
	f, ok := factories[target]
	if !ok || f.Target() != target {
		return nil, false
	}
	return f, true
}
