package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType identifies a transactional document variant
type DocumentType string

const (
	DocumentTypeQuotation              DocumentType = "quotation"
	DocumentTypePurchaseOrder          DocumentType = "purchase_order"
	DocumentTypeInvoice                DocumentType = "invoice"
	DocumentTypeBill                   DocumentType = "bill"
	DocumentTypeSalesReturn            DocumentType = "sales_return"
	DocumentTypePurchaseReturn         DocumentType = "purchase_return"
	DocumentTypeWorkOrder              DocumentType = "work_order"
	DocumentTypeSubcontractorWorkOrder DocumentType = "subcontractor_work_order"
)

// AllDocumentTypes lists every supported document type
var AllDocumentTypes = []DocumentType{
	DocumentTypeQuotation,
	DocumentTypePurchaseOrder,
	DocumentTypeInvoice,
	DocumentTypeBill,
	DocumentTypeSalesReturn,
	DocumentTypePurchaseReturn,
	DocumentTypeWorkOrder,
	DocumentTypeSubcontractorWorkOrder,
}

var documentPrefixes = map[DocumentType]string{
	DocumentTypeQuotation:              "QUO",
	DocumentTypePurchaseOrder:          "PO",
	DocumentTypeInvoice:                "INV",
	DocumentTypeBill:                   "BILL",
	DocumentTypeSalesReturn:            "SR",
	DocumentTypePurchaseReturn:         "PR",
	DocumentTypeWorkOrder:              "WO",
	DocumentTypeSubcontractorWorkOrder: "SWO",
}

// IsValid reports whether the document type is known
func (t DocumentType) IsValid() bool {
	_, ok := documentPrefixes[t]
	return ok
}

// Prefix returns the document number prefix, e.g. QUO
func (t DocumentType) Prefix() string {
	return documentPrefixes[t]
}

// FlatLines reports whether lines of this type carry a single amount instead of
// a quantity/price/discount/tax breakdown.
func (t DocumentType) FlatLines() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeBill
}

// PartyType returns the contact type a document of this type must reference.
// Work orders are internal and return an empty type.
func (t DocumentType) PartyType() ContactType {
	switch t {
	case DocumentTypeQuotation, DocumentTypeInvoice, DocumentTypeSalesReturn:
		return ContactTypeCustomer
	case DocumentTypePurchaseOrder, DocumentTypeBill, DocumentTypePurchaseReturn:
		return ContactTypeSupplier
	case DocumentTypeSubcontractorWorkOrder:
		return ContactTypeSubcontractor
	default:
		return ""
	}
}

// DocumentStatus is a workflow state
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusSubmitted DocumentStatus = "SUBMITTED"
	StatusApproved  DocumentStatus = "APPROVED"
	StatusRejected  DocumentStatus = "REJECTED"
	StatusExpired   DocumentStatus = "EXPIRED"
	StatusConverted DocumentStatus = "CONVERTED"
	StatusReceived  DocumentStatus = "RECEIVED"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid reports whether the status is known
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected,
		StatusExpired, StatusConverted, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// DiscountType selects how the document-level discount is applied
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether the discount type is known
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountNone, DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// Document is the shared shape of every transactional document
type Document struct {
	BaseModel
	DocumentType       DocumentType    `gorm:"type:varchar(40);not null;index;uniqueIndex:idx_documents_type_number_revision,priority:1;column:document_type"`
	DocumentNumber     string          `gorm:"type:varchar(50);not null;index;uniqueIndex:idx_documents_type_number_revision,priority:2;column:document_number"`
	Revision           int             `gorm:"not null;default:0;uniqueIndex:idx_documents_type_number_revision,priority:3"`
	OriginalDocumentID *uuid.UUID      `gorm:"type:uuid;index;column:original_document_id"`
	Status             DocumentStatus  `gorm:"type:varchar(20);not null;index"`
	PartyID            *uuid.UUID      `gorm:"type:uuid;index;column:party_id"`
	Party              *Contact        `gorm:"foreignKey:PartyID"`
	DocumentDate       time.Time       `gorm:"type:date;not null;column:document_date"`
	ValidUntil         *time.Time      `gorm:"type:date;index;column:valid_until"`
	DueDate            *time.Time      `gorm:"type:date;column:due_date"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'IDR'"`
	ExchangeRate       decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1;column:exchange_rate"`

	Subtotal          int64           `gorm:"not null;default:0"`
	DiscountType      DiscountType    `gorm:"type:varchar(20);not null;default:'none';column:discount_type"`
	DiscountValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:discount_value"`
	DiscountAmount    int64           `gorm:"not null;default:0;column:discount_amount"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0;column:tax_rate"`
	TaxAmount         int64           `gorm:"not null;default:0;column:tax_amount"`
	Total             int64           `gorm:"not null;default:0"`
	BaseCurrencyTotal int64           `gorm:"not null;default:0;column:base_currency_total"`

	Notes string `gorm:"type:text"`
	Terms string `gorm:"type:text"`

	SubmittedAt        *time.Time `gorm:"column:submitted_at"`
	SubmittedBy        string     `gorm:"type:varchar(100);column:submitted_by"`
	ApprovedAt         *time.Time `gorm:"column:approved_at"`
	ApprovedBy         string     `gorm:"type:varchar(100);column:approved_by"`
	RejectedAt         *time.Time `gorm:"column:rejected_at"`
	RejectedBy         string     `gorm:"type:varchar(100);column:rejected_by"`
	RejectionReason    string     `gorm:"type:text;column:rejection_reason"`
	ConvertedAt        *time.Time `gorm:"column:converted_at"`
	ConvertedBy        string     `gorm:"type:varchar(100);column:converted_by"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancelledBy        string     `gorm:"type:varchar(100);column:cancelled_by"`
	CancellationReason string     `gorm:"type:text;column:cancellation_reason"`
	ExpiredAt          *time.Time `gorm:"column:expired_at"`

	ConvertedToInvoiceID *uuid.UUID `gorm:"type:uuid;column:converted_to_invoice_id"`
	ConvertedToBillID    *uuid.UUID `gorm:"type:uuid;column:converted_to_bill_id"`
	AppliesToInvoiceID   *uuid.UUID `gorm:"type:uuid;index;column:applies_to_invoice_id"`
	AppliesToBillID      *uuid.UUID `gorm:"type:uuid;index;column:applies_to_bill_id"`

	CreatedBy string     `gorm:"type:varchar(100);column:created_by"`
	Lines     []LineItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// LineItem belongs to exactly one document
type LineItem struct {
	BaseModel
	DocumentID      uuid.UUID       `gorm:"type:uuid;not null;index;column:document_id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;column:product_id"`
	Description     string          `gorm:"type:varchar(1000);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit            string          `gorm:"type:varchar(20)"`
	UnitPrice       int64           `gorm:"not null;column:unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0;column:discount_percent"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0;column:tax_rate"`
	DiscountAmount  int64           `gorm:"not null;default:0;column:discount_amount"`
	TaxAmount       int64           `gorm:"not null;default:0;column:tax_amount"`
	LineTotal       int64           `gorm:"not null;default:0;column:line_total"`
	SortOrder       int             `gorm:"not null;default:0;column:sort_order"`
	Position        int             `gorm:"not null;default:0"`
}

// TableName keeps line items in document_lines
func (LineItem) TableName() string {
	return "document_lines"
}

// IsConverted reports whether the document already produced a derived document
func (d *Document) IsConverted() bool {
	return d.ConvertedToInvoiceID != nil || d.ConvertedToBillID != nil
}

// RootID returns the id of the first document in this revision family
func (d *Document) RootID() uuid.UUID {
	if d.OriginalDocumentID != nil {
		return *d.OriginalDocumentID
	}
	return d.ID
}

// ConversionLink returns the document this one was converted into, or nil
func (d *Document) ConversionLink() ConversionTarget {
	switch {
	case d.ConvertedToInvoiceID != nil:
		return InvoiceTarget{ID: *d.ConvertedToInvoiceID}
	case d.ConvertedToBillID != nil:
		return BillTarget{ID: *d.ConvertedToBillID}
	}
	return nil
}

// SetConversionLink records the derived document on the source
func (d *Document) SetConversionLink(target ConversionTarget) {
	switch t := target.(type) {
	case InvoiceTarget:
		id := t.ID
		d.ConvertedToInvoiceID = &id
	case BillTarget:
		id := t.ID
		d.ConvertedToBillID = &id
	}
}

// AppliesTo returns the invoice or bill a return document references, or nil
func (d *Document) AppliesTo() ReturnReference {
	switch {
	case d.AppliesToInvoiceID != nil:
		return InvoiceRef{ID: *d.AppliesToInvoiceID}
	case d.AppliesToBillID != nil:
		return BillRef{ID: *d.AppliesToBillID}
	}
	return nil
}

// SetAppliesTo stores a return reference, clearing the other variant
func (d *Document) SetAppliesTo(ref ReturnReference) {
	d.AppliesToInvoiceID = nil
	d.AppliesToBillID = nil
	switch r := ref.(type) {
	case InvoiceRef:
		id := r.ID
		d.AppliesToInvoiceID = &id
	case BillRef:
		id := r.ID
		d.AppliesToBillID = &id
	}
}

// ConversionTarget is a sealed union over the document kinds a conversion can produce.
type ConversionTarget interface {
	TargetType() DocumentType
	isConversionTarget()
}

// InvoiceTarget points at an invoice
type InvoiceTarget struct{ ID uuid.UUID }

// BillTarget points at a bill
type BillTarget struct{ ID uuid.UUID }

func (InvoiceTarget) TargetType() DocumentType { return DocumentTypeInvoice }
func (BillTarget) TargetType() DocumentType    { return DocumentTypeBill }
func (InvoiceTarget) isConversionTarget()      {}
func (BillTarget) isConversionTarget()         {}

// ReturnReference is a sealed union over the documents a return can apply to.
type ReturnReference interface {
	ReferencedType() DocumentType
	ReferencedID() uuid.UUID
	isReturnReference()
}

// InvoiceRef references an invoice from a sales return
type InvoiceRef struct{ ID uuid.UUID }

// BillRef references a bill from a purchase return
type BillRef struct{ ID uuid.UUID }

func (InvoiceRef) ReferencedType() DocumentType { return DocumentTypeInvoice }
func (BillRef) ReferencedType() DocumentType    { return DocumentTypeBill }
func (r InvoiceRef) ReferencedID() uuid.UUID    { return r.ID }
func (r BillRef) ReferencedID() uuid.UUID       { return r.ID }
func (InvoiceRef) isReturnReference()           {}
func (BillRef) isReturnReference()              {}

// DateOf truncates t to its calendar date in t's own location and returns it
// as midnight UTC, the form dates are stored in.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
