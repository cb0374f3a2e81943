package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Contacts
// ============================================================================

type CreateContactRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	ContactType ContactType `json:"contactType" validate:"required,oneof=customer supplier subcontractor"`
	Email       string      `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       string      `json:"phone,omitempty" validate:"max=50"`
	Address     string      `json:"address,omitempty" validate:"max=500"`
	City        string      `json:"city,omitempty" validate:"max=100"`
	TaxID       string      `json:"taxId,omitempty" validate:"max=30"`
	Notes       string      `json:"notes,omitempty"`
}

type UpdateContactRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	ContactType ContactType `json:"contactType" validate:"required,oneof=customer supplier subcontractor"`
	Email       string      `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       string      `json:"phone,omitempty" validate:"max=50"`
	Address     string      `json:"address,omitempty" validate:"max=500"`
	City        string      `json:"city,omitempty" validate:"max=100"`
	TaxID       string      `json:"taxId,omitempty" validate:"max=30"`
	Notes       string      `json:"notes,omitempty"`
}

type ContactDTO struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	ContactType ContactType `json:"contactType"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Address     string      `json:"address,omitempty"`
	City        string      `json:"city,omitempty"`
	TaxID       string      `json:"taxId,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// ============================================================================
// Documents
// ============================================================================

// LineItemRequest describes one line. Invoice and bill lines only use Amount;
// every other type uses the quantity, price, discount and tax breakdown.
type LineItemRequest struct {
	ProductID       *uuid.UUID      `json:"productId,omitempty"`
	Description     string          `json:"description" validate:"required,max=1000"`
	Quantity        decimal.Decimal `json:"quantity" swaggertype:"string" example:"2"`
	Unit            string          `json:"unit,omitempty" validate:"max=20"`
	UnitPrice       int64           `json:"unitPrice" validate:"min=0"`
	DiscountPercent decimal.Decimal `json:"discountPercent" swaggertype:"string" example:"0"`
	TaxRate         decimal.Decimal `json:"taxRate" swaggertype:"string" example:"11"`
	Amount          int64           `json:"amount" validate:"min=0"`
	SortOrder       int             `json:"sortOrder"`
}

type CreateDocumentRequest struct {
	DocumentType  DocumentType      `json:"documentType" validate:"required"`
	PartyID       *uuid.UUID        `json:"partyId,omitempty"`
	DocumentDate  string            `json:"documentDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil    string            `json:"validUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string            `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency      string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExchangeRate  *decimal.Decimal  `json:"exchangeRate,omitempty" swaggertype:"string"`
	DiscountType  DiscountType      `json:"discountType,omitempty" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue decimal.Decimal   `json:"discountValue" swaggertype:"string"`
	TaxRate       *decimal.Decimal  `json:"taxRate,omitempty" swaggertype:"string"`
	Notes         string            `json:"notes,omitempty"`
	Terms         string            `json:"terms,omitempty"`
	AppliesToID   *uuid.UUID        `json:"appliesToId,omitempty"`
	Items         []LineItemRequest `json:"items" validate:"dive"`
}

// UpdateDocumentRequest replaces the editable fields of a draft. A nil Items
// keeps the current lines; any other value replaces all of them.
type UpdateDocumentRequest struct {
	PartyID       *uuid.UUID        `json:"partyId,omitempty"`
	DocumentDate  string            `json:"documentDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil    string            `json:"validUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string            `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency      string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExchangeRate  *decimal.Decimal  `json:"exchangeRate,omitempty" swaggertype:"string"`
	DiscountType  DiscountType      `json:"discountType,omitempty" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue decimal.Decimal   `json:"discountValue" swaggertype:"string"`
	TaxRate       *decimal.Decimal  `json:"taxRate,omitempty" swaggertype:"string"`
	Notes         string            `json:"notes,omitempty"`
	Terms         string            `json:"terms,omitempty"`
	AppliesToID   *uuid.UUID        `json:"appliesToId,omitempty"`
	Items         []LineItemRequest `json:"items,omitempty" validate:"dive"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type ConvertDocumentRequest struct {
	// Target must match the conversion of the source type; empty picks it
	Target  DocumentType `json:"target,omitempty" validate:"omitempty,oneof=invoice bill"`
	DueDate string       `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type LineItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"productId,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity" swaggertype:"string"`
	Unit            string          `json:"unit,omitempty"`
	UnitPrice       int64           `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent" swaggertype:"string"`
	TaxRate         decimal.Decimal `json:"taxRate" swaggertype:"string"`
	DiscountAmount  int64           `json:"discountAmount"`
	TaxAmount       int64           `json:"taxAmount"`
	LineTotal       int64           `json:"lineTotal"`
	Amount          *int64          `json:"amount,omitempty"`
	SortOrder       int             `json:"sortOrder"`
}

// DocumentActionsDTO tells the client which transitions currently pass their guards
type DocumentActionsDTO struct {
	CanSubmit  bool `json:"canSubmit"`
	CanApprove bool `json:"canApprove"`
	CanReject  bool `json:"canReject"`
	CanCancel  bool `json:"canCancel"`
	CanConvert bool `json:"canConvert"`
	CanRevise  bool `json:"canRevise"`
	CanEdit    bool `json:"canEdit"`
	CanDelete  bool `json:"canDelete"`
}

type DocumentDTO struct {
	ID                 uuid.UUID      `json:"id"`
	DocumentType       DocumentType   `json:"documentType"`
	DocumentNumber     string         `json:"documentNumber"`
	Revision           int            `json:"revision"`
	OriginalDocumentID *uuid.UUID     `json:"originalDocumentId,omitempty"`
	Status             DocumentStatus `json:"status"`
	PartyID            *uuid.UUID     `json:"partyId,omitempty"`
	PartyName          string         `json:"partyName,omitempty"`
	DocumentDate       string         `json:"documentDate"`
	ValidUntil         *string        `json:"validUntil,omitempty"`
	DueDate            *string        `json:"dueDate,omitempty"`

	Currency          string          `json:"currency"`
	ExchangeRate      decimal.Decimal `json:"exchangeRate" swaggertype:"string"`
	Subtotal          int64           `json:"subtotal"`
	DiscountType      DiscountType    `json:"discountType"`
	DiscountValue     decimal.Decimal `json:"discountValue" swaggertype:"string"`
	DiscountAmount    int64           `json:"discountAmount"`
	TaxRate           decimal.Decimal `json:"taxRate" swaggertype:"string"`
	TaxAmount         int64           `json:"taxAmount"`
	Total             int64           `json:"total"`
	BaseCurrencyTotal int64           `json:"baseCurrencyTotal"`

	Notes string `json:"notes,omitempty"`
	Terms string `json:"terms,omitempty"`

	SubmittedAt        *string `json:"submittedAt,omitempty"`
	SubmittedBy        string  `json:"submittedBy,omitempty"`
	ApprovedAt         *string `json:"approvedAt,omitempty"`
	ApprovedBy         string  `json:"approvedBy,omitempty"`
	RejectedAt         *string `json:"rejectedAt,omitempty"`
	RejectedBy         string  `json:"rejectedBy,omitempty"`
	RejectionReason    string  `json:"rejectionReason,omitempty"`
	ConvertedAt        *string `json:"convertedAt,omitempty"`
	ConvertedBy        string  `json:"convertedBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CancelledBy        string  `json:"cancelledBy,omitempty"`
	CancellationReason string  `json:"cancellationReason,omitempty"`
	ExpiredAt          *string `json:"expiredAt,omitempty"`

	ConvertedToInvoiceID *uuid.UUID `json:"convertedToInvoiceId,omitempty"`
	ConvertedToBillID    *uuid.UUID `json:"convertedToBillId,omitempty"`
	AppliesToInvoiceID   *uuid.UUID `json:"appliesToInvoiceId,omitempty"`
	AppliesToBillID      *uuid.UUID `json:"appliesToBillId,omitempty"`

	IsExpired        bool               `json:"isExpired"`
	IsOverdue        bool               `json:"isOverdue"`
	IsLatestRevision bool               `json:"isLatestRevision"`
	Actions          DocumentActionsDTO `json:"actions"`

	CreatedBy string        `json:"createdBy,omitempty"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	Lines     []LineItemDTO `json:"lines"`
}

type DocumentActivityDTO struct {
	ID         uuid.UUID      `json:"id"`
	DocumentID uuid.UUID      `json:"documentId"`
	Action     ActivityAction `json:"action"`
	FromStatus DocumentStatus `json:"fromStatus,omitempty"`
	ToStatus   DocumentStatus `json:"toStatus,omitempty"`
	ActorID    string         `json:"actorId,omitempty"`
	ActorName  string         `json:"actorName,omitempty"`
	Note       string         `json:"note,omitempty"`
	OccurredAt string         `json:"occurredAt"`
}

// ConversionResultDTO returns both sides of a conversion
type ConversionResultDTO struct {
	Source  DocumentDTO `json:"source"`
	Derived DocumentDTO `json:"derived"`
}

type StatusStatisticsDTO struct {
	Status            DocumentStatus `json:"status"`
	Count             int64          `json:"count"`
	Total             int64          `json:"total"`
	BaseCurrencyTotal int64          `json:"baseCurrencyTotal"`
}

type DocumentStatisticsDTO struct {
	DocumentType   DocumentType          `json:"documentType,omitempty"`
	StartDate      *string               `json:"startDate,omitempty"`
	EndDate        *string               `json:"endDate,omitempty"`
	TotalDocuments int64                 `json:"totalDocuments"`
	TotalValue     int64                 `json:"totalValue"`
	ByStatus       []StatusStatisticsDTO `json:"byStatus"`
	ApprovalRate   float64               `json:"approvalRate"`
	ConversionRate float64               `json:"conversionRate"`
}

type ExpireResultDTO struct {
	Expired int64 `json:"expired"`
}

// ============================================================================
// Shared
// ============================================================================

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
