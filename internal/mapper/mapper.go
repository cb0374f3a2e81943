package mapper

import (
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/workflow"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

// DocumentView carries the context needed to derive the read-only flags of a
// document: the current date and whether it is the latest revision.
type DocumentView struct {
	Today  time.Time
	Latest bool
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:          contact.ID,
		Name:        contact.Name,
		ContactType: contact.ContactType,
		Email:       contact.Email,
		Phone:       contact.Phone,
		Address:     contact.Address,
		City:        contact.City,
		TaxID:       contact.TaxID,
		Notes:       contact.Notes,
		CreatedAt:   contact.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   contact.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToLineItemDTO converts LineItem to LineItemDTO. Flat lines also expose the
// line total as amount.
func ToLineItemDTO(line *domain.LineItem, flat bool) domain.LineItemDTO {
	dto := domain.LineItemDTO{
		ID:              line.ID,
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
	}
	if flat {
		amount := line.LineTotal
		dto.Amount = &amount
	}
	return dto
}

// ToDocumentDTO converts Document to DocumentDTO including the derived flags
// and the guard predicates of its workflow.
func ToDocumentDTO(doc *domain.Document, view DocumentView) domain.DocumentDTO {
	dto := domain.DocumentDTO{
		ID:                 doc.ID,
		DocumentType:       doc.DocumentType,
		DocumentNumber:     doc.DocumentNumber,
		Revision:           doc.Revision,
		OriginalDocumentID: doc.OriginalDocumentID,
		Status:             doc.Status,
		PartyID:            doc.PartyID,
		DocumentDate:       doc.DocumentDate.Format(dateLayout),
		ValidUntil:         formatDate(doc.ValidUntil),
		DueDate:            formatDate(doc.DueDate),

		Currency:          doc.Currency,
		ExchangeRate:      doc.ExchangeRate,
		Subtotal:          doc.Subtotal,
		DiscountType:      doc.DiscountType,
		DiscountValue:     doc.DiscountValue,
		DiscountAmount:    doc.DiscountAmount,
		TaxRate:           doc.TaxRate,
		TaxAmount:         doc.TaxAmount,
		Total:             doc.Total,
		BaseCurrencyTotal: doc.BaseCurrencyTotal,

		Notes: doc.Notes,
		Terms: doc.Terms,

		SubmittedAt:        formatTimestamp(doc.SubmittedAt),
		SubmittedBy:        doc.SubmittedBy,
		ApprovedAt:         formatTimestamp(doc.ApprovedAt),
		ApprovedBy:         doc.ApprovedBy,
		RejectedAt:         formatTimestamp(doc.RejectedAt),
		RejectedBy:         doc.RejectedBy,
		RejectionReason:    doc.RejectionReason,
		ConvertedAt:        formatTimestamp(doc.ConvertedAt),
		ConvertedBy:        doc.ConvertedBy,
		CancelledAt:        formatTimestamp(doc.CancelledAt),
		CancelledBy:        doc.CancelledBy,
		CancellationReason: doc.CancellationReason,
		ExpiredAt:          formatTimestamp(doc.ExpiredAt),

		ConvertedToInvoiceID: doc.ConvertedToInvoiceID,
		ConvertedToBillID:    doc.ConvertedToBillID,
		AppliesToInvoiceID:   doc.AppliesToInvoiceID,
		AppliesToBillID:      doc.AppliesToBillID,

		IsLatestRevision: view.Latest,
		CreatedBy:        doc.CreatedBy,
		CreatedAt:        doc.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:        doc.UpdatedAt.UTC().Format(timestampLayout),
	}

	if doc.Party != nil {
		dto.PartyName = doc.Party.Name
	}

	flat := doc.DocumentType.FlatLines()
	dto.Lines = make([]domain.LineItemDTO, len(doc.Lines))
	for i := range doc.Lines {
		dto.Lines[i] = ToLineItemDTO(&doc.Lines[i], flat)
	}

	if doc.DocumentType == domain.DocumentTypeQuotation {
		dto.IsExpired = doc.Status == domain.StatusExpired ||
			(isOpen(doc.Status) && workflow.IsExpired(doc.ValidUntil, view.Today))
	}
	if flat {
		unsettled := isOpen(doc.Status) || doc.Status == domain.StatusApproved
		dto.IsOverdue = unsettled && workflow.IsExpired(doc.DueDate, view.Today)
	}

	if m, err := workflow.For(doc.DocumentType); err == nil {
		s := workflow.SubjectOf(doc, view.Latest)
		dto.Actions = domain.DocumentActionsDTO{
			CanSubmit:  m.CanSubmit(s, view.Today),
			CanApprove: m.CanApprove(s, view.Today),
			CanReject:  m.CanReject(s, view.Today),
			CanCancel:  m.CanCancel(s, view.Today),
			CanConvert: m.CanConvert(s, view.Today),
			CanRevise:  m.CanRevise(s, view.Today),
			CanEdit:    m.CanEdit(s, view.Today),
			CanDelete:  m.CanDelete(s, view.Today),
		}
	}

	return dto
}

// ToDocumentActivityDTO converts DocumentActivity to DocumentActivityDTO
func ToDocumentActivityDTO(a *domain.DocumentActivity) domain.DocumentActivityDTO {
	return domain.DocumentActivityDTO{
		ID:         a.ID,
		DocumentID: a.DocumentID,
		Action:     a.Action,
		FromStatus: a.FromStatus,
		ToStatus:   a.ToStatus,
		ActorID:    a.ActorID,
		ActorName:  a.ActorName,
		Note:       a.Note,
		OccurredAt: a.OccurredAt.UTC().Format(timestampLayout),
	}
}

func isOpen(s domain.DocumentStatus) bool {
	return s == domain.StatusDraft || s == domain.StatusSubmitted
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}
