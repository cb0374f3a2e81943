package workflow

import (
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
)

// hasLines blocks leaving DRAFT without any line items
func hasLines(s Subject, _ time.Time) error {
	if s.LineCount == 0 {
		return domain.NewInvalidTransition("%s has no line items", label(s.Type))
	}
	return nil
}

// notExpired requires valid_until >= today when a deadline is set
func notExpired(s Subject, today time.Time) error {
	if IsExpired(s.ValidUntil, today) {
		return domain.NewInvalidTransition("%s expired on %s", label(s.Type), s.ValidUntil.Format("2006-01-02"))
	}
	return nil
}

// pastValidity requires valid_until < today
func pastValidity(s Subject, today time.Time) error {
	if !IsExpired(s.ValidUntil, today) {
		return domain.NewInvalidTransition("%s is still valid", label(s.Type))
	}
	return nil
}

// latestRevision restricts an event to the newest revision of a number family
func latestRevision(s Subject, _ time.Time) error {
	if !s.LatestRevision {
		return domain.NewInvalidTransition("only the latest revision of a %s can be used", label(s.Type))
	}
	return nil
}

var (
	draft     = []domain.DocumentStatus{domain.StatusDraft}
	submitted = []domain.DocumentStatus{domain.StatusSubmitted}
	open      = []domain.DocumentStatus{domain.StatusDraft, domain.StatusSubmitted}
	live      = []domain.DocumentStatus{domain.StatusDraft, domain.StatusSubmitted, domain.StatusApproved}
	approved  = []domain.DocumentStatus{domain.StatusApproved}
	settled   = []domain.DocumentStatus{domain.StatusApproved, domain.StatusRejected}
)

// baseTransitions returns the rows every document type shares
func baseTransitions() map[Event]Transition {
	return map[Event]Transition{
		EventSubmit:  {From: draft, To: domain.StatusSubmitted, Guards: []Guard{hasLines}},
		EventApprove: {From: submitted, To: domain.StatusApproved, Guards: []Guard{notExpired}},
		EventReject:  {From: submitted, To: domain.StatusRejected, RequiresReason: true},
		EventEdit:    {From: draft},
		EventDelete:  {From: draft},
	}
}

func quotationDefinition() Definition {
	t := baseTransitions()
	t[EventExpire] = Transition{From: open, To: domain.StatusExpired, Guards: []Guard{pastValidity}}
	t[EventConvert] = Transition{From: approved, To: domain.StatusConverted, Guards: []Guard{latestRevision}}
	t[EventRevise] = Transition{
		From:   []domain.DocumentStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusExpired},
		Guards: []Guard{latestRevision},
	}
	return Definition{Type: domain.DocumentTypeQuotation, Transitions: t, ConvertsTo: domain.DocumentTypeInvoice}
}

func purchaseOrderDefinition() Definition {
	t := baseTransitions()
	t[EventCancel] = Transition{From: live, To: domain.StatusCancelled, RequiresReason: true, Guards: []Guard{latestRevision}}
	t[EventConvert] = Transition{From: approved, To: domain.StatusReceived, Guards: []Guard{latestRevision}}
	t[EventRevise] = Transition{From: settled, Guards: []Guard{latestRevision}}
	return Definition{Type: domain.DocumentTypePurchaseOrder, Transitions: t, ConvertsTo: domain.DocumentTypeBill}
}

func payableDefinition(docType domain.DocumentType) Definition {
	t := baseTransitions()
	t[EventCancel] = Transition{From: live, To: domain.StatusCancelled, RequiresReason: true, Guards: []Guard{latestRevision}}
	return Definition{Type: docType, Transitions: t}
}

func returnDefinition(docType domain.DocumentType) Definition {
	t := baseTransitions()
	t[EventCancel] = Transition{From: open, To: domain.StatusCancelled, RequiresReason: true, Guards: []Guard{latestRevision}}
	return Definition{Type: docType, Transitions: t}
}

func workOrderDefinition() Definition {
	t := baseTransitions()
	t[EventCancel] = Transition{From: live, To: domain.StatusCancelled, RequiresReason: true, Guards: []Guard{latestRevision}}
	t[EventRevise] = Transition{From: settled, Guards: []Guard{latestRevision}}
	return Definition{Type: domain.DocumentTypeWorkOrder, Transitions: t}
}

func subcontractorWorkOrderDefinition() Definition {
	t := baseTransitions()
	t[EventCancel] = Transition{From: live, To: domain.StatusCancelled, RequiresReason: true, Guards: []Guard{latestRevision}}
	t[EventConvert] = Transition{From: approved, To: domain.StatusConverted, Guards: []Guard{latestRevision}}
	t[EventRevise] = Transition{From: settled, Guards: []Guard{latestRevision}}
	return Definition{Type: domain.DocumentTypeSubcontractorWorkOrder, Transitions: t, ConvertsTo: domain.DocumentTypeBill}
}

var registry = map[domain.DocumentType]*Machine{
	domain.DocumentTypeQuotation:              New(quotationDefinition()),
	domain.DocumentTypePurchaseOrder:          New(purchaseOrderDefinition()),
	domain.DocumentTypeInvoice:                New(payableDefinition(domain.DocumentTypeInvoice)),
	domain.DocumentTypeBill:                   New(payableDefinition(domain.DocumentTypeBill)),
	domain.DocumentTypeSalesReturn:            New(returnDefinition(domain.DocumentTypeSalesReturn)),
	domain.DocumentTypePurchaseReturn:         New(returnDefinition(domain.DocumentTypePurchaseReturn)),
	domain.DocumentTypeWorkOrder:              New(workOrderDefinition()),
	domain.DocumentTypeSubcontractorWorkOrder: New(subcontractorWorkOrderDefinition()),
}

// ExpirableTypes returns the document types that support the system expire event
func ExpirableTypes() []domain.DocumentType {
	var types []domain.DocumentType
	for _, t := range domain.AllDocumentTypes {
		if registry[t].Supports(EventExpire) {
			types = append(types, t)
		}
	}
	return types
}
