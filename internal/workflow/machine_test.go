package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func date(offsetDays int) *time.Time {
	d := today.AddDate(0, 0, offsetDays)
	return &d
}

func quotation(t *testing.T) *workflow.Machine {
	m, err := workflow.For(domain.DocumentTypeQuotation)
	require.NoError(t, err)
	return m
}

func TestFor_AllDocumentTypesRegistered(t *testing.T) {
	for _, dt := range domain.AllDocumentTypes {
		t.Run(string(dt), func(t *testing.T) {
			m, err := workflow.For(dt)
			require.NoError(t, err)
			assert.Equal(t, dt, m.Type())
			assert.Contains(t, m.States(), domain.StatusDraft)
		})
	}

	_, err := workflow.For("unknown")
	assert.Error(t, err)
}

func TestSubmit_RequiresLineItems(t *testing.T) {
	m := quotation(t)

	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusDraft, LatestRevision: true}
	to, err := m.Fire(workflow.EventSubmit, s, today, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, domain.StatusDraft, to)
	assert.False(t, m.CanSubmit(s, today))

	s.LineCount = 1
	to, err = m.Fire(workflow.EventSubmit, s, today, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, to)
	assert.True(t, m.CanSubmit(s, today))
}

func TestApprove_ExpiryBoundary(t *testing.T) {
	m := quotation(t)

	tests := []struct {
		name       string
		validUntil *time.Time
		wantOK     bool
	}{
		{"valid until today", date(0), true},
		{"valid until tomorrow", date(1), true},
		{"valid until yesterday", date(-1), false},
		{"no deadline", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := workflow.Subject{
				Type:           domain.DocumentTypeQuotation,
				Status:         domain.StatusSubmitted,
				LineCount:      1,
				ValidUntil:     tt.validUntil,
				LatestRevision: true,
			}
			err := m.Check(workflow.EventApprove, s, today, "")
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
				assert.Contains(t, err.Error(), "expired")
			}
			assert.Equal(t, tt.wantOK, m.CanApprove(s, today))
		})
	}
}

func TestIsExpired_Boundary(t *testing.T) {
	assert.False(t, workflow.IsExpired(date(0), today))
	assert.True(t, workflow.IsExpired(date(-1), today))
	assert.False(t, workflow.IsExpired(nil, today))

	// Today late in the evening in Jakarta is still the same calendar date.
	jakarta := time.FixedZone("WIB", 7*3600)
	lateToday := time.Date(2026, 10, 16, 23, 59, 0, 0, jakarta)
	assert.False(t, workflow.IsExpired(date(0), lateToday))
}

func TestReject_RequiresReason(t *testing.T) {
	m := quotation(t)
	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusSubmitted, LineCount: 1, LatestRevision: true}

	assert.True(t, m.CanReject(s, today))

	_, err := m.Fire(workflow.EventReject, s, today, "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	to, err := m.Fire(workflow.EventReject, s, today, "price too high")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, to)
}

func TestExpire(t *testing.T) {
	m := quotation(t)

	for _, st := range []domain.DocumentStatus{domain.StatusDraft, domain.StatusSubmitted} {
		s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: st, ValidUntil: date(-1)}
		to, err := m.Fire(workflow.EventExpire, s, today, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusExpired, to)
	}

	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusDraft, ValidUntil: date(0)}
	assert.False(t, m.Can(workflow.EventExpire, s, today))

	s = workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusApproved, ValidUntil: date(-1)}
	assert.False(t, m.Can(workflow.EventExpire, s, today))
}

func TestConvert(t *testing.T) {
	m := quotation(t)
	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusApproved, LineCount: 1, LatestRevision: true}

	assert.True(t, m.CanConvert(s, today))
	target, ok := m.ConvertsTo()
	assert.True(t, ok)
	assert.Equal(t, domain.DocumentTypeInvoice, target)

	to, err := m.Fire(workflow.EventConvert, s, today, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, to)

	s.LatestRevision = false
	assert.False(t, m.CanConvert(s, today))

	s.LatestRevision = true
	s.Converted = true
	assert.False(t, m.CanConvert(s, today))
	assert.False(t, m.CanRevise(s, today))
}

func TestRevise_OnlyFromSettledStates(t *testing.T) {
	m := quotation(t)

	tests := []struct {
		status domain.DocumentStatus
		want   bool
	}{
		{domain.StatusDraft, false},
		{domain.StatusSubmitted, false},
		{domain.StatusApproved, true},
		{domain.StatusRejected, true},
		{domain.StatusExpired, true},
		{domain.StatusConverted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: tt.status, LineCount: 1, LatestRevision: true}
			assert.Equal(t, tt.want, m.CanRevise(s, today))
		})
	}
}

func TestEdit_NonDraftIsNotEditable(t *testing.T) {
	m := quotation(t)
	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusSubmitted, LineCount: 1, LatestRevision: true}

	err := m.Check(workflow.EventEdit, s, today, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotEditable))
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	s.Status = domain.StatusDraft
	assert.True(t, m.CanEdit(s, today))
	assert.True(t, m.CanDelete(s, today))
}

func TestPurchaseOrder_ConvertEndsInReceived(t *testing.T) {
	m, err := workflow.For(domain.DocumentTypePurchaseOrder)
	require.NoError(t, err)

	s := workflow.Subject{Type: domain.DocumentTypePurchaseOrder, Status: domain.StatusApproved, LineCount: 2, LatestRevision: true}
	to, err := m.Fire(workflow.EventConvert, s, today, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, to)

	target, ok := m.ConvertsTo()
	assert.True(t, ok)
	assert.Equal(t, domain.DocumentTypeBill, target)
	assert.Contains(t, m.States(), domain.StatusReceived)
	assert.NotContains(t, m.States(), domain.StatusConverted)
}

func TestInvoice_CancelAndUnsupportedEvents(t *testing.T) {
	m, err := workflow.For(domain.DocumentTypeInvoice)
	require.NoError(t, err)

	s := workflow.Subject{Type: domain.DocumentTypeInvoice, Status: domain.StatusApproved, LineCount: 1, LatestRevision: true}
	assert.True(t, m.CanCancel(s, today))
	assert.False(t, m.Supports(workflow.EventConvert))
	assert.False(t, m.Supports(workflow.EventRevise))

	_, ok := m.ConvertsTo()
	assert.False(t, ok)

	err = m.Check(workflow.EventRevise, s, today, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = m.Fire(workflow.EventCancel, s, today, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	to, err := m.Fire(workflow.EventCancel, s, today, "duplicate invoice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, to)
}

func TestCancel_OnlyLatestRevision(t *testing.T) {
	for _, dt := range domain.AllDocumentTypes {
		m, err := workflow.For(dt)
		require.NoError(t, err)
		if !m.Supports(workflow.EventCancel) {
			continue
		}
		t.Run(string(dt), func(t *testing.T) {
			s := workflow.Subject{Type: dt, Status: domain.StatusSubmitted, LineCount: 1}
			to, err := m.Fire(workflow.EventCancel, s, today, "superseded")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
			assert.Equal(t, domain.StatusSubmitted, to)
			assert.False(t, m.CanCancel(s, today))

			s.LatestRevision = true
			to, err = m.Fire(workflow.EventCancel, s, today, "superseded")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, to)
		})
	}
}

func TestActions(t *testing.T) {
	m := quotation(t)
	s := workflow.Subject{Type: domain.DocumentTypeQuotation, Status: domain.StatusDraft, LineCount: 1, ValidUntil: date(5), LatestRevision: true}

	actions := m.Actions(s, today)
	assert.True(t, actions[workflow.EventSubmit])
	assert.True(t, actions[workflow.EventEdit])
	assert.True(t, actions[workflow.EventDelete])
	assert.False(t, actions[workflow.EventApprove])
	assert.False(t, actions[workflow.EventConvert])
	_, hasCancel := actions[workflow.EventCancel]
	assert.False(t, hasCancel)
}

func TestExpirableTypes(t *testing.T) {
	assert.Equal(t, []domain.DocumentType{domain.DocumentTypeQuotation}, workflow.ExpirableTypes())
}
