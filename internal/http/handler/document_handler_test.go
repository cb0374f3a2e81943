package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDocumentHandler_Create(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/documents", ts.quotationBody(t, "2026-11-30"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	doc := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, "/api/v1/documents/"+doc.ID.String(), rec.Header().Get("Location"))
	assert.Equal(t, "QUO-202610-0001", doc.DocumentNumber)
	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, int64(100000), doc.Subtotal)
	assert.Equal(t, int64(11000), doc.TaxAmount)
	assert.Equal(t, int64(111000), doc.Total)
	assert.Equal(t, "user-1", doc.CreatedBy)
	assert.True(t, doc.Actions.CanSubmit)
}

func TestDocumentHandler_CreateRejects(t *testing.T) {
	ts := newTestServer(t)

	t.Run("malformed json", func(t *testing.T) {
		req := ts.do(t, http.MethodPost, "/documents", "not an object")
		assertProblem(t, req, http.StatusBadRequest, domain.ErrorTypeBadRequest)
	})

	t.Run("missing line description", func(t *testing.T) {
		body := ts.quotationBody(t, "")
		body["items"] = []map[string]interface{}{{"quantity": "1", "unitPrice": 1000}}
		problem := assertProblem(t, ts.do(t, http.MethodPost, "/documents", body), http.StatusBadRequest, domain.ErrorTypeValidation)
		assert.Contains(t, problem.Errors, "items[0].description")
	})

	t.Run("bad date", func(t *testing.T) {
		body := ts.quotationBody(t, "30/11/2026")
		problem := assertProblem(t, ts.do(t, http.MethodPost, "/documents", body), http.StatusBadRequest, domain.ErrorTypeValidation)
		assert.Contains(t, problem.Errors, "validUntil")
	})

	t.Run("negative quantity is a business rule", func(t *testing.T) {
		body := ts.quotationBody(t, "")
		body["items"] = []map[string]interface{}{{"description": "x", "quantity": "-1", "unitPrice": 1000, "taxRate": "11"}}
		assertProblem(t, ts.do(t, http.MethodPost, "/documents", body), http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		user := ts.user
		ts.user = nil
		defer func() { ts.user = user }()
		assertProblem(t, ts.do(t, http.MethodPost, "/documents", ts.quotationBody(t, "")), http.StatusUnauthorized, domain.ErrorTypeUnauthorized)
	})

	var count int64
	require.NoError(t, ts.db.Model(&domain.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDocumentHandler_GetByID(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")

	rec := ts.do(t, http.MethodGet, "/documents/"+doc.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, doc.DocumentNumber, got.DocumentNumber)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Kabel NYM 3x2.5", got.Lines[0].Description)

	assertProblem(t, ts.do(t, http.MethodGet, "/documents/not-a-uuid", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
	assertProblem(t, ts.do(t, http.MethodGet, "/documents/"+uuid.NewString(), nil), http.StatusNotFound, domain.ErrorTypeNotFound)
}

func TestDocumentHandler_List(t *testing.T) {
	ts := newTestServer(t)
	ts.createQuotation(t, "")
	ts.createQuotation(t, "")

	rec := ts.do(t, http.MethodGet, "/documents?type=quotation&status=DRAFT&pageSize=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.PaginatedResponse](t, rec)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	assertProblem(t, ts.do(t, http.MethodGet, "/documents?type=memo", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
	assertProblem(t, ts.do(t, http.MethodGet, "/documents?status=draft", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
	assertProblem(t, ts.do(t, http.MethodGet, "/documents?partyId=42", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
}

func TestDocumentHandler_UpdateAfterSubmitIsNotEditable(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.ID.String()

	rec := ts.do(t, http.MethodPut, "/documents/"+id, map[string]interface{}{"notes": "Harga franco Surabaya"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Harga franco Surabaya", decode[domain.DocumentDTO](t, rec).Notes)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/submit", nil).Code)

	problem := assertProblem(t, ts.do(t, http.MethodPut, "/documents/"+id, map[string]interface{}{"notes": "late"}),
		http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
	assert.Contains(t, problem.Detail, "only draft documents can be edited")
}

func TestDocumentHandler_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.ID.String()

	rec := ts.do(t, http.MethodPost, "/documents/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusSubmitted, decode[domain.DocumentDTO](t, rec).Status)

	// approving twice is a transition error, not a server error
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/approve", nil).Code)
	assertProblem(t, ts.do(t, http.MethodPost, "/documents/"+id+"/approve", nil), http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)

	rec = ts.do(t, http.MethodPost, "/documents/"+id+"/convert", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[domain.ConversionResultDTO](t, rec)
	assert.Equal(t, domain.StatusConverted, result.Source.Status)
	assert.Equal(t, domain.DocumentTypeInvoice, result.Derived.DocumentType)
	assert.Equal(t, "INV-202610-0001", result.Derived.DocumentNumber)
	assert.Equal(t, result.Source.Total, result.Derived.Total)
	require.NotNil(t, result.Source.ConvertedToInvoiceID)
	assert.Equal(t, result.Derived.ID, *result.Source.ConvertedToInvoiceID)

	rec = ts.do(t, http.MethodGet, "/documents/"+id+"/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	activities := decode[[]domain.DocumentActivityDTO](t, rec)
	actions := make([]domain.ActivityAction, len(activities))
	for i, a := range activities {
		actions[i] = a.Action
	}
	assert.Equal(t, []domain.ActivityAction{
		domain.ActivityCreated, domain.ActivitySubmitted, domain.ActivityApproved, domain.ActivityConverted,
	}, actions)
}

func TestDocumentHandler_ConvertWrongTarget(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.ID.String()
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/submit", nil).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/approve", nil).Code)

	assertProblem(t, ts.do(t, http.MethodPost, "/documents/"+id+"/convert", map[string]string{"target": "bill"}),
		http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
	assertProblem(t, ts.do(t, http.MethodPost, "/documents/"+id+"/convert", map[string]string{"target": "memo"}),
		http.StatusBadRequest, domain.ErrorTypeValidation)
}

func TestDocumentHandler_RejectAndRevise(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.ID.String()
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/submit", nil).Code)

	assertProblem(t, ts.do(t, http.MethodPost, "/documents/"+id+"/reject", map[string]string{"reason": ""}),
		http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)

	rec := ts.do(t, http.MethodPost, "/documents/"+id+"/reject", map[string]string{"reason": "Harga terlalu tinggi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rejected := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "Harga terlalu tinggi", rejected.RejectionReason)

	rec = ts.do(t, http.MethodPost, "/documents/"+id+"/revise", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	revision := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, doc.DocumentNumber, revision.DocumentNumber)
	assert.Equal(t, 1, revision.Revision)
	assert.Equal(t, domain.StatusDraft, revision.Status)

	rec = ts.do(t, http.MethodGet, "/documents/"+id+"/revisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.DocumentDTO](t, rec), 2)
}

func TestDocumentHandler_DuplicateDeleteCancel(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.ID.String()

	rec := ts.do(t, http.MethodPost, "/documents/"+id+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dup := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, "QUO-202610-0002", dup.DocumentNumber)
	assert.Equal(t, doc.Total, dup.Total)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/documents/"+dup.ID.String(), nil).Code)
	assertProblem(t, ts.do(t, http.MethodGet, "/documents/"+dup.ID.String(), nil), http.StatusNotFound, domain.ErrorTypeNotFound)

	// quotations lapse instead of being cancelled
	assertProblem(t, ts.do(t, http.MethodPost, "/documents/"+id+"/cancel", map[string]string{"reason": "Dobel input"}),
		http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+id+"/submit", nil).Code)
	assertProblem(t, ts.do(t, http.MethodDelete, "/documents/"+id, nil), http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
}

func TestDocumentHandler_CancelPurchaseOrder(t *testing.T) {
	ts := newTestServer(t)
	supplier := testutil.CreateTestContact(t, ts.db, "CV Baja Utama", domain.ContactTypeSupplier)
	rec := ts.do(t, http.MethodPost, "/documents", map[string]interface{}{
		"documentType": "purchase_order",
		"partyId":      supplier.ID,
		"items": []map[string]interface{}{
			{"description": "Besi beton 10mm", "quantity": "100", "unit": "btg", "unitPrice": 85000, "taxRate": "11"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	po := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, "PO-202610-0001", po.DocumentNumber)

	rec = ts.do(t, http.MethodPost, "/documents/"+po.ID.String()+"/cancel", map[string]string{"reason": "Supplier tidak sanggup"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[domain.DocumentDTO](t, rec)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Supplier tidak sanggup", cancelled.CancellationReason)
}

func TestDocumentHandler_Expire(t *testing.T) {
	ts := newTestServer(t)
	overdue := ts.createQuotation(t, "2026-10-15")
	current := ts.createQuotation(t, "2026-10-16")
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+overdue.ID.String()+"/submit", nil).Code)

	rec := ts.do(t, http.MethodPost, "/documents/expire", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), decode[domain.ExpireResultDTO](t, rec).Expired)

	got := decode[domain.DocumentDTO](t, ts.do(t, http.MethodGet, "/documents/"+overdue.ID.String(), nil))
	assert.Equal(t, domain.StatusExpired, got.Status)
	got = decode[domain.DocumentDTO](t, ts.do(t, http.MethodGet, "/documents/"+current.ID.String(), nil))
	assert.Equal(t, domain.StatusDraft, got.Status)

	rec = ts.do(t, http.MethodPost, "/documents/expire", nil)
	assert.Equal(t, int64(0), decode[domain.ExpireResultDTO](t, rec).Expired)
}

func TestDocumentHandler_Statistics(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	ts.createQuotation(t, "")
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/documents/"+doc.ID.String()+"/submit", nil).Code)

	rec := ts.do(t, http.MethodGet, "/documents/statistics?type=quotation&startDate=2026-10-01&endDate=2026-10-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[domain.DocumentStatisticsDTO](t, rec)
	assert.Equal(t, int64(2), stats.TotalDocuments)
	assert.Equal(t, int64(222000), stats.TotalValue)

	assertProblem(t, ts.do(t, http.MethodGet, "/documents/statistics?startDate=yesterday", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
	assertProblem(t, ts.do(t, http.MethodGet, "/documents/statistics?startDate=2026-10-31&endDate=2026-10-01", nil),
		http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
}

func TestDocumentHandler_Export(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")

	rec := ts.do(t, http.MethodGet, "/documents/export?type=quotation", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "documents-20261016-")
	assert.NotEmpty(t, rec.Header().Get("X-Export-Path"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	number, err := f.GetCellValue("Documents", "A2")
	require.NoError(t, err)
	assert.Equal(t, doc.DocumentNumber, number)
}
