package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nusa-erp/erp-api/internal/auth"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/http/handler"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/service"
	"github.com/nusa-erp/erp-api/internal/storage"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var wib = time.FixedZone("WIB", 7*60*60)

type testServer struct {
	db     *gorm.DB
	router http.Handler
	user   *auth.UserContext
}

// newTestServer mounts the handlers on a chi router with a fixed clock at
// 09:00 WIB on 16 October 2026. Requests run as the server's user.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	clock := service.FixedClock{At: time.Date(2026, time.October, 16, 9, 0, 0, 0, wib)}

	docRepo := repository.NewDocumentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	docs := service.NewDocumentService(
		database.NewTxManager(db),
		docRepo,
		contactRepo,
		repository.NewActivityRepository(db),
		service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger),
		clock,
		wib,
		service.DocumentDefaults{Currency: "IDR", TaxRate: decimal.NewFromInt(11), ValidityDays: 30, PaymentTermDays: 14},
		logger,
	)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	contactHandler := handler.NewContactHandler(service.NewContactService(contactRepo, docRepo, logger), logger)
	documentHandler := handler.NewDocumentHandler(docs, service.NewExportService(docRepo, store, clock, 100, logger), logger)

	ts := &testServer{
		db:   db,
		user: &auth.UserContext{UserID: "user-1", DisplayName: "Siti Rahayu", Roles: []auth.Role{auth.RoleApprover}},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ts.user != nil {
				r = r.WithContext(auth.WithUserContext(r.Context(), ts.user))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", contactHandler.List)
		r.Post("/", contactHandler.Create)
		r.Get("/{id}", contactHandler.GetByID)
		r.Put("/{id}", contactHandler.Update)
		r.Delete("/{id}", contactHandler.Delete)
	})
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", documentHandler.List)
		r.Post("/", documentHandler.Create)
		r.Get("/statistics", documentHandler.Statistics)
		r.Get("/export", documentHandler.Export)
		r.Post("/expire", documentHandler.Expire)
		r.Get("/{id}", documentHandler.GetByID)
		r.Put("/{id}", documentHandler.Update)
		r.Delete("/{id}", documentHandler.Delete)
		r.Get("/{id}/activities", documentHandler.Activities)
		r.Get("/{id}/revisions", documentHandler.Revisions)
		r.Post("/{id}/submit", documentHandler.Submit)
		r.Post("/{id}/approve", documentHandler.Approve)
		r.Post("/{id}/reject", documentHandler.Reject)
		r.Post("/{id}/cancel", documentHandler.Cancel)
		r.Post("/{id}/revise", documentHandler.Revise)
		r.Post("/{id}/duplicate", documentHandler.Duplicate)
		r.Post("/{id}/convert", documentHandler.Convert)
	})
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// quotationBody is a one-line quotation for a new customer: 2 x 50.000 with PPN 11%
func (ts *testServer) quotationBody(t *testing.T, validUntil string) map[string]interface{} {
	t.Helper()
	customer := testutil.CreateTestContact(t, ts.db, "PT Sinar Jaya", domain.ContactTypeCustomer)
	return map[string]interface{}{
		"documentType": "quotation",
		"partyId":      customer.ID,
		"validUntil":   validUntil,
		"items": []map[string]interface{}{
			{"description": "Kabel NYM 3x2.5", "quantity": "2", "unit": "roll", "unitPrice": 50000, "discountPercent": "0", "taxRate": "11"},
		},
	}
}

func (ts *testServer) createQuotation(t *testing.T, validUntil string) domain.DocumentDTO {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/documents", ts.quotationBody(t, validUntil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.DocumentDTO](t, rec)
}

func assertProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, errorType string) domain.APIError {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	problem := decode[domain.APIError](t, rec)
	assert.Equal(t, errorType, problem.Type)
	assert.Equal(t, status, problem.Status)
	return problem
}
