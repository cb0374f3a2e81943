package handler_test

import (
	"net/http"
	"testing"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactHandler_CRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/contacts", map[string]string{
		"name":        "PT Karya Abadi",
		"contactType": "customer",
		"email":       "finance@karya-abadi.co.id",
		"taxId":       "01.234.567.8-901.000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contact := decode[domain.ContactDTO](t, rec)
	assert.Equal(t, domain.ContactTypeCustomer, contact.ContactType)
	id := contact.ID.String()

	rec = ts.do(t, http.MethodGet, "/contacts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PT Karya Abadi", decode[domain.ContactDTO](t, rec).Name)

	rec = ts.do(t, http.MethodPut, "/contacts/"+id, map[string]string{
		"name":        "PT Karya Abadi Sejahtera",
		"contactType": "supplier",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ContactTypeSupplier, decode[domain.ContactDTO](t, rec).ContactType)

	rec = ts.do(t, http.MethodGet, "/contacts?contactType=supplier&search=karya", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[domain.PaginatedResponse](t, rec).Total)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/contacts/"+id, nil).Code)
	assertProblem(t, ts.do(t, http.MethodGet, "/contacts/"+id, nil), http.StatusNotFound, domain.ErrorTypeNotFound)
}

func TestContactHandler_Validation(t *testing.T) {
	ts := newTestServer(t)

	problem := assertProblem(t, ts.do(t, http.MethodPost, "/contacts", map[string]string{
		"name":        "",
		"contactType": "reseller",
		"email":       "not-an-email",
	}), http.StatusBadRequest, domain.ErrorTypeValidation)
	assert.Contains(t, problem.Errors, "name")
	assert.Contains(t, problem.Errors, "contactType")
	assert.Contains(t, problem.Errors, "email")

	assertProblem(t, ts.do(t, http.MethodGet, "/contacts?contactType=reseller", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
	assertProblem(t, ts.do(t, http.MethodGet, "/contacts/123", nil), http.StatusBadRequest, domain.ErrorTypeBadRequest)
}

func TestContactHandler_ReferencedContact(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.createQuotation(t, "")
	id := doc.PartyID.String()

	assertProblem(t, ts.do(t, http.MethodDelete, "/contacts/"+id, nil), http.StatusConflict, domain.ErrorTypeConflict)

	assertProblem(t, ts.do(t, http.MethodPut, "/contacts/"+id, map[string]string{
		"name":        "PT Sinar Jaya",
		"contactType": "supplier",
	}), http.StatusUnprocessableEntity, domain.ErrorTypeBusinessRule)
}
