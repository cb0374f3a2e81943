package handler

import (
	"net/http"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// List godoc
// @Summary List contacts
// @Description Get paginated list of customers, suppliers and subcontractors
// @Tags Contacts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param search query string false "Search by name, email or tax ID"
// @Param contactType query string false "Filter by contact type" Enums(customer, supplier, subcontractor)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var contactType *domain.ContactType
	if v := r.URL.Query().Get("contactType"); v != "" {
		ct := domain.ContactType(v)
		if !ct.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid contactType: must be one of customer, supplier, subcontractor")
			return
		}
		contactType = &ct
	}

	result, err := h.contactService.List(r.Context(), page, pageSize, contactType, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list contacts", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body domain.CreateContactRequest true "Contact data"
// @Success 201 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts [post]
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.contactService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create contact", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/contacts/"+contact.ID.String())
	respondJSON(w, http.StatusCreated, contact)
}

// GetByID godoc
// @Summary Get contact
// @Tags Contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "contact")
	if !ok {
		return
	}

	contact, err := h.contactService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// Update godoc
// @Summary Update contact
// @Description Replace the contact fields. The type of a contact referenced by documents cannot change.
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body domain.UpdateContactRequest true "Contact data"
// @Success 200 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [put]
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "contact")
	if !ok {
		return
	}

	var req domain.UpdateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.contactService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update contact", zap.String("contact_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// Delete godoc
// @Summary Delete contact
// @Tags Contacts
// @Param id path string true "Contact ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "contact")
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
