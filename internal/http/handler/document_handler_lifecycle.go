package handler

// Workflow transitions for the DocumentHandler: submit, approve, reject, cancel,
// revise, convert and the batch expiry sweep.

import (
	"net/http"

	"github.com/nusa-erp/erp-api/internal/domain"
	"go.uber.org/zap"
)

// Submit godoc
// @Summary Submit document
// @Description Move a DRAFT with at least one line to SUBMITTED
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/submit [post]
func (h *DocumentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Submit(r.Context(), id, actor)
	if err != nil {
		h.logger.Warn("failed to submit document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Approve godoc
// @Summary Approve document
// @Description Move a SUBMITTED document to APPROVED. Expired quotations cannot be approved.
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/approve [post]
func (h *DocumentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Approve(r.Context(), id, actor)
	if err != nil {
		h.logger.Warn("failed to approve document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Reject godoc
// @Summary Reject document
// @Description Move a SUBMITTED document to REJECTED. A reason is required.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.ReasonRequest true "Rejection reason"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/reject [post]
func (h *DocumentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	var req domain.ReasonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Reject(r.Context(), id, req.Reason, actor)
	if err != nil {
		h.logger.Warn("failed to reject document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Cancel godoc
// @Summary Cancel document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.ReasonRequest true "Cancellation reason"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	var req domain.ReasonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Cancel(r.Context(), id, req.Reason, actor)
	if err != nil {
		h.logger.Warn("failed to cancel document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Revise godoc
// @Summary Revise document
// @Description Create the next revision of a settled document as a new DRAFT with the same number
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/revise [post]
func (h *DocumentHandler) Revise(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Revise(r.Context(), id, actor)
	if err != nil {
		h.logger.Warn("failed to revise document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID.String())
	respondJSON(w, http.StatusCreated, doc)
}

// Convert godoc
// @Summary Convert document
// @Description Convert an APPROVED quotation to an invoice or an APPROVED purchase order to a bill
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.ConvertDocumentRequest false "Conversion options"
// @Success 201 {object} domain.ConversionResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/convert [post]
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	var req domain.ConvertDocumentRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	result, err := h.documentService.Convert(r.Context(), id, &req, actor)
	if err != nil {
		h.logger.Warn("failed to convert document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+result.Derived.ID.String())
	respondJSON(w, http.StatusCreated, result)
}

// Expire godoc
// @Summary Expire overdue documents
// @Description Mark every DRAFT or SUBMITTED document whose validity ended before today as EXPIRED
// @Tags Documents
// @Produce json
// @Success 200 {object} domain.ExpireResultDTO
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/expire [post]
func (h *DocumentHandler) Expire(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	count, err := h.documentService.MarkExpired(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to expire documents", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.ExpireResultDTO{Expired: count})
}
