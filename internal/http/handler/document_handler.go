package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler handles HTTP requests for transactional documents
type DocumentHandler struct {
	documentService *service.DocumentService
	exportService   *service.ExportService
	logger          *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService, exportService *service.ExportService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		exportService:   exportService,
		logger:          logger,
	}
}

// parseFilters reads the shared list and export filters. It writes 400 on a bad value.
func parseFilters(w http.ResponseWriter, r *http.Request) (repository.DocumentFilters, bool) {
	q := r.URL.Query()
	filters := repository.DocumentFilters{Search: q.Get("search")}

	if v := q.Get("type"); v != "" {
		t := domain.DocumentType(v)
		if !t.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid type: unknown document type "+strconv.Quote(v))
			return filters, false
		}
		filters.Type = &t
	}

	if v := q.Get("status"); v != "" {
		s := domain.DocumentStatus(v)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status: unknown document status "+strconv.Quote(v))
			return filters, false
		}
		filters.Status = &s
	}

	if v := q.Get("partyId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partyId: must be a valid UUID")
			return filters, false
		}
		filters.PartyID = &id
	}

	return filters, true
}

// List godoc
// @Summary List documents
// @Description Get paginated list of documents, newest first
// @Tags Documents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param type query string false "Filter by document type" Enums(quotation, purchase_order, invoice, bill, sales_return, purchase_return, work_order, subcontractor_work_order)
// @Param status query string false "Filter by status" Enums(DRAFT, SUBMITTED, APPROVED, REJECTED, EXPIRED, CONVERTED, RECEIVED, CANCELLED)
// @Param partyId query string false "Filter by party ID"
// @Param search query string false "Search by document number or notes"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}

	result, err := h.documentService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create document
// @Description Create a DRAFT document. Totals are computed from the lines; a number is issued for the current period.
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body domain.CreateDocumentRequest true "Document data"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req domain.CreateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), &req, actor)
	if err != nil {
		h.logger.Error("failed to create document", zap.String("document_type", string(req.DocumentType)), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID.String())
	respondJSON(w, http.StatusCreated, doc)
}

// GetByID godoc
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Update godoc
// @Summary Update draft document
// @Description Replace the header of a DRAFT document. Items, when present, replace all lines.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.UpdateDocumentRequest true "Document data"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Document is not a draft"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	var req domain.UpdateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Update(r.Context(), id, &req, actor)
	if err != nil {
		h.logger.Warn("failed to update document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Delete godoc
// @Summary Delete document
// @Description Only DRAFT documents can be deleted
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	if err := h.documentService.Delete(r.Context(), id, actor); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Duplicate godoc
// @Summary Duplicate document
// @Description Copy the content of any document into a new DRAFT with a new number
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/duplicate [post]
func (h *DocumentHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Duplicate(r.Context(), id, actor)
	if err != nil {
		h.logger.Error("failed to duplicate document", zap.String("document_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID.String())
	respondJSON(w, http.StatusCreated, doc)
}

// Activities godoc
// @Summary Document activity log
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} domain.DocumentActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/activities [get]
func (h *DocumentHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	activities, err := h.documentService.GetActivities(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// Revisions godoc
// @Summary Document revisions
// @Description All revisions sharing the document number, oldest first
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/revisions [get]
func (h *DocumentHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	revisions, err := h.documentService.GetRevisions(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, revisions)
}

// Statistics godoc
// @Summary Document statistics
// @Description Counts and totals per status with approval and conversion rates
// @Tags Documents
// @Produce json
// @Param type query string false "Document type"
// @Param startDate query string false "First document date (YYYY-MM-DD)"
// @Param endDate query string false "Last document date (YYYY-MM-DD)"
// @Success 200 {object} domain.DocumentStatisticsDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/statistics [get]
func (h *DocumentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	var docType *domain.DocumentType
	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.DocumentType(v)
		if !t.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid type: unknown document type "+strconv.Quote(v))
			return
		}
		docType = &t
	}

	start, err := parseDateParam(r, "startDate")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "endDate")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.documentService.Statistics(r.Context(), docType, start, end)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Export godoc
// @Summary Export document register
// @Description Render the filtered documents to an Excel workbook. The archived copy's key is returned in X-Export-Path.
// @Tags Documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string false "Document type"
// @Param status query string false "Status"
// @Param partyId query string false "Party ID"
// @Param search query string false "Search by document number or notes"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/export [get]
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}

	result, err := h.exportService.ExportDocuments(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to export documents", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	if result.StoragePath != "" {
		w.Header().Set("X-Export-Path", result.StoragePath)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}
