package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/brokerage-backoffice/internal/application/service"
	"github.com/garyjia/brokerage-backoffice/internal/domain/checklist"
	"github.com/garyjia/brokerage-backoffice/internal/domain/reform"
	"github.com/garyjia/brokerage-backoffice/internal/domain/shift"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
		now:      time.Now,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateChecklistRequest is the body of POST /api/checklists
type CreateChecklistRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Type          string `json:"type" binding:"required"`
}

// SetItemRequest is the body of PUT /api/checklists/:id/items/:key
type SetItemRequest struct {
	Checked        *bool   `json:"checked" binding:"required"`
	Note           *string `json:"note"`
	AttachmentPath *string `json:"attachment_path"`
}

// SaveTransactionRequest is the body of PUT /api/transactions/:transactionID
type SaveTransactionRequest struct {
	CustomerName string `json:"customer_name"`
	AssigneeID   string `json:"assignee_id"`
}

// SaveCostsRequest is the body of PUT /api/reform-projects/:id/costs
type SaveCostsRequest struct {
	reform.CostBreakdown
	Revenue float64 `json:"revenue"`
}

// SubmitShiftRequest is the body of POST /api/shift-requests
type SubmitShiftRequest struct {
	EmployeeID string           `json:"employee_id" binding:"required"`
	Note       string           `json:"note"`
	Entries    []shift.Interval `json:"entries"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// CreateChecklist handles POST /api/checklists
func (h *Handlers) CreateChecklist(c *gin.Context) {
	var req CreateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "transaction_id and type are required")
		return
	}

	t, err := checklist.ParseType(req.Type)
	if err != nil {
		h.fail(c, err, "failed to create checklist")
		return
	}

	cl, err := h.services.Checklists.Create(c.Request.Context(), req.TransactionID, t)
	if err != nil {
		h.fail(c, err, "failed to create checklist", "transaction_id", req.TransactionID, "type", req.Type)
		return
	}

	respondOK(c, http.StatusCreated, cl)
}

// GetChecklistByID handles GET /api/checklists/:id
func (h *Handlers) GetChecklistByID(c *gin.Context) {
	id, ok := h.checklistID(c)
	if !ok {
		return
	}

	cl, err := h.services.Checklists.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to get checklist", "id", id)
		return
	}

	respondOK(c, http.StatusOK, cl)
}

// ListChecklists handles GET /api/transactions/:transactionID/checklists
func (h *Handlers) ListChecklists(c *gin.Context) {
	txID := c.Param("transactionID")

	list, err := h.services.Checklists.List(c.Request.Context(), txID)
	if err != nil {
		h.fail(c, err, "failed to list checklists", "transaction_id", txID)
		return
	}

	respondOK(c, http.StatusOK, list)
}

// GetChecklist handles GET /api/transactions/:transactionID/checklists/:type
func (h *Handlers) GetChecklist(c *gin.Context) {
	txID := c.Param("transactionID")

	t, err := checklist.ParseType(c.Param("type"))
	if err != nil {
		h.fail(c, err, "failed to get checklist")
		return
	}

	cl, err := h.services.Checklists.Get(c.Request.Context(), txID, t)
	if err != nil {
		h.fail(c, err, "failed to get checklist", "transaction_id", txID, "type", t)
		return
	}

	respondOK(c, http.StatusOK, cl)
}

// SetChecklistItem handles PUT /api/checklists/:id/items/:key
func (h *Handlers) SetChecklistItem(c *gin.Context) {
	id, ok := h.checklistID(c)
	if !ok {
		return
	}

	var req SetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "checked is required")
		return
	}

	result, err := h.services.Checklists.SetItem(c.Request.Context(), service.SetItemCommand{
		ChecklistID:    id,
		ItemKey:        c.Param("key"),
		Checked:        *req.Checked,
		Note:           req.Note,
		AttachmentPath: req.AttachmentPath,
		Actor:          actorFrom(c),
	})
	if err != nil {
		h.fail(c, err, "failed to update checklist item", "id", id, "key", c.Param("key"))
		return
	}

	respondOK(c, http.StatusOK, result)
}

// ChecklistStats handles GET /api/checklists/stats
func (h *Handlers) ChecklistStats(c *gin.Context) {
	stats, err := h.services.Checklists.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to compute statistics")
		return
	}

	respondOK(c, http.StatusOK, stats)
}

// ExportChecklistStats handles GET /api/checklists/stats/export.
// The document is rendered fully before any byte is sent so a failure
// still produces a JSON error.
func (h *Handlers) ExportChecklistStats(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.Checklists.ExportStats(c.Request.Context(), &buf); err != nil {
		h.fail(c, err, "failed to export statistics")
		return
	}

	format := h.services.ExportFormat
	filename := fmt.Sprintf("checklist_stats_%s%s", h.now().Format("20060102"), format.FileExtension())

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetTransaction handles GET /api/transactions/:transactionID
func (h *Handlers) GetTransaction(c *gin.Context) {
	txID := c.Param("transactionID")

	tx, err := h.services.Transactions.Get(c.Request.Context(), txID)
	if err != nil {
		h.fail(c, err, "failed to get transaction", "transaction_id", txID)
		return
	}

	respondOK(c, http.StatusOK, tx)
}

// SaveTransaction handles PUT /api/transactions/:transactionID
func (h *Handlers) SaveTransaction(c *gin.Context) {
	txID := c.Param("transactionID")

	var req SaveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.services.Transactions.Save(c.Request.Context(), txID, req.CustomerName, req.AssigneeID)
	if err != nil {
		h.fail(c, err, "failed to save transaction", "transaction_id", txID)
		return
	}

	respondOK(c, http.StatusOK, tx)
}

// GetReformCosts handles GET /api/reform-projects/:id/costs
func (h *Handlers) GetReformCosts(c *gin.Context) {
	projectID := c.Param("id")

	revenue := 0.0
	if raw := strings.TrimSpace(c.Query("revenue")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "revenue must be a number")
			return
		}
		revenue = v
	}

	view, err := h.services.Reform.GetCosts(c.Request.Context(), projectID, revenue)
	if err != nil {
		h.fail(c, err, "failed to get reform costs", "project_id", projectID)
		return
	}

	respondOK(c, http.StatusOK, view)
}

// SaveReformCosts handles PUT /api/reform-projects/:id/costs
func (h *Handlers) SaveReformCosts(c *gin.Context) {
	projectID := c.Param("id")

	var req SaveCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.services.Reform.SaveCosts(c.Request.Context(), projectID, req.CostBreakdown, req.Revenue, actorFrom(c))
	if err != nil {
		h.fail(c, err, "failed to save reform costs", "project_id", projectID)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// SubmitShiftRequest handles POST /api/shift-requests
func (h *Handlers) SubmitShiftRequest(c *gin.Context) {
	var req SubmitShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "employee_id is required")
		return
	}

	sub, err := h.services.Shifts.Submit(c.Request.Context(), req.EmployeeID, req.Note, req.Entries)
	if err != nil {
		h.fail(c, err, "failed to submit shift request", "employee_id", req.EmployeeID, "entries", len(req.Entries))
		return
	}

	respondOK(c, http.StatusCreated, sub)
}

// GetShiftRequest handles GET /api/shift-requests/:requestID
func (h *Handlers) GetShiftRequest(c *gin.Context) {
	requestID := c.Param("requestID")

	req, err := h.services.Shifts.Get(c.Request.Context(), requestID)
	if err != nil {
		h.fail(c, err, "failed to get shift request", "request_id", requestID)
		return
	}

	respondOK(c, http.StatusOK, req)
}

func (h *Handlers) checklistID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid checklist ID")
		return 0, false
	}
	return id, true
}

// fail logs the error with its context and writes the mapped status
func (h *Handlers) fail(c *gin.Context, err error, msg string, keysAndValues ...interface{}) {
	status := statusFor(err)
	kv := append([]interface{}{"error", err, "status", status}, keysAndValues...)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, kv...)
	} else {
		h.logger.Info(msg, kv...)
	}
	respondError(c, status, messageFor(err, msg))
}
