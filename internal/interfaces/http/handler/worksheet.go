package handler

import (
	"context"

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExternalProductionService is the engine surface the worksheet endpoints drive
type ExternalProductionService interface {
	Open(ctx context.Context, req appsub.OpenWorksheetRequest) (*subcontracting.Worksheet, error)
	GetWorksheet(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error)
	UpdateWorksheet(ctx context.Context, id uuid.UUID, req appsub.UpdateWorksheetRequest) (*subcontracting.Worksheet, error)
	PrefillVendors(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error)
	ComputeStock(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error)
	ProduceExternally(ctx context.Context, id uuid.UUID) (*appsub.ProduceResult, error)
	CloseWorksheet(ctx context.Context, id uuid.UUID) error
}

// WorksheetHandler serves the external production worksheet endpoints
type WorksheetHandler struct {
	BaseHandler
	service ExternalProductionService
}

// NewWorksheetHandler creates a new WorksheetHandler
func NewWorksheetHandler(service ExternalProductionService) *WorksheetHandler {
	return &WorksheetHandler{service: service}
}

// RegisterRoutes mounts the worksheet routes under rg
func (h *WorksheetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/external-production/worksheets")
	ws.POST("", h.Open)
	ws.GET("/:id", h.Get)
	ws.PUT("/:id", h.Update)
	ws.POST("/:id/prefill-vendors", h.PrefillVendors)
	ws.POST("/:id/stock", h.ComputeStock)
	ws.POST("/:id/produce", h.Produce)
	ws.DELETE("/:id", h.Close)
}

// Open godoc
// @Summary      Open an external production worksheet
// @Description  Copies the raw and finished lines of a production order, or of one work order, into a new worksheet
// @Tags         external-production
// @Accept       json
// @Produce      json
// @Param        request body subcontracting.OpenWorksheetRequest true "Order or work order to subcontract"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /external-production/worksheets [post]
func (h *WorksheetHandler) Open(c *gin.Context) {
	var req appsub.OpenWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ws, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ws)
}

// Get godoc
// @Summary      Read a worksheet
// @Tags         external-production
// @Produce      json
// @Param        id path string true "Worksheet ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /external-production/worksheets/{id} [get]
func (h *WorksheetHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ws, err := h.service.GetWorksheet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Update godoc
// @Summary      Edit a worksheet
// @Description  Replaces partners, lines and flags. A new request date or external location is propagated to the lines.
// @Tags         external-production
// @Accept       json
// @Produce      json
// @Param        id path string true "Worksheet ID"
// @Param        request body subcontracting.UpdateWorksheetRequest true "Fields to change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /external-production/worksheets/{id} [put]
func (h *WorksheetHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appsub.UpdateWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ws, err := h.service.UpdateWorksheet(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// PrefillVendors proposes partners from the vendor price lists of the produced product
func (h *WorksheetHandler) PrefillVendors(c *gin.Context) {
	h.worksheetAction(c, h.service.PrefillVendors)
}

// ComputeStock fills the available quantity of every raw line
func (h *WorksheetHandler) ComputeStock(c *gin.Context) {
	h.worksheetAction(c, h.service.ComputeStock)
}

func (h *WorksheetHandler) worksheetAction(c *gin.Context, action func(context.Context, uuid.UUID) (*subcontracting.Worksheet, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ws, err := action(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Produce godoc
// @Summary      Produce externally
// @Description  Creates the outgoing and incoming transfers per partner, cancels the replaced order lines and derives purchase orders. The worksheet is consumed.
// @Tags         external-production
// @Produce      json
// @Param        id path string true "Worksheet ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response "Validation error or worksheet already submitted"
// @Failure      500 {object} dto.Response "Missing picking type configuration"
// @Router       /external-production/worksheets/{id}/produce [post]
func (h *WorksheetHandler) Produce(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.service.ProduceExternally(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Close discards the worksheet without touching the order
func (h *WorksheetHandler) Close(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.CloseWorksheet(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
