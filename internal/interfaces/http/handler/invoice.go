package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	billingapp "github.com/tradeops/backoffice/internal/application/billing"
	"github.com/tradeops/backoffice/internal/domain/billing"
)

// InvoiceHandler handles invoice posting API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoicePostingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoicePostingService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// CreateInvoiceLineInput represents a line in the create invoice request
// @Description Invoice line for creation
type CreateInvoiceLineInput struct {
	ItemID           string          `json:"item_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	ItemName         string          `json:"item_name" binding:"required,min=1,max=200" example:"Surf Excel 1kg"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required" example:"10"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"required" example:"100"`
	Discount1Percent decimal.Decimal `json:"discount1_percent" example:"10"`
	Discount2Percent decimal.Decimal `json:"discount2_percent" example:"5"`
	Scheme1Quantity  decimal.Decimal `json:"scheme1_quantity" example:"0"`
	Scheme2Quantity  decimal.Decimal `json:"scheme2_quantity" example:"0"`
	TaxCodes         []string        `json:"tax_codes" example:"GST-18"`

	// Batch metadata, required on purchase invoice lines
	BatchNumber       string          `json:"batch_number" example:"PB-500"`
	ManufacturingDate *time.Time      `json:"manufacturing_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
	UnitCost          decimal.Decimal `json:"unit_cost" example:"60"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
// @Description Request body for creating a draft invoice
type CreateInvoiceRequest struct {
	Type           string                   `json:"type" binding:"required,oneof=SALES PURCHASE RETURN_SALES RETURN_PURCHASE" example:"SALES"`
	PartyID        string                   `json:"party_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseID    string                   `json:"warehouse_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	ClaimAccountID *string                  `json:"claim_account_id" binding:"omitempty,uuid"`
	InvoiceDate    *time.Time               `json:"invoice_date"`
	DueDate        *time.Time               `json:"due_date"`
	Lines          []CreateInvoiceLineInput `json:"lines" binding:"required,min=1,dive"`
}

// CancelInvoiceRequest represents a request to cancel an invoice
// @Description Request body for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Customer refused delivery"`
}

// MarkPaidRequest represents a request to record payment against an invoice
// @Description Request body for marking an invoice paid or partially paid
type MarkPaidRequest struct {
	Partial bool   `json:"partial" example:"false"`
	Note    string `json:"note" binding:"max=500" example:"Bank transfer ref 8841"`
}

// ReturnLineInput represents a line in the create return request
// @Description Return line referencing an item on the original invoice
type ReturnLineInput struct {
	ItemID   string          `json:"item_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity decimal.Decimal `json:"quantity" binding:"required" example:"3"`
}

// CreateReturnRequest represents a request to create a return against an invoice
// @Description Request body for creating a draft return invoice
type CreateReturnRequest struct {
	Lines []ReturnLineInput `json:"lines" binding:"required,min=1,dive"`
}

// ListInvoicesRequest represents invoice list query parameters
// @Description Query parameters for listing invoices
type ListInvoicesRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED PAID CANCELLED"`
	Type     string `form:"type" binding:"omitempty,oneof=SALES PURCHASE RETURN_SALES RETURN_PURCHASE"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create godoc
// @Summary      Create a draft invoice
// @Description  Creates a draft invoice with its lines. Totals are computed but nothing is posted.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq, err := toCreateInvoiceRequest(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.CreateDraft(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get godoc
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        type query string false "Filter by invoice type"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.InvoiceResponse}
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filter := billingapp.InvoiceListFilter{
		Status:   req.Status,
		Type:     req.Type,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, req.Page, req.PageSize)
}

// Totals godoc
// @Summary      Preview invoice totals
// @Description  Recomputes line totals for a draft invoice without persisting anything.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billingapp.LineTotalsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/totals [get]
func (h *InvoiceHandler) Totals(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.CalculateLineTotals(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Confirm godoc
// @Summary      Confirm an invoice
// @Description  Moves a draft invoice to confirmed, allocating stock and posting ledger entries atomically.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/confirm [post]
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.Confirm(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Description  Cancels a draft or confirmed invoice. Confirmed invoices have their stock and ledger effects reversed exactly.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body CancelInvoiceRequest true "Cancellation request"
// @Success      200 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Pay godoc
// @Summary      Record payment against an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body MarkPaidRequest true "Payment request"
// @Success      200 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var (
		resp *billingapp.InvoiceResponse
		err  error
	)
	if req.Partial {
		resp, err = h.invoiceService.MarkPartiallyPaid(c.Request.Context(), id, req.Note)
	} else {
		resp, err = h.invoiceService.MarkPaid(c.Request.Context(), id, req.Note)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CreateReturn godoc
// @Summary      Create a return invoice
// @Description  Creates a draft return against a confirmed or paid invoice, copying the original pricing.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Original invoice ID"
// @Param        request body CreateReturnRequest true "Return creation request"
// @Success      201 {object} dto.Response{data=billingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/returns [post]
func (h *InvoiceHandler) CreateReturn(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.CreateReturnRequest{}
	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			h.BadRequest(c, "Invalid item ID format")
			return
		}
		appReq.Lines = append(appReq.Lines, billingapp.ReturnLineRequest{
			ItemID:   itemID,
			Quantity: line.Quantity,
		})
	}

	resp, err := h.invoiceService.CreateReturn(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// PostScheme2Claim godoc
// @Summary      Post deferred scheme claim entries
// @Description  Posts the claim offset entries for a confirmed invoice when scheme2 posting runs in deferred mode.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/scheme2-claim [post]
func (h *InvoiceHandler) PostScheme2Claim(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.PostScheme2Claim(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/billing/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.GET("/:id/totals", h.Totals)
		invoices.POST("/:id/confirm", h.Confirm)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/pay", h.Pay)
		invoices.POST("/:id/returns", h.CreateReturn)
		invoices.POST("/:id/scheme2-claim", h.PostScheme2Claim)
	}
}

// parseID parses the :id path parameter, replying 400 on failure
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

func toCreateInvoiceRequest(req CreateInvoiceRequest) (billingapp.CreateInvoiceRequest, error) {
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		return billingapp.CreateInvoiceRequest{}, err
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return billingapp.CreateInvoiceRequest{}, err
	}

	appReq := billingapp.CreateInvoiceRequest{
		Type:        billing.InvoiceType(req.Type),
		PartyID:     partyID,
		WarehouseID: warehouseID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
	}

	if req.ClaimAccountID != nil && *req.ClaimAccountID != "" {
		claimID, err := uuid.Parse(*req.ClaimAccountID)
		if err != nil {
			return billingapp.CreateInvoiceRequest{}, err
		}
		appReq.ClaimAccountID = &claimID
	}

	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			return billingapp.CreateInvoiceRequest{}, err
		}
		appReq.Lines = append(appReq.Lines, billingapp.InvoiceLineRequest{
			ItemID:            itemID,
			ItemName:          line.ItemName,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			Discount1Percent:  line.Discount1Percent,
			Discount2Percent:  line.Discount2Percent,
			Scheme1Quantity:   line.Scheme1Quantity,
			Scheme2Quantity:   line.Scheme2Quantity,
			TaxCodes:          line.TaxCodes,
			BatchNumber:       line.BatchNumber,
			ManufacturingDate: line.ManufacturingDate,
			ExpiryDate:        line.ExpiryDate,
			UnitCost:          line.UnitCost,
		})
	}

	return appReq, nil
}
