package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

// BatchHandler exposes batch lifecycle operations
type BatchHandler struct {
	ledgerService *service.LedgerService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(ledgerService *service.LedgerService) *BatchHandler {
	return &BatchHandler{ledgerService: ledgerService}
}

// Start closes the customer's active batch, if any, and opens the next one
// @Summary Start batch
// @Tags batches
// @Accept json
// @Produce json
// @Param request body request.StartBatchRequest true "Customer"
// @Success 201 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /batches/start [post]
func (h *BatchHandler) Start(c *gin.Context) {
	var req request.StartBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "customer_id is required")
		return
	}

	batch, err := h.ledgerService.StartNewBatch(c.Request.Context(), req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Batch started successfully", batch)
}

// Get returns a batch with its discounts
func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}

	batch, err := h.ledgerService.GetBatch(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batch retrieved successfully", batch)
}

// ListForCustomer returns a customer's batches, newest first
func (h *BatchHandler) ListForCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	batches, err := h.ledgerService.GetBatchesForCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// AddDiscount adds a discount to an active batch
// @Summary Add discount
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body request.AddDiscountRequest true "Discount"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /batches/{id}/discount [post]
func (h *BatchHandler) AddDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}

	var req request.AddDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	batch, err := h.ledgerService.AddDiscount(c.Request.Context(), &service.AddDiscountInput{
		BatchID:     id,
		Description: req.Description,
		Amount:      req.Amount,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount added successfully", batch)
}

// RemoveDiscount removes a discount from an active batch
func (h *BatchHandler) RemoveDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}
	discountID, ok := parseIDParam(c, "discountId", "discount")
	if !ok {
		return
	}

	batch, err := h.ledgerService.RemoveDiscount(c.Request.Context(), id, discountID, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount removed successfully", batch)
}

// BuyBack credits the customer for chickens bought back and completes the
// batch
// @Summary Buy back and end batch
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body request.BuyBackRequest true "Buy-back"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /batches/{id}/buyback [post]
func (h *BatchHandler) BuyBack(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}

	var req request.BuyBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := buyBackInput(c, &req)
	input.BatchID = id

	t, err := h.ledgerService.BuyBackAndEndBatch(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Buy-back recorded and batch completed", t)
}

func buyBackInput(c *gin.Context, req *request.BuyBackRequest) *service.BuyBackInput {
	return &service.BuyBackInput{
		Quantity:      req.Quantity,
		Weight:        req.Weight,
		PricePerKg:    req.PricePerKg,
		ReferenceName: req.ReferenceName,
		CreatedBy:     GetUserID(c),
	}
}
