package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

// SaleHandler handles point-of-sale requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create records a sale and posts it to the customer's ledger
// @Summary Create sale
// @Tags sales
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param request body request.CreateSaleRequest true "Sale"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.SaleItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		CustomerID:    req.CustomerID,
		Items:         items,
		IsCashPayment: req.IsCashPayment,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale completed successfully", result)
}

// List returns sales newest first, optionally for one customer and date range
func (h *SaleHandler) List(c *gin.Context) {
	params := &repository.SaleFilterParams{Pagination: pageParams(c)}

	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &id
	}
	from, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}
	params.From = from
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-1)
		params.To = &end
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Sales retrieved successfully", result)
}

// Get returns a sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}
