package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

// WholesaleHandler handles wholesale buyers, their product list, sales and
// receipts.
type WholesaleHandler struct {
	wholesaleService *service.WholesaleService
	printerService   *service.PrinterService
}

// NewWholesaleHandler creates a new wholesale handler
func NewWholesaleHandler(wholesaleService *service.WholesaleService, printerService *service.PrinterService) *WholesaleHandler {
	return &WholesaleHandler{wholesaleService: wholesaleService, printerService: printerService}
}

// ListBuyers handles listing wholesale buyers
func (h *WholesaleHandler) ListBuyers(c *gin.Context) {
	result, err := h.wholesaleService.ListBuyers(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Wholesale buyers retrieved successfully", result)
}

// CreateBuyer handles creating a wholesale buyer
func (h *WholesaleHandler) CreateBuyer(c *gin.Context) {
	var req request.CreateWholesaleBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	buyer, err := h.wholesaleService.CreateBuyer(c.Request.Context(), &service.WholesaleBuyerInput{
		Name:         &req.Name,
		BusinessName: req.BusinessName,
		Phone:        &req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Wholesale buyer created successfully", buyer)
}

// GetBuyer handles getting a wholesale buyer
func (h *WholesaleHandler) GetBuyer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale buyer")
	if !ok {
		return
	}

	buyer, err := h.wholesaleService.GetBuyer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale buyer retrieved successfully", buyer)
}

// UpdateBuyer handles updating a wholesale buyer's profile
func (h *WholesaleHandler) UpdateBuyer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale buyer")
	if !ok {
		return
	}

	var req request.UpdateWholesaleBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	buyer, err := h.wholesaleService.UpdateBuyer(c.Request.Context(), id, &service.WholesaleBuyerInput{
		Name:         req.Name,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale buyer updated successfully", buyer)
}

// DeleteBuyer handles deleting a settled wholesale buyer
func (h *WholesaleHandler) DeleteBuyer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale buyer")
	if !ok {
		return
	}

	if err := h.wholesaleService.DeleteBuyer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale buyer deleted successfully", nil)
}

// Deposit credits a wholesale buyer's balance
func (h *WholesaleHandler) Deposit(c *gin.Context) {
	h.postEntry(c, h.wholesaleService.Deposit, "Deposit recorded successfully")
}

// Withdraw debits a wholesale buyer's balance
func (h *WholesaleHandler) Withdraw(c *gin.Context) {
	h.postEntry(c, h.wholesaleService.Withdraw, "Withdrawal recorded successfully")
}

type wholesaleEntryFunc func(ctx context.Context, input *service.WholesaleEntryInput) (*entity.WholesaleTransaction, error)

func (h *WholesaleHandler) postEntry(c *gin.Context, post wholesaleEntryFunc, message string) {
	id, ok := parseIDParam(c, "id", "wholesale buyer")
	if !ok {
		return
	}

	var req request.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	t, err := post(c.Request.Context(), &service.WholesaleEntryInput{
		BuyerID:   id,
		Amount:    req.Amount,
		Notes:     req.Notes,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message, t)
}

// ListTransactions returns a wholesale buyer's postings, newest first
func (h *WholesaleHandler) ListTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale buyer")
	if !ok {
		return
	}

	result, err := h.wholesaleService.ListTransactions(c.Request.Context(), id, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Wholesale transactions retrieved successfully", result)
}

// ListProducts returns the wholesale product list
func (h *WholesaleHandler) ListProducts(c *gin.Context) {
	products, err := h.wholesaleService.ListProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale products retrieved successfully", products)
}

// CreateProduct adds a wholesale product
func (h *WholesaleHandler) CreateProduct(c *gin.Context) {
	var req request.WholesaleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.wholesaleService.CreateProduct(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Wholesale product created successfully", product)
}

// GetProduct returns one wholesale product
func (h *WholesaleHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale product")
	if !ok {
		return
	}

	product, err := h.wholesaleService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale product retrieved successfully", product)
}

// UpdateProduct renames a wholesale product
func (h *WholesaleHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale product")
	if !ok {
		return
	}

	var req request.WholesaleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.wholesaleService.RenameProduct(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale product updated successfully", product)
}

// DeleteProduct removes a wholesale product
func (h *WholesaleHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "wholesale product")
	if !ok {
		return
	}

	if err := h.wholesaleService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale product deleted successfully", nil)
}

// CreateSale records a wholesale sale
func (h *WholesaleHandler) CreateSale(c *gin.Context) {
	var req request.WholesaleSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.WholesaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.WholesaleItemInput{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Weight:     item.Weight,
			PricePerKg: item.PricePerKg,
			Price:      item.Price,
		})
	}

	t, err := h.wholesaleService.CreateSale(c.Request.Context(), &service.WholesaleSaleInput{
		BuyerID:       req.BuyerID,
		Items:         items,
		IsCashPayment: req.IsCashPayment,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Wholesale sale recorded successfully", t)
}

// GetTransaction returns one wholesale posting with its items
func (h *WholesaleHandler) GetTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	t, err := h.wholesaleService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Wholesale transaction retrieved successfully", t)
}

// Receipt returns the receipt for a wholesale posting without printing it.
func (h *WholesaleHandler) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	receipt, err := h.printerService.BuildWholesaleReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt generated successfully", receipt)
}

// PrintReceipt prints the receipt for a wholesale posting.
func (h *WholesaleHandler) PrintReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintWholesaleReceipt(c.Request.Context(), id)
	if err != nil {
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}
