package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests, including the
// deposits, withdrawals and buy-backs posted against a customer.
type CustomerHandler struct {
	customerService *service.CustomerService
	ledgerService   *service.LedgerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService, ledgerService *service.LedgerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, ledgerService: ledgerService}
}

// List handles listing customers
func (h *CustomerHandler) List(c *gin.Context) {
	result, err := h.customerService.ListCustomers(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Customers retrieved successfully", result)
}

// Create handles creating a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// Get handles getting a customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req request.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), &service.UpdateCustomerInput{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer deleted successfully", nil)
}

// Deposit credits the customer's balance
func (h *CustomerHandler) Deposit(c *gin.Context) {
	h.postEntry(c, h.ledgerService.Deposit, "Deposit recorded successfully")
}

// Withdraw debits the customer's balance
func (h *CustomerHandler) Withdraw(c *gin.Context) {
	h.postEntry(c, h.ledgerService.Withdraw, "Withdrawal recorded successfully")
}

type entryFunc func(ctx context.Context, input *service.LedgerEntryInput) (*entity.Transaction, error)

func (h *CustomerHandler) postEntry(c *gin.Context, post entryFunc, message string) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req request.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	t, err := post(c.Request.Context(), &service.LedgerEntryInput{
		CustomerID: id,
		Amount:     req.Amount,
		Notes:      req.Notes,
		CreatedBy:  GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message, t)
}

// BuyBack buys back chickens against the customer's active batch
func (h *CustomerHandler) BuyBack(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req request.BuyBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	t, err := h.ledgerService.BuyBackForCustomer(c.Request.Context(), id, buyBackInput(c, &req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Buy-back recorded and batch completed", t)
}
