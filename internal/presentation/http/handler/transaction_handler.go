package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

// TransactionHandler serves the ledger history
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// List returns postings newest first, filtered by type, customer, batch or day
func (h *TransactionHandler) List(c *gin.Context) {
	params := &repository.TransactionFilterParams{
		Pagination: pageParams(c),
		Type:       enum.TransactionType(c.Query("type")),
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &id
	}
	if raw := c.Query("batch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid batch ID")
			return
		}
		params.BatchID = &id
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	params.Date = date

	result, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Transactions retrieved successfully", result)
}

// ListByCustomer returns one customer's postings
func (h *TransactionHandler) ListByCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.transactionService.ListByCustomer(c.Request.Context(), id, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Transactions retrieved successfully", result)
}

// ListByBatch returns a batch's postings together with its running totals
func (h *TransactionHandler) ListByBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.transactionService.ListByBatch(c.Request.Context(), id, pageParams(c), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions retrieved successfully", result)
}

// Get returns a single posting
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}

	t, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", t)
}
