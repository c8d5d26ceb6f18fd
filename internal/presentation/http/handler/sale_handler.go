package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/service"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/presentation/http/dto/response"
	"github.com/gymstore/pos-api/pkg/pagination"
)

// SaleHandler handles sale submission and the transfer reconciliation gate
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles submitting a cart as a sale. The route sits behind
// IdempotencyRequired, so a double-click on the charge button replays the
// first response instead of selling the stock twice.
func (h *SaleHandler) Create(c *gin.Context) {
	cashierID := GetUserID(c)
	if cashierID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		CartID       uuid.UUID `json:"cart_id" binding:"required"`
		CustomerType string    `json:"customer_type"`
		Customer     struct {
			ID      *uuid.UUID `json:"id"`
			Name    string     `json:"name"`
			Phone   *string    `json:"phone"`
			Address *string    `json:"address"`
		} `json:"customer"`
		Payment struct {
			Method        string   `json:"method" binding:"required"`
			CashReceived  *float64 `json:"cash_received"`
			Voucher       *string  `json:"voucher"`
			BankReference *string  `json:"bank_reference"`
		} `json:"payment" binding:"required"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerType := enum.CustomerTypeCF
	if req.CustomerType == "registered" || req.Customer.ID != nil {
		customerType = enum.CustomerTypeRegistered
	}

	method, ok := enum.ParsePaymentMethod(req.Payment.Method)
	if !ok {
		response.BadRequest(c, "Unknown payment method: "+req.Payment.Method)
		return
	}

	var payment service.Payment
	switch method {
	case enum.PaymentMethodCash:
		if req.Payment.CashReceived == nil {
			response.BadRequest(c, "cash_received is required for cash payments")
			return
		}
		payment = service.CashPayment{Received: toCents(*req.Payment.CashReceived)}
	case enum.PaymentMethodTransfer:
		voucher := ""
		if req.Payment.Voucher != nil {
			voucher = *req.Payment.Voucher
		}
		payment = service.TransferPayment{
			Voucher:       voucher,
			BankReference: req.Payment.BankReference,
		}
	}

	sale, err := h.saleService.Submit(c.Request.Context(), &service.SubmitSaleInput{
		CartID:          req.CartID,
		CashierID:       *cashierID,
		CustomerType:    customerType,
		CustomerID:      req.Customer.ID,
		CustomerName:    req.Customer.Name,
		CustomerPhone:   req.Customer.Phone,
		CustomerAddress: req.Customer.Address,
		Payment:         payment,
		Notes:           req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}

// Get handles retrieving a sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// List handles listing sales with filters
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		SortBy:     c.DefaultQuery("sort_by", "created_at"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := enum.ParseSaleStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Unknown sale status: "+statusStr)
			return
		}
		params.Status = &status
	}
	if methodStr := c.Query("payment_method"); methodStr != "" {
		method, ok := enum.ParsePaymentMethod(methodStr)
		if !ok {
			response.BadRequest(c, "Unknown payment method: "+methodStr)
			return
		}
		params.PaymentMethod = &method
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		customerID, err := uuid.Parse(customerIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &customerID
	}
	if startStr := c.Query("start_date"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &start
	}
	if endStr := c.Query("end_date"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		params.EndDate = &end
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// ListPendingTransfers handles listing the reconciliation queue
func (h *SaleHandler) ListPendingTransfers(c *gin.Context) {
	sales, err := h.saleService.ListPendingTransfers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pending transfers retrieved successfully", sales)
}

// PendingTransferCount handles the queue-size badge
func (h *SaleHandler) PendingTransferCount(c *gin.Context) {
	count, err := h.saleService.PendingTransferCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pending transfer count retrieved successfully", gin.H{"count": count})
}

// ConfirmTransfer handles confirming a pending transfer sale as revenue
func (h *SaleHandler) ConfirmTransfer(c *gin.Context) {
	reviewerID := GetUserID(c)
	if reviewerID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req struct {
		ReviewerNotes *string `json:"reviewer_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.ConfirmTransfer(c.Request.Context(), saleID, *reviewerID, req.ReviewerNotes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer confirmed successfully", sale)
}

// CancelTransfer handles voiding a pending transfer sale whose payment
// never arrived
func (h *SaleHandler) CancelTransfer(c *gin.Context) {
	reviewerID := GetUserID(c)
	if reviewerID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req struct {
		ReviewerNotes *string `json:"reviewer_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.CancelPendingTransfer(c.Request.Context(), saleID, *reviewerID, req.ReviewerNotes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer sale cancelled successfully", sale)
}
