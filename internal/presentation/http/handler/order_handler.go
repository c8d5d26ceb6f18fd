package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/service"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/presentation/http/dto/response"
	"github.com/gymstore/pos-api/pkg/pagination"
)

// OrderHandler handles web-order intake and lifecycle transitions
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles registering an incoming web order
func (h *OrderHandler) Create(c *gin.Context) {
	var req struct {
		CustomerName    string  `json:"customer_name" binding:"required"`
		CustomerPhone   *string `json:"customer_phone"`
		CustomerEmail   *string `json:"customer_email"`
		CustomerAddress *string `json:"customer_address"`
		DeliveryType    string  `json:"delivery_type" binding:"required"`
		PaymentMethod   string  `json:"payment_method" binding:"required"`
		Notes           *string `json:"notes"`
		Items           []struct {
			ProductID uuid.UUID `json:"product_id" binding:"required"`
			Quantity  int       `json:"quantity" binding:"required"`
		} `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	deliveryType, ok := enum.ParseDeliveryType(req.DeliveryType)
	if !ok {
		response.BadRequest(c, "Unknown delivery type: "+req.DeliveryType)
		return
	}
	paymentMethod, ok := enum.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		response.BadRequest(c, "Unknown payment method: "+req.PaymentMethod)
		return
	}

	input := &service.CreateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		DeliveryType:    deliveryType,
		PaymentMethod:   paymentMethod,
		Notes:           req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles retrieving an order with items and transition history
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// List handles listing orders with filters
func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		SortBy:     c.DefaultQuery("sort_by", "created_at"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := enum.ParseOrderStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Unknown order status: "+statusStr)
			return
		}
		params.Status = &status
	}
	if deliveryStr := c.Query("delivery_type"); deliveryStr != "" {
		deliveryType, ok := enum.ParseDeliveryType(deliveryStr)
		if !ok {
			response.BadRequest(c, "Unknown delivery type: "+deliveryStr)
			return
		}
		params.DeliveryType = &deliveryType
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

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// UpdateStatus handles moving an order to an explicit target status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	target, ok := enum.ParseOrderStatus(req.Status)
	if !ok {
		response.BadRequest(c, "Unknown order status: "+req.Status)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, target, req.Notes, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated successfully", order)
}

// Confirm handles the quick action moving a pending order to confirmed
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.quickAction(c, h.orderService.Confirm, "Order confirmed successfully")
}

// Deliver handles the quick action completing a shipped order
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.quickAction(c, h.orderService.Deliver, "Order delivered successfully")
}

// Pickup handles the quick action completing a ready_pickup order
func (h *OrderHandler) Pickup(c *gin.Context) {
	h.quickAction(c, h.orderService.Pickup, "Order picked up successfully")
}

// Cancel handles cancelling an order; the reason is mandatory
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req.Reason, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}

type orderAction func(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*entity.Order, error)

func (h *OrderHandler) quickAction(c *gin.Context, action orderAction, message string) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := action(c.Request.Context(), orderID, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, order)
}
