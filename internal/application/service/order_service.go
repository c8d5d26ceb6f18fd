package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
	"github.com/gymstore/pos-api/pkg/apperror"
	"github.com/gymstore/pos-api/pkg/pagination"
	"github.com/gymstore/pos-api/pkg/utils"
)

// OrderService manages the web-order lifecycle. Every status change goes
// through the transition table; there is no way to move an order sideways.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       *cache.Store
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cacheStore *cache.Store,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cacheStore,
	}
}

// OrderItemInput is one requested line on an incoming web order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput carries an incoming web order
type CreateOrderInput struct {
	CustomerName    string
	CustomerPhone   *string
	CustomerEmail   *string
	CustomerAddress *string
	DeliveryType    enum.DeliveryType
	PaymentMethod   enum.PaymentMethod
	Notes           *string
	Items           []OrderItemInput
}

// CreateOrder registers an incoming web order in pending status. Stock is
// claimed at creation so the store cannot accept two orders for the last
// unit; a cancellation puts the units back.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	if len(input.Items) == 0 {
		return nil, entity.ErrEmptyCart
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}

	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var totalAmount int64
	orderItems := make([]entity.OrderItem, 0, len(input.Items))
	stockDecrements := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		product, exists := productMap[item.ProductID]
		if !exists {
			return nil, fmt.Errorf("%w: %s", entity.ErrProductNotFound, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Invalid quantity for %s", product.Name))
		}

		itemTotal := product.SellingPrice * int64(item.Quantity)
		totalAmount += itemTotal
		orderItems = append(orderItems, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.SellingPrice,
			Total:     itemTotal,
		})
		stockDecrements[product.ID] = item.Quantity
	}

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockDecrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		names := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			if product, exists := productMap[id]; exists {
				names = append(names, product.Name)
			}
		}
		return nil, fmt.Errorf("%w: %s", entity.ErrStockExceeded, strings.Join(names, ", "))
	}

	order := &entity.Order{
		OrderNumber:     utils.GenerateOrderNumber(),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		CustomerAddress: input.CustomerAddress,
		DeliveryType:    input.DeliveryType,
		PaymentMethod:   input.PaymentMethod,
		Status:          enum.OrderStatusPending,
		TotalAmount:     totalAmount,
		Notes:           input.Notes,
		Items:           orderItems,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		_ = s.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		return nil, err
	}

	s.cache.Invalidate(cache.DomainProducts)
	return s.orderRepo.GetWithItems(ctx, order.ID)
}

// UpdateStatus moves an order to the target status if the transition table
// allows it, recording the transition event in the same write. Transitions
// only move forward; there is no undo, only cancel while still legal.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enum.OrderStatus, notes *string, actorID *uuid.UUID) (*entity.Order, error) {
	if !target.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown order status")
	}
	if target == enum.OrderStatusCancelled {
		reason := ""
		if notes != nil {
			reason = *notes
		}
		return s.Cancel(ctx, orderID, reason, actorID)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(target, order.DeliveryType) {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrIllegalTransition, order.Status, target)
	}

	event := &entity.OrderStatusEvent{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   target,
		Notes:      notes,
		ActorID:    actorID,
	}
	order.Status = target

	if err := s.orderRepo.UpdateStatus(ctx, order, event); err != nil {
		return nil, err
	}

	return s.orderRepo.GetWithItems(ctx, order.ID)
}

// Confirm is the quick action moving a pending order to confirmed
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*entity.Order, error) {
	return s.UpdateStatus(ctx, orderID, enum.OrderStatusConfirmed, nil, actorID)
}

// Deliver is the quick action completing a shipped order
func (s *OrderService) Deliver(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*entity.Order, error) {
	return s.UpdateStatus(ctx, orderID, enum.OrderStatusDelivered, nil, actorID)
}

// Pickup is the quick action completing a ready_pickup order
func (s *OrderService) Pickup(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*entity.Order, error) {
	return s.UpdateStatus(ctx, orderID, enum.OrderStatusPickedUp, nil, actorID)
}

// Cancel cancels an order with a mandatory non-blank reason and returns its
// units to stock. Cancellation obeys the same transition table as any other
// move, so an order already handed to the courier stays alive.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, reason string, actorID *uuid.UUID) (*entity.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, entity.ErrCancelReasonRequired
	}

	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(enum.OrderStatusCancelled, order.DeliveryType) {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrIllegalTransition, order.Status, enum.OrderStatusCancelled)
	}

	stockIncrements := make(map[uuid.UUID]int, len(order.Items))
	for _, item := range order.Items {
		stockIncrements[item.ProductID] = item.Quantity
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, stockIncrements); err != nil {
		return nil, err
	}

	event := &entity.OrderStatusEvent{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   enum.OrderStatusCancelled,
		Notes:      &reason,
		ActorID:    actorID,
	}
	order.Status = enum.OrderStatusCancelled
	order.CancelReason = &reason

	if err := s.orderRepo.UpdateStatus(ctx, order, event); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.DomainProducts)
	return s.orderRepo.GetWithItems(ctx, order.ID)
}

// GetOrder retrieves an order with its items and transition history
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists orders with filtering and page-based pagination
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}
