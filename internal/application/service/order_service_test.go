package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
)

// fakeOrderRepo implements repository.OrderRepository in memory
type fakeOrderRepo struct {
	orders     map[uuid.UUID]*entity.Order
	events     []*entity.OrderStatusEvent
	failCreate error
}

func newFakeOrderRepo(orders ...*entity.Order) *fakeOrderRepo {
	m := make(map[uuid.UUID]*entity.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderRepo{orders: m}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = order
	return nil
}
func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return f.orders[id], nil
}
func (f *fakeOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return f.orders[id], nil
}
func (f *fakeOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	f.orders[order.ID] = order
	return nil
}
func (f *fakeOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	return nil, 0, nil
}
func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, order *entity.Order, event *entity.OrderStatusEvent) error {
	f.orders[order.ID] = order
	f.events = append(f.events, event)
	return nil
}

type orderFixture struct {
	svc      *OrderService
	orders   *fakeOrderRepo
	products *fakeProductRepo
}

func newOrderFixture(products ...*entity.Product) *orderFixture {
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo(products...)
	svc := NewOrderService(orderRepo, productRepo, cache.New(5*time.Minute))
	return &orderFixture{svc: svc, orders: orderRepo, products: productRepo}
}

func (fx *orderFixture) seedOrder(status enum.OrderStatus, delivery enum.DeliveryType, items ...entity.OrderItem) *entity.Order {
	order := &entity.Order{
		ID:           uuid.New(),
		OrderNumber:  "ORD-test",
		CustomerName: "Laura Gómez",
		Status:       status,
		DeliveryType: delivery,
		Items:        items,
	}
	fx.orders.orders[order.ID] = order
	return order
}

func TestCreateOrderClaimsStock(t *testing.T) {
	whey := wheyProduct()
	fx := newOrderFixture(whey)

	order, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerName: "Laura Gómez",
		DeliveryType: enum.DeliveryTypeDelivery,
		Items:        []OrderItemInput{{ProductID: whey.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Status != enum.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.TotalAmount != 36000 {
		t.Errorf("total = %d, want 36000", order.TotalAmount)
	}
	if whey.Quantity != 6 {
		t.Errorf("stock = %d, want 6 after the claim", whey.Quantity)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	whey := wheyProduct()
	fx := newOrderFixture(whey)

	_, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{CustomerName: "Laura"})
	if !errors.Is(err, entity.ErrEmptyCart) {
		t.Errorf("no items = %v, want ErrEmptyCart", err)
	}

	_, err = fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerName: "  ",
		Items:        []OrderItemInput{{ProductID: whey.ID, Quantity: 1}},
	})
	if err == nil {
		t.Error("blank customer name should be rejected")
	}

	_, err = fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerName: "Laura",
		Items:        []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if !errors.Is(err, entity.ErrProductNotFound) {
		t.Errorf("unknown product = %v, want ErrProductNotFound", err)
	}
}

func TestCreateOrderStockConflict(t *testing.T) {
	whey := wheyProduct()
	fx := newOrderFixture(whey)
	fx.products.failDecrement = []uuid.UUID{whey.ID}

	_, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerName: "Laura",
		Items:        []OrderItemInput{{ProductID: whey.ID, Quantity: 2}},
	})
	if !errors.Is(err, entity.ErrStockExceeded) {
		t.Fatalf("CreateOrder = %v, want ErrStockExceeded", err)
	}
	if len(fx.orders.orders) != 0 {
		t.Error("no order should be created on a stock conflict")
	}
}

func TestCreateOrderRestoresStockWhenCreateFails(t *testing.T) {
	whey := wheyProduct()
	fx := newOrderFixture(whey)
	fx.orders.failCreate = errors.New("connection reset")

	_, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerName: "Laura",
		Items:        []OrderItemInput{{ProductID: whey.ID, Quantity: 5}},
	})
	if err == nil {
		t.Fatal("CreateOrder should surface the create failure")
	}
	if whey.Quantity != 10 {
		t.Errorf("stock = %d, want 10 after restore", whey.Quantity)
	}
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	fx := newOrderFixture()
	order := fx.seedOrder(enum.OrderStatusPending, enum.DeliveryTypeDelivery)

	updated, err := fx.svc.UpdateStatus(context.Background(), order.ID, enum.OrderStatusConfirmed, nil, nil)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != enum.OrderStatusConfirmed {
		t.Errorf("status = %s, want confirmed", updated.Status)
	}
	if len(fx.orders.events) != 1 {
		t.Fatalf("events = %d, want 1", len(fx.orders.events))
	}
	ev := fx.orders.events[0]
	if ev.FromStatus != enum.OrderStatusPending || ev.ToStatus != enum.OrderStatusConfirmed {
		t.Errorf("event = %s -> %s, want pending -> confirmed", ev.FromStatus, ev.ToStatus)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	fx := newOrderFixture()
	order := fx.seedOrder(enum.OrderStatusPending, enum.DeliveryTypeDelivery)

	_, err := fx.svc.UpdateStatus(context.Background(), order.ID, enum.OrderStatusShipped, nil, nil)
	if !errors.Is(err, entity.ErrIllegalTransition) {
		t.Fatalf("UpdateStatus = %v, want ErrIllegalTransition", err)
	}
	if fx.orders.orders[order.ID].Status != enum.OrderStatusPending {
		t.Error("order status must not change on a rejected transition")
	}
	if len(fx.orders.events) != 0 {
		t.Error("no event should be recorded for a rejected transition")
	}
}

func TestUpdateStatusPreparingBranchesOnDeliveryType(t *testing.T) {
	fx := newOrderFixture()
	pickup := fx.seedOrder(enum.OrderStatusPreparing, enum.DeliveryTypePickup)

	if _, err := fx.svc.UpdateStatus(context.Background(), pickup.ID, enum.OrderStatusPacked, nil, nil); !errors.Is(err, entity.ErrIllegalTransition) {
		t.Errorf("pickup order packed = %v, want ErrIllegalTransition", err)
	}
	if _, err := fx.svc.UpdateStatus(context.Background(), pickup.ID, enum.OrderStatusReadyPickup, nil, nil); err != nil {
		t.Errorf("pickup order ready_pickup: %v", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	fx := newOrderFixture()
	_, err := fx.svc.UpdateStatus(context.Background(), uuid.New(), enum.OrderStatusConfirmed, nil, nil)
	if !errors.Is(err, entity.ErrOrderNotFound) {
		t.Errorf("UpdateStatus = %v, want ErrOrderNotFound", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	fx := newOrderFixture()
	order := fx.seedOrder(enum.OrderStatusPending, enum.DeliveryTypePickup)

	_, err := fx.svc.Cancel(context.Background(), order.ID, "   ", nil)
	if !errors.Is(err, entity.ErrCancelReasonRequired) {
		t.Fatalf("Cancel = %v, want ErrCancelReasonRequired", err)
	}
}

func TestCancelRestoresStockAndRecordsReason(t *testing.T) {
	whey := wheyProduct()
	whey.Quantity = 3
	fx := newOrderFixture(whey)
	order := fx.seedOrder(enum.OrderStatusConfirmed, enum.DeliveryTypeDelivery,
		entity.OrderItem{ProductID: whey.ID, Name: whey.Name, Quantity: 2})

	cancelled, err := fx.svc.Cancel(context.Background(), order.ID, "customer changed their mind", nil)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if cancelled.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason == nil || *cancelled.CancelReason != "customer changed their mind" {
		t.Errorf("cancel reason = %v, want the given reason", cancelled.CancelReason)
	}
	if whey.Quantity != 5 {
		t.Errorf("stock = %d, want 5 after restore", whey.Quantity)
	}
	if len(fx.orders.events) != 1 || fx.orders.events[0].ToStatus != enum.OrderStatusCancelled {
		t.Error("cancellation should record a transition event")
	}
}

func TestCancelRejectedOnceShipped(t *testing.T) {
	whey := wheyProduct()
	fx := newOrderFixture(whey)
	order := fx.seedOrder(enum.OrderStatusShipped, enum.DeliveryTypeDelivery,
		entity.OrderItem{ProductID: whey.ID, Name: whey.Name, Quantity: 1})

	_, err := fx.svc.Cancel(context.Background(), order.ID, "too late", nil)
	if !errors.Is(err, entity.ErrIllegalTransition) {
		t.Fatalf("Cancel on shipped = %v, want ErrIllegalTransition", err)
	}
	if whey.Quantity != 10 {
		t.Error("stock must not change on a rejected cancellation")
	}
}

func TestQuickActions(t *testing.T) {
	fx := newOrderFixture()
	actor := uuid.New()

	pending := fx.seedOrder(enum.OrderStatusPending, enum.DeliveryTypeDelivery)
	if o, err := fx.svc.Confirm(context.Background(), pending.ID, &actor); err != nil || o.Status != enum.OrderStatusConfirmed {
		t.Errorf("Confirm = %v, %v; want confirmed", o, err)
	}

	shipped := fx.seedOrder(enum.OrderStatusShipped, enum.DeliveryTypeExpress)
	if o, err := fx.svc.Deliver(context.Background(), shipped.ID, &actor); err != nil || o.Status != enum.OrderStatusDelivered {
		t.Errorf("Deliver = %v, %v; want delivered", o, err)
	}

	ready := fx.seedOrder(enum.OrderStatusReadyPickup, enum.DeliveryTypePickup)
	if o, err := fx.svc.Pickup(context.Background(), ready.ID, &actor); err != nil || o.Status != enum.OrderStatusPickedUp {
		t.Errorf("Pickup = %v, %v; want picked_up", o, err)
	}
}
