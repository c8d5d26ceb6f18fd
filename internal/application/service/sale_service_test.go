package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/cart"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
	"github.com/gymstore/pos-api/pkg/pagination"
)

// fakeProductRepo implements repository.ProductRepository in memory
type fakeProductRepo struct {
	products       map[uuid.UUID]*entity.Product
	failDecrement  []uuid.UUID
	decrementCalls int
	increments     []map[uuid.UUID]int
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	m := make(map[uuid.UUID]*entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepo{products: m}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error { return nil }
func (f *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (f *fakeProductRepo) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) GetImages(ctx context.Context, productID uuid.UUID) ([]entity.ProductImage, error) {
	return nil, nil
}
func (f *fakeProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.decrementCalls++
	if len(f.failDecrement) > 0 {
		return f.failDecrement, nil
	}
	for id, qty := range decrements {
		f.products[id].Quantity -= qty
	}
	return nil, nil
}
func (f *fakeProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	f.increments = append(f.increments, increments)
	for id, qty := range increments {
		if p, ok := f.products[id]; ok {
			p.Quantity += qty
		}
	}
	return nil
}

// fakeSaleRepo implements repository.SaleRepository in memory
type fakeSaleRepo struct {
	sales      map[uuid.UUID]*entity.Sale
	failCreate error
	countCalls int
}

func newFakeSaleRepo(sales ...*entity.Sale) *fakeSaleRepo {
	m := make(map[uuid.UUID]*entity.Sale, len(sales))
	for _, s := range sales {
		m[s.ID] = s
	}
	return &fakeSaleRepo{sales: m}
}

func (f *fakeSaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failCreate != nil {
		return f.failCreate
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	f.sales[sale.ID] = sale
	return nil
}
func (f *fakeSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return f.sales[id], nil
}
func (f *fakeSaleRepo) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	return nil, nil
}
func (f *fakeSaleRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return f.sales[id], nil
}
func (f *fakeSaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	f.sales[sale.ID] = sale
	return nil
}
func (f *fakeSaleRepo) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	return nil, 0, nil
}
func (f *fakeSaleRepo) ListByStatus(ctx context.Context, status enum.SaleStatus) ([]entity.Sale, error) {
	var out []entity.Sale
	for _, s := range f.sales {
		if s.Status == status {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (f *fakeSaleRepo) CountByStatus(ctx context.Context, status enum.SaleStatus) (int64, error) {
	f.countCalls++
	var n int64
	for _, s := range f.sales {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeCustomerRepo implements repository.CustomerRepository in memory
type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
}

func (f *fakeCustomerRepo) Create(ctx context.Context, c *entity.Customer) error { return nil }
func (f *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return f.customers[id], nil
}
func (f *fakeCustomerRepo) Update(ctx context.Context, c *entity.Customer) error { return nil }
func (f *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakeCustomerRepo) ListActive(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	return nil, 0, nil
}

// fakeSource backs the cart service's product lookups
type fakeSource struct {
	repo *fakeProductRepo
}

func (f fakeSource) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	return nil, nil
}
func (f fakeSource) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return f.repo.GetByID(ctx, id)
}

type saleFixture struct {
	svc      *SaleService
	carts    *cart.Service
	products *fakeProductRepo
	sales    *fakeSaleRepo
	cache    *cache.Store
}

func newSaleFixture(products ...*entity.Product) *saleFixture {
	productRepo := newFakeProductRepo(products...)
	saleRepo := newFakeSaleRepo()
	cacheStore := cache.New(5 * time.Minute)
	carts := cart.NewService(fakeSource{repo: productRepo}, 0, time.Second)
	svc := NewSaleService(carts, saleRepo, productRepo, &fakeCustomerRepo{}, cacheStore, time.Minute)
	return &saleFixture{
		svc:      svc,
		carts:    carts,
		products: productRepo,
		sales:    saleRepo,
		cache:    cacheStore,
	}
}

func (fx *saleFixture) cartWith(t *testing.T, quantities map[uuid.UUID]int) uuid.UUID {
	t.Helper()
	draft := fx.carts.Create()
	for id, qty := range quantities {
		if err := fx.carts.AddProduct(context.Background(), draft.ID, id); err != nil {
			t.Fatalf("add product: %v", err)
		}
		if qty > 1 {
			if err := fx.carts.UpdateQuantity(draft.ID, id, qty); err != nil {
				t.Fatalf("set quantity: %v", err)
			}
		}
	}
	return draft.ID
}

func wheyProduct() *entity.Product {
	return &entity.Product{ID: uuid.New(), Name: "Whey", SKU: "WHEY-1", SellingPrice: 9000, Quantity: 10}
}

func TestSubmitEmptyCartFailsLocally(t *testing.T) {
	fx := newSaleFixture()
	cartID := fx.carts.Create().ID

	_, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 1000},
	})
	if !errors.Is(err, entity.ErrEmptyCart) {
		t.Fatalf("Submit = %v, want ErrEmptyCart", err)
	}
	if fx.products.decrementCalls != 0 {
		t.Error("empty cart must be rejected before any backend call")
	}
}

func TestSubmitInsufficientCashFailsLocally(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 2}) // total 18000

	_, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 17999},
	})
	if !errors.Is(err, entity.ErrInsufficientCash) {
		t.Fatalf("Submit = %v, want ErrInsufficientCash", err)
	}
	if fx.products.decrementCalls != 0 {
		t.Error("insufficient cash must be rejected before any backend call")
	}
}

func TestSubmitTransferRequiresVoucher(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 1})

	_, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   TransferPayment{Voucher: "   "},
	})
	if !errors.Is(err, entity.ErrMissingVoucher) {
		t.Fatalf("Submit = %v, want ErrMissingVoucher", err)
	}
	if fx.products.decrementCalls != 0 {
		t.Error("missing voucher must be rejected before any backend call")
	}
}

func TestSubmitCashSale(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 2}) // total 18000
	fx.cache.Set(cache.DomainSales, "pending_count", int64(9))
	fx.cache.Set(cache.DomainProducts, "id:"+whey.ID.String(), whey)

	sale, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 25000},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if sale.Status != enum.SaleStatusFinalized {
		t.Errorf("status = %s, want finalized", sale.Status)
	}
	if sale.Total != 18000 {
		t.Errorf("total = %d, want 18000", sale.Total)
	}
	if sale.CashReceived == nil || *sale.CashReceived != 25000 {
		t.Errorf("cash received = %v, want 25000", sale.CashReceived)
	}
	if sale.ChangeDue == nil || *sale.ChangeDue != 7000 {
		t.Errorf("change due = %v, want 7000", sale.ChangeDue)
	}
	if sale.CustomerName != walkInCustomerName {
		t.Errorf("customer name = %q, want the walk-in placeholder", sale.CustomerName)
	}
	if len(sale.Items) != 1 || sale.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v, want one line of quantity 2", sale.Items)
	}
	if whey.Quantity != 8 {
		t.Errorf("stock = %d, want 8 after decrement", whey.Quantity)
	}

	// cart is destroyed on success
	if _, err := fx.carts.Get(cartID); !errors.Is(err, entity.ErrCartNotFound) {
		t.Error("cart should be destroyed after a successful submission")
	}
	// sales and products partitions are invalidated
	if _, ok := fx.cache.Get(cache.DomainSales, "pending_count"); ok {
		t.Error("sales cache partition should be invalidated")
	}
	if _, ok := fx.cache.Get(cache.DomainProducts, "id:"+whey.ID.String()); ok {
		t.Error("products cache partition should be invalidated")
	}
}

func TestSubmitStockConflictLeavesCartIntact(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 2})
	fx.products.failDecrement = []uuid.UUID{whey.ID}

	_, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 20000},
	})
	if !errors.Is(err, entity.ErrStockExceeded) {
		t.Fatalf("Submit = %v, want ErrStockExceeded", err)
	}

	draft, getErr := fx.carts.Get(cartID)
	if getErr != nil {
		t.Fatal("cart must survive a stock conflict for adjustment and resubmission")
	}
	items := draft.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("cart lines changed on conflict: %+v", items)
	}
	if len(fx.sales.sales) != 0 {
		t.Error("no sale should be created on a stock conflict")
	}
}

func TestSubmitRestoresStockWhenCreateFails(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 3})
	fx.sales.failCreate = errors.New("connection reset")

	_, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 30000},
	})
	if err == nil {
		t.Fatal("Submit should surface the create failure")
	}
	if len(fx.products.increments) != 1 {
		t.Fatalf("increments = %d, want 1 restore call", len(fx.products.increments))
	}
	if whey.Quantity != 10 {
		t.Errorf("stock = %d, want 10 after restore", whey.Quantity)
	}
}

func TestSubmitSurvivesCallerDisconnect(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 1})

	// the caller hangs up before submitting; the money write must still
	// run to completion under its own deadline
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sale, err := fx.svc.Submit(ctx, &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   CashPayment{Received: 9000},
	})
	if err != nil {
		t.Fatalf("Submit with a dead caller context: %v", err)
	}
	if sale.Status != enum.SaleStatusFinalized {
		t.Errorf("status = %s, want finalized", sale.Status)
	}
}

func TestSubmitTransferSaleEntersPendingConfirmation(t *testing.T) {
	whey := wheyProduct()
	fx := newSaleFixture(whey)
	cartID := fx.cartWith(t, map[uuid.UUID]int{whey.ID: 1})

	ref := "BR-12"
	sale, err := fx.svc.Submit(context.Background(), &SubmitSaleInput{
		CartID:    cartID,
		CashierID: uuid.New(),
		Payment:   TransferPayment{Voucher: "TRF-0042", BankReference: &ref},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if sale.Status != enum.SaleStatusPendingConfirmation {
		t.Errorf("status = %s, want pending_confirmation", sale.Status)
	}
	if sale.TransferVoucher == nil || *sale.TransferVoucher != "TRF-0042" {
		t.Errorf("voucher = %v, want TRF-0042", sale.TransferVoucher)
	}
	if sale.CashReceived != nil || sale.ChangeDue != nil {
		t.Error("transfer sale must not carry cash fields")
	}
}

func TestConfirmTransfer(t *testing.T) {
	voucher := "TRF-1"
	pending := &entity.Sale{
		ID:              uuid.New(),
		InvoiceNo:       "INV-aaaa",
		Status:          enum.SaleStatusPendingConfirmation,
		PaymentMethod:   enum.PaymentMethodTransfer,
		TransferVoucher: &voucher,
	}
	fx := newSaleFixture()
	fx.sales.sales[pending.ID] = pending

	reviewer := uuid.New()
	notes := "matched on statement line 14"
	sale, err := fx.svc.ConfirmTransfer(context.Background(), pending.ID, reviewer, &notes)
	if err != nil {
		t.Fatalf("ConfirmTransfer: %v", err)
	}

	if sale.Status != enum.SaleStatusConfirmed {
		t.Errorf("status = %s, want confirmed", sale.Status)
	}
	if sale.ConfirmedBy == nil || *sale.ConfirmedBy != reviewer {
		t.Error("confirmed_by should record the reviewer")
	}
	if sale.ConfirmedAt == nil {
		t.Error("confirmed_at should be set")
	}

	// confirming twice fails loudly
	_, err = fx.svc.ConfirmTransfer(context.Background(), pending.ID, reviewer, nil)
	if !errors.Is(err, entity.ErrAlreadyConfirmed) {
		t.Errorf("second confirm = %v, want ErrAlreadyConfirmed", err)
	}
}

func TestConfirmTransferRejectsNonPendingSales(t *testing.T) {
	cashSale := &entity.Sale{
		ID:        uuid.New(),
		InvoiceNo: "INV-bbbb",
		Status:    enum.SaleStatusFinalized,
	}
	fx := newSaleFixture()
	fx.sales.sales[cashSale.ID] = cashSale

	_, err := fx.svc.ConfirmTransfer(context.Background(), cashSale.ID, uuid.New(), nil)
	if !errors.Is(err, entity.ErrNotAwaitingReview) {
		t.Errorf("confirm on cash sale = %v, want ErrNotAwaitingReview", err)
	}

	_, err = fx.svc.ConfirmTransfer(context.Background(), uuid.New(), uuid.New(), nil)
	if !errors.Is(err, entity.ErrSaleNotFound) {
		t.Errorf("confirm on missing sale = %v, want ErrSaleNotFound", err)
	}
}

func TestCancelPendingTransferRestoresStock(t *testing.T) {
	whey := wheyProduct()
	whey.Quantity = 5
	pending := &entity.Sale{
		ID:        uuid.New(),
		InvoiceNo: "INV-cccc",
		Status:    enum.SaleStatusPendingConfirmation,
		Items: []entity.SaleItem{
			{ProductID: whey.ID, Name: whey.Name, Quantity: 3},
		},
	}
	fx := newSaleFixture(whey)
	fx.sales.sales[pending.ID] = pending

	sale, err := fx.svc.CancelPendingTransfer(context.Background(), pending.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("CancelPendingTransfer: %v", err)
	}
	if sale.Status != enum.SaleStatusCancelled {
		t.Errorf("status = %s, want cancelled", sale.Status)
	}
	if whey.Quantity != 8 {
		t.Errorf("stock = %d, want 8 after restore", whey.Quantity)
	}
}

func TestPendingTransferCountIsCached(t *testing.T) {
	fx := newSaleFixture()
	pending := &entity.Sale{ID: uuid.New(), Status: enum.SaleStatusPendingConfirmation}
	fx.sales.sales[pending.ID] = pending

	for i := 0; i < 3; i++ {
		count, err := fx.svc.PendingTransferCount(context.Background())
		if err != nil {
			t.Fatalf("PendingTransferCount: %v", err)
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	}
	if fx.sales.countCalls != 1 {
		t.Errorf("repo count calls = %d, want 1 (served from cache after the first)", fx.sales.countCalls)
	}
}
