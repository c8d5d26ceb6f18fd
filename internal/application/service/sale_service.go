package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/cart"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
	"github.com/gymstore/pos-api/pkg/apperror"
	"github.com/gymstore/pos-api/pkg/pagination"
	"github.com/gymstore/pos-api/pkg/utils"
)

// walkInCustomerName is the default display name for anonymous counter sales
const walkInCustomerName = "Consumidor Final"

// Payment is the settlement side of a sale submission. Exactly one concrete
// type exists per payment method; the switch in Submit is exhaustive.
type Payment interface {
	method() enum.PaymentMethod
}

// CashPayment settles immediately. Received is the amount handed over, in
// cents; change is computed server-side.
type CashPayment struct {
	Received int64
}

func (CashPayment) method() enum.PaymentMethod { return enum.PaymentMethodCash }

// TransferPayment settles later: the sale enters pending_confirmation until
// an admin matches the voucher against the bank statement.
type TransferPayment struct {
	Voucher       string
	BankReference *string
}

func (TransferPayment) method() enum.PaymentMethod { return enum.PaymentMethodTransfer }

// SubmitSaleInput carries everything needed to finalize a cart into a sale
type SubmitSaleInput struct {
	CartID          uuid.UUID
	CashierID       uuid.UUID
	CustomerType    enum.CustomerType
	CustomerID      *uuid.UUID
	CustomerName    string
	CustomerPhone   *string
	CustomerAddress *string
	Payment         Payment
	Notes           *string
}

// SaleService finalizes carts into persisted sales and runs the transfer
// reconciliation gate
type SaleService struct {
	carts         *cart.Service
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	cache         *cache.Store
	submitTimeout time.Duration
}

// NewSaleService creates a new sale service. submitTimeout is the extended
// deadline applied to submission, which does more work than a plain read.
func NewSaleService(
	carts *cart.Service,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	cacheStore *cache.Store,
	submitTimeout time.Duration,
) *SaleService {
	return &SaleService{
		carts:         carts,
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		cache:         cacheStore,
		submitTimeout: submitTimeout,
	}
}

// Submit turns a cart into a persisted sale. All local preconditions are
// checked before the first repository call, so a rejected submission costs
// no round trip. On a stock conflict the cart is left intact for the
// operator to adjust and resubmit.
func (s *SaleService) Submit(ctx context.Context, input *SubmitSaleInput) (*entity.Sale, error) {
	draft, err := s.carts.Get(input.CartID)
	if err != nil {
		return nil, err
	}

	// One consistent view of lines and totals; a concurrent cart mutation
	// cannot split the figures the sale is persisted with
	lines, subTotal, discount, total := draft.Snapshot()
	if len(lines) == 0 {
		return nil, entity.ErrEmptyCart
	}
	for _, line := range lines {
		if line.Unavailable {
			return nil, fmt.Errorf("%w: %s no longer exists, remove it from the cart", entity.ErrProductNotFound, line.Name)
		}
	}

	// Settle the payment side before touching the database
	var (
		status       enum.SaleStatus
		cashReceived *int64
		changeDue    *int64
		voucher      *string
		bankRef      *string
	)
	switch p := input.Payment.(type) {
	case CashPayment:
		if p.Received < total {
			return nil, fmt.Errorf("%w: received %d, total %d", entity.ErrInsufficientCash, p.Received, total)
		}
		change := p.Received - total
		cashReceived = &p.Received
		changeDue = &change
		status = enum.SaleStatusFinalized
	case TransferPayment:
		ref := strings.TrimSpace(p.Voucher)
		if ref == "" {
			return nil, entity.ErrMissingVoucher
		}
		voucher = &ref
		bankRef = p.BankReference
		status = enum.SaleStatusPendingConfirmation
	default:
		return nil, apperror.NewBadRequestError("Unsupported payment method")
	}

	customerName := strings.TrimSpace(input.CustomerName)
	if input.CustomerType == enum.CustomerTypeRegistered {
		if input.CustomerID == nil {
			return nil, apperror.NewBadRequestError("A registered sale requires a customer")
		}
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		if customerName == "" {
			customerName = customer.Name
		}
	} else if customerName == "" {
		customerName = walkInCustomerName
	}

	// Submission runs under its own extended deadline, detached from the
	// request context: once the stock decrement lands, a caller hanging up
	// must not abort the money write halfway. The idempotency key makes the
	// user-side retry safe either way.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
	defer cancel()

	items := make([]entity.SaleItem, 0, len(lines))
	stockDecrements := make(map[uuid.UUID]int, len(lines))
	lineNames := make(map[uuid.UUID]string, len(lines))
	for _, line := range lines {
		items = append(items, entity.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     line.LineTotal(),
		})
		stockDecrements[line.ProductID] = line.Quantity
		lineNames[line.ProductID] = line.Name
	}

	// The decrement is conditional on current stock; a concurrent sale that
	// claimed the same units surfaces here, not as oversold inventory
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockDecrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		names := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			names = append(names, lineNames[id])
		}
		return nil, fmt.Errorf("%w: %s", entity.ErrStockExceeded, strings.Join(names, ", "))
	}

	sale := &entity.Sale{
		InvoiceNo:       utils.GenerateInvoiceNo(),
		CashierID:       input.CashierID,
		CustomerType:    input.CustomerType,
		CustomerID:      input.CustomerID,
		CustomerName:    customerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		PaymentMethod:   input.Payment.method(),
		Status:          status,
		SubTotal:        subTotal,
		Discount:        discount,
		Total:           total,
		CashReceived:    cashReceived,
		ChangeDue:       changeDue,
		TransferVoucher: voucher,
		BankReference:   bankRef,
		Notes:           input.Notes,
		Items:           items,
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		// stock was already taken; put it back
		_ = s.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		return nil, err
	}

	s.carts.Destroy(input.CartID)
	s.cache.Invalidate(cache.DomainSales)
	s.cache.Invalidate(cache.DomainProducts)

	return s.saleRepo.GetWithItems(ctx, sale.ID)
}

// ConfirmTransfer marks a pending transfer sale as confirmed revenue. Only
// a sale sitting in pending_confirmation can pass the gate; confirming
// twice fails rather than silently succeeding, so a reviewer always learns
// someone got there first.
func (s *SaleService) ConfirmTransfer(ctx context.Context, saleID, reviewerID uuid.UUID, reviewerNotes *string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, entity.ErrSaleNotFound
	}

	switch sale.Status {
	case enum.SaleStatusPendingConfirmation:
		// proceed
	case enum.SaleStatusConfirmed:
		return nil, fmt.Errorf("%w: %s", entity.ErrAlreadyConfirmed, sale.InvoiceNo)
	default:
		return nil, fmt.Errorf("%w: %s is %s", entity.ErrNotAwaitingReview, sale.InvoiceNo, sale.Status)
	}

	now := time.Now()
	sale.Status = enum.SaleStatusConfirmed
	sale.ConfirmedBy = &reviewerID
	sale.ConfirmedAt = &now
	sale.ReviewerNotes = reviewerNotes

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.DomainSales)
	return s.saleRepo.GetWithItems(ctx, sale.ID)
}

// CancelPendingTransfer voids a transfer sale whose payment never arrived
// and returns its units to stock. Only pending_confirmation sales can be
// cancelled; settled revenue is immutable.
func (s *SaleService) CancelPendingTransfer(ctx context.Context, saleID, reviewerID uuid.UUID, reviewerNotes *string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, entity.ErrSaleNotFound
	}
	if sale.Status != enum.SaleStatusPendingConfirmation {
		return nil, fmt.Errorf("%w: %s is %s", entity.ErrNotAwaitingReview, sale.InvoiceNo, sale.Status)
	}

	stockIncrements := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		stockIncrements[item.ProductID] = item.Quantity
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, stockIncrements); err != nil {
		return nil, err
	}

	now := time.Now()
	sale.Status = enum.SaleStatusCancelled
	sale.ConfirmedBy = &reviewerID
	sale.ConfirmedAt = &now
	sale.ReviewerNotes = reviewerNotes

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.DomainSales)
	s.cache.Invalidate(cache.DomainProducts)
	return s.saleRepo.GetWithItems(ctx, sale.ID)
}

// ListPendingTransfers returns the reconciliation work queue, newest first
func (s *SaleService) ListPendingTransfers(ctx context.Context) ([]entity.Sale, error) {
	if cached, ok := s.cache.Get(cache.DomainSales, "pending_transfers"); ok {
		return cached.([]entity.Sale), nil
	}

	sales, err := s.saleRepo.ListByStatus(ctx, enum.SaleStatusPendingConfirmation)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.DomainSales, "pending_transfers", sales)
	return sales, nil
}

// PendingTransferCount returns the size of the reconciliation queue, for
// the badge on the admin screen
func (s *SaleService) PendingTransferCount(ctx context.Context) (int64, error) {
	if cached, ok := s.cache.Get(cache.DomainSales, "pending_count"); ok {
		return cached.(int64), nil
	}

	count, err := s.saleRepo.CountByStatus(ctx, enum.SaleStatusPendingConfirmation)
	if err != nil {
		return 0, err
	}

	s.cache.Set(cache.DomainSales, "pending_count", count)
	return count, nil
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, entity.ErrSaleNotFound
	}
	return sale, nil
}

// ListSales lists sales with filtering and page-based pagination
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}
