package entity

import "errors"

// Typed domain errors. Services wrap these with %w to attach detail;
// pkg/apperror maps them to HTTP status codes at the boundary.
var (
	// Cart building
	ErrCartNotFound    = errors.New("cart not found")
	ErrLineNotFound    = errors.New("line item not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrStockExceeded   = errors.New("quantity exceeds available stock")
	ErrInvalidDiscount = errors.New("discount must be greater than or equal to 0")

	// Sale finalization
	ErrEmptyCart        = errors.New("cart must have at least one item")
	ErrInsufficientCash = errors.New("cash received must cover the total")
	ErrMissingVoucher   = errors.New("transfer voucher reference is required")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrProductNotFound  = errors.New("product not found")

	// Transfer reconciliation
	ErrAlreadyConfirmed  = errors.New("transfer sale is already confirmed")
	ErrNotAwaitingReview = errors.New("sale is not awaiting transfer confirmation")

	// Order lifecycle
	ErrOrderNotFound        = errors.New("order not found")
	ErrIllegalTransition    = errors.New("illegal order status transition")
	ErrCancelReasonRequired = errors.New("a cancellation reason is required")
)
