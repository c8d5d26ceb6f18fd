package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
)

// ProductSource is what the cart service needs from the catalog side:
// debounced search plus point lookups for adding lines.
type ProductSource interface {
	Catalog
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
}

const searchLimit = 20

// Service is the registry of live cart sessions. Carts exist only here, in
// memory; submitting or abandoning a cart removes it.
type Service struct {
	products ProductSource
	debounce time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

type session struct {
	cart     *Cart
	searcher *Searcher

	mu      sync.Mutex
	latest  SearchResult
	hasRuns bool
}

// NewService creates the cart session registry. timeout bounds each
// debounced catalog query, which fires after the scheduling request has
// already been answered.
func NewService(products ProductSource, debounce, timeout time.Duration) *Service {
	return &Service{
		products: products,
		debounce: debounce,
		timeout:  timeout,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Create opens a new empty cart session and returns the cart
func (s *Service) Create() *Cart {
	c := New()
	sess := &session{cart: c}
	sess.searcher = NewSearcher(s.products, s.debounce, searchLimit, s.timeout, func(res SearchResult) {
		sess.mu.Lock()
		sess.latest = res
		sess.hasRuns = true
		sess.mu.Unlock()
	})

	s.mu.Lock()
	s.sessions[c.ID] = sess
	s.mu.Unlock()
	return c
}

// Get returns the cart for the session, or ErrCartNotFound
func (s *Service) Get(id uuid.UUID) (*Cart, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.cart, nil
}

// Destroy removes a cart session. Called after a successful submission or
// when the operator abandons the draft.
func (s *Service) Destroy(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// AddProduct looks the product up and adds one unit to the cart. The lookup
// goes through the cached catalog, so the stock snapshot on the new line is
// at most one cache TTL old.
func (s *Service) AddProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	sess, err := s.session(cartID)
	if err != nil {
		return err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return entity.ErrProductNotFound
	}
	return sess.cart.AddItem(product)
}

// UpdateQuantity sets a line's quantity on the cart
func (s *Service) UpdateQuantity(cartID, productID uuid.UUID, qty int) error {
	sess, err := s.session(cartID)
	if err != nil {
		return err
	}
	return sess.cart.UpdateQuantity(productID, qty)
}

// RemoveItem removes a line from the cart
func (s *Service) RemoveItem(cartID, productID uuid.UUID) error {
	sess, err := s.session(cartID)
	if err != nil {
		return err
	}
	return sess.cart.RemoveItem(productID)
}

// SetDiscount sets the cart-level discount in cents
func (s *Service) SetDiscount(cartID uuid.UUID, discount int64) error {
	sess, err := s.session(cartID)
	if err != nil {
		return err
	}
	return sess.cart.SetDiscount(discount)
}

// Search feeds a keystroke-level query into the session's debounced
// searcher. Results land asynchronously and are read back with
// SearchResults.
func (s *Service) Search(ctx context.Context, cartID uuid.UUID, query string) error {
	sess, err := s.session(cartID)
	if err != nil {
		return err
	}
	sess.searcher.Search(ctx, query)
	return nil
}

// SearchResults returns the latest delivered result set for the session.
// The second return is false when no search has completed yet.
func (s *Service) SearchResults(cartID uuid.UUID) (SearchResult, bool, error) {
	sess, err := s.session(cartID)
	if err != nil {
		return SearchResult{}, false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.latest, sess.hasRuns, nil
}

func (s *Service) session(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, entity.ErrCartNotFound
	}
	return sess, nil
}
