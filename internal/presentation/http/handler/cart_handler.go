package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/cart"
	"github.com/gymstore/pos-api/internal/presentation/http/dto/response"
)

// CartHandler manages draft cart sessions over HTTP. Carts live in server
// memory only; nothing here touches the database until the sale endpoint
// submits the draft.
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// cartView is the wire shape of a draft cart, with money as decimals
type cartView struct {
	ID       uuid.UUID      `json:"id"`
	Items    []cartLineView `json:"items"`
	SubTotal float64        `json:"sub_total"`
	Discount float64        `json:"discount"`
	Total    float64        `json:"total"`
}

type cartLineView struct {
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   float64   `json:"line_total"`
	Unavailable bool      `json:"unavailable,omitempty"`
}

func newCartView(c *cart.Cart) cartView {
	items, subTotal, discount, total := c.Snapshot()

	view := cartView{
		ID:       c.ID,
		Items:    make([]cartLineView, 0, len(items)),
		SubTotal: float64(subTotal) / 100,
		Discount: float64(discount) / 100,
		Total:    float64(total) / 100,
	}
	for _, li := range items {
		view.Items = append(view.Items, cartLineView{
			ProductID:   li.ProductID,
			Name:        li.Name,
			SKU:         li.SKU,
			UnitPrice:   float64(li.UnitPrice) / 100,
			Quantity:    li.Quantity,
			LineTotal:   float64(li.LineTotal()) / 100,
			Unavailable: li.Unavailable,
		})
	}
	return view
}

// Create handles opening a new cart session
func (h *CartHandler) Create(c *gin.Context) {
	draft := h.carts.Create()
	response.Created(c, "Cart created successfully", newCartView(draft))
}

// Get handles retrieving a cart with its settled totals
func (h *CartHandler) Get(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	draft, err := h.carts.Get(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart retrieved successfully", newCartView(draft))
}

// Destroy handles abandoning a cart session
func (h *CartHandler) Destroy(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	h.carts.Destroy(cartID)
	response.NoContent(c)
}

// AddItem handles adding one unit of a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.carts.AddProduct(c.Request.Context(), cartID, req.ProductID); err != nil {
		response.Error(c, err)
		return
	}

	draft, err := h.carts.Get(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added successfully", newCartView(draft))
}

// UpdateItem handles setting a line's quantity; zero or less removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.carts.UpdateQuantity(cartID, productID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}

	draft, err := h.carts.Get(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quantity updated successfully", newCartView(draft))
}

// RemoveItem handles deleting a line from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.carts.RemoveItem(cartID, productID); err != nil {
		response.Error(c, err)
		return
	}

	draft, err := h.carts.Get(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed successfully", newCartView(draft))
}

// SetDiscount handles applying a cart-level discount
func (h *CartHandler) SetDiscount(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	var req struct {
		Discount float64 `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.carts.SetDiscount(cartID, toCents(req.Discount)); err != nil {
		response.Error(c, err)
		return
	}

	draft, err := h.carts.Get(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount applied successfully", newCartView(draft))
}

// Search handles feeding a query into the session's debounced searcher.
// The request returns immediately; results are fetched with SearchResults.
func (h *CartHandler) Search(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// The catalog query fires after this handler has returned and the
	// server has cancelled the request context; detach it so the debounced
	// lookup is bounded by the searcher's own timeout instead.
	if err := h.carts.Search(context.WithoutCancel(c.Request.Context()), cartID, req.Query); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, 202, "Search scheduled", gin.H{"query": req.Query})
}

// SearchResults handles reading the latest delivered search results
func (h *CartHandler) SearchResults(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return
	}

	result, ready, err := h.carts.SearchResults(cartID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ready {
		response.OK(c, "No search completed yet", gin.H{"ready": false})
		return
	}
	if result.Err != nil {
		response.Error(c, result.Err)
		return
	}

	response.OK(c, "Search results retrieved successfully", gin.H{
		"ready":    true,
		"query":    result.Query,
		"products": result.Products,
	})
}
