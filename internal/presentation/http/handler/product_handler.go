package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/service"
	"github.com/gymstore/pos-api/internal/presentation/http/dto/response"
)

const defaultSearchLimit = 20

// ProductHandler handles catalog read requests. The catalog is administered
// elsewhere; this surface only searches and reads.
type ProductHandler struct {
	productService *service.ProductService
	catalogService *service.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		catalogService: catalogService,
	}
}

// Search handles the direct (non-debounced) product search endpoint
func (h *ProductHandler) Search(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	products, err := h.productService.Search(c.Request.Context(), query, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

// Get handles retrieving a single product
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// GetImages handles the lazy-loaded image set for a product detail view
func (h *ProductHandler) GetImages(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	images, err := h.productService.GetImages(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product images retrieved successfully", images)
}

// ListBrands handles the brand filter list
func (h *ProductHandler) ListBrands(c *gin.Context) {
	brands, err := h.catalogService.ListBrands(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Brands retrieved successfully", brands)
}

// ListCategories handles the category filter list
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}
