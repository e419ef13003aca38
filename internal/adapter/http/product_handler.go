package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/shop-api/internal/domain"
	"github.com/ecomkit/shop-api/internal/usecase"
)

type ProductHandler struct {
	catalog *usecase.Catalog
}

func NewProductHandler(catalog *usecase.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// Price and AvailableQuantity are pointers so that an absent field is
// rejected while an explicit zero is accepted.
type createProductReq struct {
	Name              string   `json:"name" binding:"required"`
	Price             *float64 `json:"price" binding:"required,min=0"`
	Size              string   `json:"size" binding:"required"`
	AvailableQuantity *int64   `json:"available_quantity" binding:"required,min=0"`
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := h.catalog.Create(ctx, domain.Product{
		Name:              req.Name,
		Price:             *req.Price,
		Size:              req.Size,
		AvailableQuantity: *req.AvailableQuantity,
	})
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

type listResponse[T any] struct {
	Data []T              `json:"data"`
	Page usecase.PageInfo `json:"page"`
}

// GET /products?name=&size=&limit=&offset=
func (h *ProductHandler) List(c *gin.Context) {
	filter := usecase.ProductFilter{
		Name: c.Query("name"),
		Size: c.Query("size"),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, page, err := h.catalog.List(ctx, filter, pageFromQuery(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listResponse[domain.Product]{Data: items, Page: page})
}

// pageFromQuery reads limit/offset; out-of-range and unparsable values fall
// back to the defaults when normalized.
func pageFromQuery(c *gin.Context) usecase.Page {
	var p usecase.Page
	if v, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64); err == nil {
		p.Limit = v
	}
	if v, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64); err == nil {
		p.Offset = v
	}
	return p
}
