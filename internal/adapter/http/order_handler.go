package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/shop-api/internal/domain"
	"github.com/ecomkit/shop-api/internal/usecase"
)

type OrderHandler struct {
	place *usecase.PlaceOrder
	query *usecase.OrderQuery
}

func NewOrderHandler(place *usecase.PlaceOrder, query *usecase.OrderQuery) *OrderHandler {
	return &OrderHandler{place: place, query: query}
}

type orderItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type placeOrderReq struct {
	UserID string         `json:"user_id" binding:"required"`
	Items  []orderItemReq `json:"items" binding:"required,min=1,dive"`
}

// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	items := make([]usecase.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	o, err := h.place.Execute(ctx, usecase.PlaceOrderInput{
		UserID:         req.UserID,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Items:          items,
	})
	if err != nil {
		var stock *usecase.InsufficientStockError
		if errors.As(err, &stock) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     stock.Error(),
				"available": stock.Available,
				"requested": stock.Requested,
			})
			return
		}
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GET /orders/:user_id?limit=&offset=
func (h *OrderHandler) ListByUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, page, err := h.query.ListByUser(ctx, c.Param("user_id"), pageFromQuery(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listResponse[domain.Order]{Data: items, Page: page})
}

// errStatus maps usecase errors to HTTP status codes.
func errStatus(err error) int {
	var stock *usecase.InsufficientStockError
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidProductID),
		errors.As(err, &stock):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
