package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type checkoutItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type checkoutRequest struct {
	Items       []checkoutItem `json:"items" validate:"required"`
	StatedTotal int64          `json:"total" validate:"gte=0"`
}

// Create is the checkout endpoint. The submitted total is compared
// against server-side pricing, never trusted.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body checkoutRequest
	if !bind.Request(w, r, &body) {
		return
	}

	lines := make([]services.LineInput, len(body.Items))
	for i, item := range body.Items {
		lines[i] = services.LineInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := c.orders.Create(r.Context(), userID, lines, body.StatedTotal)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, order)
}

// Mine lists the caller's own orders.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	orders, err := c.orders.ForUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

// Get returns one order; owners only, unless the caller holds the
// view-all capability.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	viewAll := rbac.NewSet(claims.Capabilities).Has(rbac.CapViewAllOrders)

	order, err := c.orders.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID, viewAll)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}

// All lists every order. The route requires the view-all capability.
func (c *OrderController) All(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	orders, total, err := c.orders.All(r.Context(), page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Paginated(w, orders, page, limit, total)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,in=pending,paid,failed,fulfilled"`
}

// MarkStatus is the administrative transition endpoint, used for manual
// fulfillment. paid still only arrives through the payment webhook in
// normal operation.
func (c *OrderController) MarkStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if !bind.Request(w, r, &body) {
		return
	}

	order, err := c.orders.MarkStatus(r.Context(), chi.URLParam(r, "id"), models.OrderStatus(body.Status))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}
