package controllers

import (
	"io"
	"net/http"

	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

// Processor webhook bodies are small; cap reads well below the bind
// package's general limit.
const maxWebhookBody = 64 << 10

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

type intentRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// CreateIntent starts the payment flow for a pending order.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body intentRequest
	if !bind.Request(w, r, &body) {
		return
	}

	viewAll := rbac.NewSet(claims.Capabilities).Has(rbac.CapViewAllOrders)
	result, err := c.payments.CreateIntent(r.Context(), body.OrderID, claims.UserID, viewAll)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, result)
}

// Webhook receives processor callbacks. Authentication is the signature
// header, not a bearer token; the raw body must reach the verifier
// untouched.
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read payload")
		return
	}

	if err := c.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"received": "true"})
}
