package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

type DiscountController struct {
	discounts *services.DiscountService
}

func NewDiscountController(discounts *services.DiscountService) *DiscountController {
	return &DiscountController{discounts: discounts}
}

func (c *DiscountController) List(w http.ResponseWriter, r *http.Request) {
	out, err := c.discounts.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, out)
}

func (c *DiscountController) Get(w http.ResponseWriter, r *http.Request) {
	d, err := c.discounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, d)
}

func (c *DiscountController) Create(w http.ResponseWriter, r *http.Request) {
	var body services.DiscountInput
	if !bind.Request(w, r, &body) {
		return
	}

	d, err := c.discounts.Create(r.Context(), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, d)
}

func (c *DiscountController) Update(w http.ResponseWriter, r *http.Request) {
	var body services.DiscountInput
	if !bind.Request(w, r, &body) {
		return
	}

	d, err := c.discounts.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, d)
}

func (c *DiscountController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.discounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "id")})
}
