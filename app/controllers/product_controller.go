package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	views, total, err := c.products.List(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Paginated(w, views, page, limit, total)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	view, err := c.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, view)
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var body services.ProductInput
	if !bind.Request(w, r, &body) {
		return
	}

	p, err := c.products.Create(r.Context(), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, p)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var body services.ProductInput
	if !bind.Request(w, r, &body) {
		return
	}

	p, err := c.products.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "id")})
}
