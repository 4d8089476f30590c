package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/cache"
	"github.com/shashiranjanraj/kalakriti/pkg/event"
	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"gorm.io/gorm"
)

const productCacheTTL = 5 * time.Minute

// ProductView is the catalog read shape: the product plus its effective
// price, with the private file key already stripped by the model's JSON
// tags.
type ProductView struct {
	models.Product
	EffectivePrice int64 `json:"effective_price"`
}

// ProductService manages the catalog. Reads go through Redis when it is
// up; every write invalidates the affected keys.
type ProductService struct {
	products  *repositories.ProductRepository
	discounts *repositories.DiscountRepository
}

func NewProductService(products *repositories.ProductRepository, discounts *repositories.DiscountRepository) *ProductService {
	return &ProductService{products: products, discounts: discounts}
}

func productCacheKey(id string) string { return "kalakriti:product:" + id }

// Get returns one product with its effective price.
func (s *ProductService) Get(ctx context.Context, id string) (ProductView, error) {
	if raw, err := cache.Get(ctx, productCacheKey(id)); err == nil {
		var view ProductView
		if json.Unmarshal([]byte(raw), &view) == nil {
			return view, nil
		}
	}

	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ProductView{}, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return ProductView{}, apperr.Wrap(apperr.Internal, "load product", err)
	}

	view := ProductView{Product: p, EffectivePrice: EffectivePrice(p)}
	if data, err := json.Marshal(view); err == nil {
		if err := cache.Set(ctx, productCacheKey(id), string(data), productCacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("product: cache set failed", "error", err)
		}
	}
	return view, nil
}

// List returns a catalog page. List results are not cached; the per-id
// cache covers the hot path (product detail and checkout pricing).
func (s *ProductService) List(ctx context.Context, category string, page, limit int) ([]ProductView, int64, error) {
	products, total, err := s.products.List(ctx, category, page, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "list products", err)
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, EffectivePrice: EffectivePrice(p)}
	}
	return views, total, nil
}

// ProductInput carries a create or update payload.
type ProductInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"nullable"`
	Price       int64    `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"nullable"`
	FileKey     string   `json:"file_key" validate:"required"`
	PreviewKeys []string `json:"preview_keys" validate:"nullable"`
	DiscountID  *string  `json:"discount_id" validate:"nullable,uuid"`
}

// Create adds a catalog entry after checking the discount reference.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := s.checkDiscountRef(ctx, in.DiscountID); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		FileKey:     in.FileKey,
		PreviewKeys: in.PreviewKeys,
		DiscountID:  in.DiscountID,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, apperr.Wrap(apperr.Internal, "create product", err)
	}
	return p, nil
}

// Update rewrites a product and drops its cache entry.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return models.Product{}, apperr.Wrap(apperr.Internal, "load product", err)
	}
	if err := s.checkDiscountRef(ctx, in.DiscountID); err != nil {
		return models.Product{}, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.FileKey = in.FileKey
	p.PreviewKeys = in.PreviewKeys
	p.DiscountID = in.DiscountID
	p.Discount = nil

	if err := s.products.Update(ctx, &p); err != nil {
		return models.Product{}, apperr.Wrap(apperr.Internal, "update product", err)
	}
	s.invalidate(ctx, id)
	return p, nil
}

// Delete removes a product while order history survives with nullified
// references.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.products.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "product not found")
	} else if err != nil {
		return apperr.Wrap(apperr.Internal, "load product", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete product", err)
	}
	s.invalidate(ctx, id)
	event.Fire(event.ProductDeleted, map[string]string{"product_id": id})
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := cache.Forget(ctx, productCacheKey(id)); err != nil {
		logger.WithCtx(ctx).Warn("product: cache invalidate failed", "error", err)
	}
}

func (s *ProductService) checkDiscountRef(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.discounts.FindByID(ctx, *id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "discount not found")
	} else if err != nil {
		return apperr.Wrap(apperr.Internal, "load discount", err)
	}
	return nil
}
