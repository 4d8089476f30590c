package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"gorm.io/gorm"
)

// EntitlementService decides whether a user may fetch a product's file.
// Every check reads durable storage; entitlement results are never cached
// in-process, so a purchase is visible to the next download request.
type EntitlementService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewEntitlementService(orders *repositories.OrderRepository, products *repositories.ProductRepository) *EntitlementService {
	return &EntitlementService{orders: orders, products: products}
}

// CanDownload reports whether userID may download productID. With bypass
// set (the download-any capability) the answer is always yes. Otherwise
// the user must own at least one paid or fulfilled order containing the
// product; pending and failed orders grant nothing.
func (s *EntitlementService) CanDownload(ctx context.Context, userID, productID string, bypass bool) (bool, error) {
	if bypass {
		return true, nil
	}

	orders, err := s.orders.ForUser(ctx, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "load orders for entitlement check", err)
	}

	for _, order := range orders {
		if !order.Status.Entitles() {
			continue
		}
		for _, item := range order.Items {
			if item.ProductID != nil && *item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ResolveFileKey returns the object key an entitled user should receive
// for productID. Entitlement grants access to the current file published
// under the purchased product id: if the asset file is replaced after
// purchase, buyers get the replacement, matching how storefront updates
// are expected to reach existing customers. A deleted product means the
// asset is discontinued, which is reported as not-found rather than a
// dangling key.
func (s *EntitlementService) ResolveFileKey(ctx context.Context, productID string) (string, error) {
	p, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.New(apperr.NotFound, "asset discontinued")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "resolve product file", err)
	}
	if p.FileKey == "" {
		return "", apperr.New(apperr.NotFound, "asset has no file")
	}
	return p.FileKey, nil
}
