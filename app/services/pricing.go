// Package services implements the storefront's domain logic on top of the
// repositories.
package services

import "github.com/shashiranjanraj/kalakriti/app/models"

// EffectivePrice returns the price to charge for a product in minor units.
// An inactive or absent discount leaves the base price untouched. The
// computation is pure integer arithmetic with round-half-up, so the same
// inputs always yield the same cents at every call site.
//
// Percentage is validated into [0, 100] when the discount is written, so
// it is not re-checked here.
func EffectivePrice(p models.Product) int64 {
	if p.Discount == nil || !p.Discount.Active {
		return p.Price
	}
	pct := int64(p.Discount.Percentage)
	return (p.Price*(100-pct) + 50) / 100
}
