package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"gorm.io/gorm"
)

// DiscountInput carries a create or update payload. Percentage is locked
// to [0, 100] here, at write time, so pricing never sees a bad value.
type DiscountInput struct {
	Name       string `json:"name" validate:"required"`
	Percentage int    `json:"percentage" validate:"gte=0,lte=100"`
	Active     bool   `json:"active" validate:"nullable"`
}

// DiscountService manages percentage discounts.
type DiscountService struct {
	discounts *repositories.DiscountRepository
}

func NewDiscountService(discounts *repositories.DiscountRepository) *DiscountService {
	return &DiscountService{discounts: discounts}
}

func (s *DiscountService) List(ctx context.Context) ([]models.Discount, error) {
	out, err := s.discounts.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list discounts", err)
	}
	return out, nil
}

func (s *DiscountService) Get(ctx context.Context, id string) (models.Discount, error) {
	d, err := s.discounts.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Discount{}, apperr.New(apperr.NotFound, "discount not found")
	}
	if err != nil {
		return models.Discount{}, apperr.Wrap(apperr.Internal, "load discount", err)
	}
	return d, nil
}

func (s *DiscountService) Create(ctx context.Context, in DiscountInput) (models.Discount, error) {
	if err := validatePercentage(in.Percentage); err != nil {
		return models.Discount{}, err
	}
	d := models.Discount{Name: in.Name, Percentage: in.Percentage, Active: in.Active}
	if err := s.discounts.Create(ctx, &d); err != nil {
		return models.Discount{}, apperr.Wrap(apperr.Internal, "create discount", err)
	}
	return d, nil
}

func (s *DiscountService) Update(ctx context.Context, id string, in DiscountInput) (models.Discount, error) {
	if err := validatePercentage(in.Percentage); err != nil {
		return models.Discount{}, err
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.Discount{}, err
	}

	d.Name = in.Name
	d.Percentage = in.Percentage
	d.Active = in.Active
	if err := s.discounts.Update(ctx, &d); err != nil {
		return models.Discount{}, apperr.Wrap(apperr.Internal, "update discount", err)
	}
	return d, nil
}

func (s *DiscountService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.discounts.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete discount", err)
	}
	return nil
}

func validatePercentage(pct int) error {
	if pct < 0 || pct > 100 {
		return apperr.New(apperr.Validation, "percentage must be between 0 and 100")
	}
	return nil
}
