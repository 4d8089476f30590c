package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/event"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
	"gorm.io/gorm"
)

// LineInput is one cart line submitted at checkout. The client's idea of
// the price is carried in StatedTotal on the order, never per line; unit
// prices are always derived server-side.
type LineInput struct {
	ProductID string
	Quantity  int
}

// OrderEvent is the payload fired on order lifecycle events.
type OrderEvent struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Total   int64              `json:"total"`
	From    models.OrderStatus `json:"from,omitempty"`
	To      models.OrderStatus `json:"to"`
}

// OrderService owns the order ledger: creation with server-side pricing,
// the status state machine, and payment references.
type OrderService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewOrderService(orders *repositories.OrderRepository, products *repositories.ProductRepository) *OrderService {
	return &OrderService{orders: orders, products: products}
}

// Create builds and persists an order for userID. Unit prices come from
// the live catalog through EffectivePrice; the client's statedTotal is
// audit input only and the order is rejected when it disagrees with the
// server-derived total. New orders are always pending; paid is reachable
// only through a verified processor callback.
func (s *OrderService) Create(ctx context.Context, userID string, lines []LineInput, statedTotal int64) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, apperr.New(apperr.Validation, "order has no items")
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return models.Order{}, apperr.New(apperr.Validation, "quantity must be at least 1")
		}
		if l.ProductID == "" {
			return models.Order{}, apperr.New(apperr.Validation, "item is missing a product id")
		}
		ids = append(ids, l.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return models.Order{}, apperr.Wrap(apperr.Internal, "load cart products", err)
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var total int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return models.Order{}, apperr.New(apperr.NotFound, "one or more items in your cart are no longer available")
		}
		pid := p.ID
		unit := EffectivePrice(p)
		total += unit * int64(l.Quantity)
		items = append(items, models.OrderItem{
			ProductID: &pid,
			UnitPrice: unit,
			Quantity:  l.Quantity,
		})
	}

	if statedTotal != total {
		return models.Order{}, apperr.New(apperr.Validation, "order total does not match current pricing")
	}

	order := models.Order{
		UserID: userID,
		Total:  total,
		Status: models.OrderPending,
		Items:  items,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		if isForeignKeyViolation(err) {
			return models.Order{}, apperr.Wrap(apperr.Integrity, "one or more items in your cart are no longer available", err)
		}
		return models.Order{}, apperr.Wrap(apperr.Internal, "create order", err)
	}

	metrics.OrdersCreated.WithLabelValues(string(order.Status)).Inc()
	event.Fire(event.OrderCreated, OrderEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		To:      order.Status,
	})
	return order, nil
}

// Get returns one order, restricted to its owner unless viewAll is set.
func (s *OrderService) Get(ctx context.Context, orderID, userID string, viewAll bool) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return models.Order{}, apperr.Wrap(apperr.Internal, "load order", err)
	}
	if !viewAll && order.UserID != userID {
		return models.Order{}, apperr.New(apperr.Forbidden, "not your order")
	}
	return order, nil
}

// ForUser lists a user's own orders newest-first.
func (s *OrderService) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list orders", err)
	}
	return orders, nil
}

// All lists every order, for holders of the view-all capability.
func (s *OrderService) All(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.orders.All(ctx, page, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "list all orders", err)
	}
	return orders, total, nil
}

// MarkStatus advances an order along its lifecycle. Illegal transitions
// are Conflict errors; the current status is included so callers can
// explain what happened.
func (s *OrderService) MarkStatus(ctx context.Context, orderID string, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, apperr.Newf(apperr.Validation, "unknown order status %q", next)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return models.Order{}, apperr.Wrap(apperr.Internal, "load order", err)
	}

	if !order.Status.CanTransition(next) {
		return models.Order{}, apperr.Newf(apperr.Conflict, "cannot move order from %s to %s", order.Status, next)
	}
	changed, err := s.orders.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return models.Order{}, apperr.Wrap(apperr.Internal, "update order status", err)
	}
	if !changed {
		// Lost a race with a concurrent transition; report against the
		// status that actually landed.
		if current, rerr := s.orders.FindByID(ctx, orderID); rerr == nil {
			order = current
		}
		return models.Order{}, apperr.Newf(apperr.Conflict, "cannot move order from %s to %s", order.Status, next)
	}

	metrics.OrderTransitions.WithLabelValues(string(order.Status), string(next)).Inc()
	event.Fire(event.OrderStatusChanged, OrderEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		From:    order.Status,
		To:      next,
	})

	order.Status = next
	return order, nil
}

// AttachPaymentRef records the processor reference so a later webhook can
// resolve the order it belongs to.
func (s *OrderService) AttachPaymentRef(ctx context.Context, orderID, ref string) error {
	if err := s.orders.SetPaymentRef(ctx, orderID, ref); err != nil {
		return apperr.Wrap(apperr.Internal, "attach payment reference", err)
	}
	return nil
}

// ByPaymentRef resolves an order from its processor reference.
func (s *OrderService) ByPaymentRef(ctx context.Context, ref string) (models.Order, error) {
	order, err := s.orders.FindByPaymentRef(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, apperr.New(apperr.NotFound, "no order for payment reference")
	}
	if err != nil {
		return models.Order{}, apperr.Wrap(apperr.Internal, "load order by payment reference", err)
	}
	return order, nil
}

// isForeignKeyViolation recognises FK failures across the supported
// drivers: gorm's own sentinel, Postgres's 23503 SQLSTATE, and the
// sqlite/mysql message texts.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23503") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint fails")
}
