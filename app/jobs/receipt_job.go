package jobs

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/database"
	"github.com/shashiranjanraj/kalakriti/pkg/mail"
)

// ReceiptJob emails an order receipt once the order is paid. Dispatched
// from the payment webhook path, so delivery hiccups retry in the
// background instead of slowing the processor callback down.
type ReceiptJob struct {
	OrderID string `json:"order_id"`
}

func (ReceiptJob) Name() string { return "order.receipt" }

func (j *ReceiptJob) Handle(ctx context.Context) error {
	orders := repositories.NewOrderRepository(database.DB)
	users := repositories.NewUserRepository(database.DB)

	order, err := orders.FindByID(ctx, j.OrderID)
	if err != nil {
		return fmt.Errorf("receipt: load order %s: %w", j.OrderID, err)
	}
	user, err := users.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("receipt: load user %s: %w", order.UserID, err)
	}

	err = mail.To(user.Email).
		Subject(fmt.Sprintf("Your Kalakriti receipt for order %s", order.ID)).
		Body(receiptHTML(order, user.Name)).
		Send()
	if err != nil && strings.Contains(err.Error(), "MAIL_USERNAME not configured") {
		// Local environments run without SMTP; skip rather than retry.
		return nil
	}
	return err
}

// receiptHTML renders the mail body. Names and titles are user-supplied,
// so they are escaped before interpolation.
func receiptHTML(order models.Order, userName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Thanks for your purchase, %s</h1>", html.EscapeString(userName))
	fmt.Fprintf(&b, "<p>Order %s</p><ul>", order.ID)
	for _, item := range order.Items {
		title := "Discontinued item"
		if item.Product != nil {
			title = item.Product.Title
		}
		fmt.Fprintf(&b, "<li>%s × %d — %s</li>",
			html.EscapeString(title), item.Quantity, formatCents(item.UnitPrice*int64(item.Quantity)))
	}
	fmt.Fprintf(&b, "</ul><p>Total: %s</p>", formatCents(order.Total))
	return b.String()
}

func formatCents(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}
