package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kalakriti/app/models"
)

func TestReceiptHTMLEscapesUserContent(t *testing.T) {
	order := models.Order{
		Total: 4500,
		Items: []models.OrderItem{
			{
				Product:   &models.Product{Title: `<img src=x onerror=alert(1)> Temple "Kit"`},
				UnitPrice: 4500,
				Quantity:  1,
			},
			{UnitPrice: 1200, Quantity: 2}, // product deleted after purchase
		},
	}

	body := receiptHTML(order, `Priya <script>alert(1)</script>`)

	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "Priya &lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "&lt;img src=x onerror=alert(1)&gt; Temple &#34;Kit&#34;")
	assert.Contains(t, body, "Discontinued item")
	assert.Contains(t, body, "$45.00")
}
