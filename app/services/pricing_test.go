package services

import (
	"testing"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/stretchr/testify/assert"
)

func discounted(price int64, pct int, active bool) models.Product {
	return models.Product{
		Price:    price,
		Discount: &models.Discount{Percentage: pct, Active: active},
	}
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		p    models.Product
		want int64
	}{
		{"no discount", models.Product{Price: 4500}, 4500},
		{"inactive discount", discounted(4500, 20, false), 4500},
		{"twenty percent", discounted(4500, 20, true), 3600},
		{"zero percent", discounted(4500, 0, true), 4500},
		{"full discount", discounted(4500, 100, true), 0},
		{"rounds half up", discounted(999, 25, true), 749}, // 749.25 -> 749
		{"rounds half up boundary", discounted(1010, 25, true), 758}, // 757.5 -> 758
		{"tiny price", discounted(1, 50, true), 1}, // 0.5 -> 1
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(tt.p))
		})
	}
}

// The same pair must produce the same integer on every call; there is no
// floating point anywhere in the computation.
func TestEffectivePriceDeterministic(t *testing.T) {
	p := discounted(4500, 20, true)
	first := EffectivePrice(p)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, first, EffectivePrice(p))
	}
	assert.Equal(t, int64(3600), first)
}
