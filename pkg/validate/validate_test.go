package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type discountInput struct {
	Name       string `json:"name"       validate:"required,min=2,max=100"`
	Percentage int    `json:"percentage" validate:"gte=0,lte=100"`
}

func TestStruct_PercentageRange(t *testing.T) {
	errs := Struct(&discountInput{Name: "Summer Sale", Percentage: 20})
	assert.False(t, HasErrors(errs))

	errs = Struct(&discountInput{Name: "Bad", Percentage: 120})
	assert.True(t, HasErrors(errs))
	assert.Contains(t, errs["percentage"], "less than or equal to 100")

	errs = Struct(&discountInput{Name: "Bad", Percentage: -5})
	assert.Contains(t, errs["percentage"], "greater than or equal to 0")
}

func TestStruct_Required(t *testing.T) {
	errs := Struct(&discountInput{Percentage: 10})
	assert.Equal(t, "The name field is required.", errs["name"])
}

func TestStruct_Nullable(t *testing.T) {
	type in struct {
		Bio string `json:"bio" validate:"nullable,min=5"`
	}
	assert.False(t, HasErrors(Struct(&in{})))
	assert.True(t, HasErrors(Struct(&in{Bio: "hi"})))
}

func TestStruct_InKeepsMultiValueParam(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=pending,paid,failed,fulfilled"`
	}
	assert.False(t, HasErrors(Struct(&in{Status: "paid"})))
	assert.True(t, HasErrors(Struct(&in{Status: "shipped"})))
}

func TestStruct_EmailAndUUID(t *testing.T) {
	type in struct {
		Email     string `json:"email"      validate:"required,email"`
		ProductID string `json:"product_id" validate:"required,uuid"`
	}
	errs := Struct(&in{Email: "user@example.com", ProductID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	assert.False(t, HasErrors(errs))

	errs = Struct(&in{Email: "nope", ProductID: "123"})
	assert.Len(t, errs, 2)
}
