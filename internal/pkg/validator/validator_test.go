package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type purchaseInput struct {
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Description string `json:"description" validate:"required,max=200"`
	Tier        string `json:"tier" validate:"card_tier"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	errs := Validate(&purchaseInput{AmountCents: 0, Tier: "PLATINUM"})

	assert.Equal(t, "Value must be greater than 0", errs["amount_cents"])
	assert.Equal(t, "This field is required", errs["description"])
	assert.Contains(t, errs["tier"], "Invalid tier")
}

func TestValidatePasses(t *testing.T) {
	assert.Nil(t, Validate(&purchaseInput{AmountCents: 500, Description: "book", Tier: "ELITE"}))
	assert.Nil(t, Validate(&purchaseInput{AmountCents: 500, Description: "book"}))
}
