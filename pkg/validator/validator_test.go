package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line struct {
	Product  uuid.UUID       `json:"product" validate:"uuid_required"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Rate     decimal.Decimal `json:"rate" validate:"decimal_gte0"`
}

type sale struct {
	ClientName string `json:"client_name" validate:"required"`
	Details    []line `json:"details" validate:"required,min=1,dive"`
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	errs := ValidateStruct(&sale{Details: []line{{Product: uuid.New(), Quantity: 1}}})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "sale.client_name", errs[0].FailedField)
		assert.Equal(t, "required", errs[0].Tag)
	}
}

func TestValidateStructCustomTags(t *testing.T) {
	errs := ValidateStruct(&sale{ClientName: "x", Details: []line{{Quantity: 1, Rate: decimal.NewFromInt(-1)}}})
	tags := map[string]string{}
	for _, e := range errs {
		tags[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", tags["sale.details[0].product"])
	assert.Equal(t, "decimal_gte0", tags["sale.details[0].rate"])
}

func TestValidateStructOK(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sale{ClientName: "x", Details: []line{{Product: uuid.New(), Quantity: 2, Rate: decimal.NewFromInt(5)}}}))
}
