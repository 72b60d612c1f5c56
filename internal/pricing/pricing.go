package pricing

import (
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// minorUnitPlaces is the rounding precision for every supported currency.
const minorUnitPlaces = 2

// LineItem is the pricing input for one product line.
type LineItem struct {
	BasePrice decimal.Decimal
	Quantity  int
}

// Quote is the priced result. UnitPrice is already rounded to minor units,
// so LineTotal is always an exact multiple of it.
type Quote struct {
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Wholesale bool
}

// PriceFor computes the final price of a line item. An active wholesaler
// discount replaces the store discount entirely; the two never stack. Having
// no discount at all is the normal zero-rate path, not a failure.
func PriceFor(item LineItem, status wholesale.Status, storeDiscountRate decimal.Decimal) (Quote, error) {
	if item.BasePrice.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}
	if item.Quantity < 1 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	rate := storeDiscountRate
	if status.Active {
		rate = status.DiscountRate
	}

	unit := item.BasePrice.Mul(decimal.NewFromInt(1).Sub(rate))
	// Round half-up to minor units; decimal.Round is half away from zero,
	// which coincides with half-up for the non-negative prices handled here.
	unit = unit.Round(minorUnitPlaces)
	if unit.IsNegative() {
		unit = decimal.Zero
	}

	return Quote{
		UnitPrice: unit,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
		Wholesale: status.Active,
	}, nil
}
