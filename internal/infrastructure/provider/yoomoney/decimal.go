package yoomoney

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// decimalFromNumber parses a JSON number exactly, without a float detour.
func decimalFromNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
