package domain

import "github.com/shopspring/decimal"

// SettlementScale is the number of fractional digits every stored monetary
// value is rounded to. Intermediate math runs at full decimal precision;
// rounding happens exactly once, half-up, when an amount is settled.
const SettlementScale = 8

func RoundSettlement(d decimal.Decimal) decimal.Decimal {
	return d.Round(SettlementScale)
}

// ApplyPercent returns rate% of amount at settlement scale.
func ApplyPercent(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundSettlement(amount.Mul(rate).Div(decimal.NewFromInt(100)))
}
