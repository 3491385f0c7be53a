package domain

import "github.com/shopspring/decimal"

// Epsilon is the smallest balance still considered spendable.
var Epsilon = decimal.New(1, -2)

var (
	DefaultExchangeRate     = decimal.NewFromInt(5)
	DefaultShippingCostUSD  = decimal.RequireFromString("4.5")
	DefaultShippingPriceUSD = decimal.NewFromInt(5)
)

// ClampZero returns zero for negative amounts.
func ClampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// NearlyEqual reports whether a and b differ by less than Epsilon.
func NearlyEqual(a decimal.Decimal, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}

// PricingContext is the rate and per-kilo pricing snapshot a ledger
// operation runs under. Callers obtain it once and pass it down.
type PricingContext struct {
	ExchangeRate            decimal.Decimal `json:"exchange_rate"`
	ShippingCostPerKiloUSD  decimal.Decimal `json:"shipping_cost_per_kilo_usd"`
	ShippingPricePerKiloUSD decimal.Decimal `json:"shipping_price_per_kilo_usd"`
}

func DefaultSettings() Settings {
	return Settings{
		ExchangeRate:     DefaultExchangeRate,
		ShippingCostUSD:  DefaultShippingCostUSD,
		ShippingPriceUSD: DefaultShippingPriceUSD,
	}
}

func (s Settings) PricingContext() PricingContext {
	return PricingContext{
		ExchangeRate:            s.ExchangeRate,
		ShippingCostPerKiloUSD:  s.ShippingCostUSD,
		ShippingPricePerKiloUSD: s.ShippingPriceUSD,
	}
}

func (p PricingContext) GetExchangeRate() decimal.Decimal {
	return p.ExchangeRate
}

func (p PricingContext) GetShippingCostPerUnit() decimal.Decimal {
	return p.ShippingCostPerKiloUSD
}

func (p PricingContext) GetShippingPricePerUnit() decimal.Decimal {
	return p.ShippingPricePerKiloUSD
}

// UsableRate reports whether rate can convert between LYD and USD. A rate at
// or below 1 means settings were never configured.
func UsableRate(rate decimal.Decimal) bool {
	return rate.GreaterThan(decimal.NewFromInt(1))
}

// RemainingValue is the face value minus every usage that was not reversed.
func (c CreditCard) RemainingValue() decimal.Decimal {
	remaining := c.Value
	for _, usage := range c.Usages {
		if usage.Reversed {
			continue
		}
		remaining = remaining.Sub(usage.Amount)
	}
	return ClampZero(remaining)
}

// DeriveStatus keeps expired cards expired and otherwise flips between
// available and used based on the remaining value.
func (c CreditCard) DeriveStatus() CreditCardStatus {
	if c.Status == CreditExpired {
		return CreditExpired
	}
	if c.RemainingValue().LessThan(Epsilon) {
		return CreditUsed
	}
	return CreditAvailable
}

// LastUsedForOrderID returns the order of the most recent live usage.
func (c CreditCard) LastUsedForOrderID() string {
	for i := len(c.Usages) - 1; i >= 0; i-- {
		if !c.Usages[i].Reversed {
			return c.Usages[i].OrderID
		}
	}
	return ""
}

func TreasuryCardTypeFor(method PaymentMethod) (TreasuryCardType, bool) {
	switch method {
	case PaymentCash:
		return TreasuryCashLibyan, true
	case PaymentCard:
		return TreasuryBank, true
	case PaymentCashDollar:
		return TreasuryCashDollar, true
	default:
		return "", false
	}
}
