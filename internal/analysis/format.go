package analysis

import "fmt"

// DefaultCurrency prefixes formatted amounts.
const DefaultCurrency = "₹"

// Money formats an amount with two decimals behind the currency symbol.
func Money(currency string, v float64) string {
	return fmt.Sprintf("%s%.2f", currency, v)
}
