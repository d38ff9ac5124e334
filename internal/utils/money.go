package utils

import (
	"fmt"
	"math"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// ToMinorUnits converts a major-unit amount (GHS) to the processor's
// minor-unit integer (pesewas).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts a minor-unit processor amount back to major units.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
