package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SOLDecimals = 9 // SOL has 9 decimals (lamports)
)

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return FormatWithDecimals(lamports, SOLDecimals)
}

// SOLToLamports converts SOL string to lamports without float precision loss
func SOLToLamports(sol string) (uint64, error) {
	return ParseWithDecimals(sol, SOLDecimals)
}

// FormatWithDecimals converts integer to decimal string by inserting decimal point
// Example: FormatWithDecimals(24981836, 9) = "0.024981836"
func FormatWithDecimals(value uint64, decimals int) string {
	s := fmt.Sprintf("%d", value)

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// ParseWithDecimals converts decimal string to integer by removing decimal point
// Example: ParseWithDecimals("0.024981836", 9) = 24981836
func ParseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")

	if len(parts) == 1 {
		// No decimal point - multiply by 10^decimals
		n, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, err
		}
		for i := 0; i < decimals; i++ {
			n *= 10
		}
		return n, nil
	}

	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := parts[1]

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	// Combine and parse
	combined := whole + frac
	return strconv.ParseUint(combined, 10, 64)
}

// ShortAddress shortens an address for display: "EPjF...Dt1v"
func ShortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
