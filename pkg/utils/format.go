// Package utils provides shared formatting helpers.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatPrice formats a monetary value with thousands separators.
func FormatPrice(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with a sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats a signed P&L amount.
func FormatPnL(pnl float64) string {
	formatted := FormatPrice(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatGreek formats a Greek with four decimals.
func FormatGreek(value float64) string {
	return fmt.Sprintf("%+.4f", value)
}

// FormatDuration formats a duration compactly (1h02m, 350ms).
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatYears formats a year fraction as days when short enough.
func FormatYears(years float64) string {
	days := years * 365
	if days < 90 {
		return fmt.Sprintf("%.1fd", days)
	}
	return fmt.Sprintf("%.2fy", years)
}
