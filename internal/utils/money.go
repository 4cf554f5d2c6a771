package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPKR renders integer rupees with thousand separators.
func FormatPKR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sPKR %s", sign, formatThousand(amount))
}

// ParsePKR parses "PKR 180,000" or "180000" into an integer amount of rupees.
func ParsePKR(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "pkr")
	s = strings.TrimPrefix(s, "rs.")
	s = strings.TrimPrefix(s, "rs")
	replacer := strings.NewReplacer(",", "", " ", "", "_", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid pkr amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

// Percent renders basis points as a percentage with two decimals.
func Percent(bps int) string {
	return fmt.Sprintf("%.2f%%", float64(bps)/100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
