package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL formatea un valor en reales: R$ 1.234,56.
func FormatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
	}
	fixed := v.Abs().StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

// FormatQty cantidad sin decimales innecesarios: 2, 1,5, 0,25.
func FormatQty(q decimal.Decimal) string {
	if q.Equal(q.Truncate(0)) {
		return q.Truncate(0).String()
	}
	s := strings.TrimRight(q.StringFixed(3), "0")
	return strings.Replace(s, ".", ",", 1)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
