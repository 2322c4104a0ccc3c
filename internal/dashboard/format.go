package dashboard

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatValue renders a metric value the way the dashboard displays it:
// money as US dollars with cents, percentages with one decimal, everything
// else as a grouped integer.
func FormatValue(kind Kind, v float64) string {
	switch kind {
	case KindMoney:
		return FormatMoney(v)
	case KindPercent:
		return humanize.FormatFloat("#,###.#", v) + "%"
	default:
		return humanize.Comma(int64(math.Round(v)))
	}
}

// FormatMoney renders v as "$1,234.56" ("-$12.00" for negatives).
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatCompact renders large values with an SI-style suffix ("12.3K"),
// used where horizontal space is tight.
func FormatCompact(kind Kind, v float64) string {
	prefix := ""
	if kind == KindMoney {
		prefix = "$"
	}
	abs := math.Abs(v)
	if abs < 10_000 {
		return FormatValue(kind, v)
	}
	value, unit := humanize.ComputeSI(v)
	s := humanize.FtoaWithDigits(value, 1) + strings.ToUpper(unit)
	if kind == KindMoney && v < 0 {
		return "-" + prefix + strings.TrimPrefix(s, "-")
	}
	return prefix + s
}
