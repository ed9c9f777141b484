package encoding

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// formatInt renders an integer without a decimal point.
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatFloat renders a double so that it always reads back as a double:
// integral values keep a trailing ".0". NaN and infinities use Go's names.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// finite reports whether f can be written as a JSON number.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// formatNumber renders a number value keeping its subtype.
func formatNumber(v value.Value) string {
	if v.IsInt() {
		return formatInt(v.AsInt())
	}
	return formatFloat(v.AsFloat())
}

// HumanDuration renders d for people, e.g. "3h12m" or "1d4h".
// Whole-second components that are zero are omitted; spans under one
// second fall back to time.Duration's own notation.
func HumanDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	sign := ""
	if d < 0 {
		sign = "-"
		if d == math.MinInt64 {
			d = math.MaxInt64
		} else {
			d = -d
		}
	}

	if d < time.Second {
		return sign + d.String()
	}

	secs := int64(d / time.Second)
	parts := []struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs % 86400 / 3600, "h"},
		{secs % 3600 / 60, "m"},
		{secs % 60, "s"},
	}

	var b strings.Builder
	b.WriteString(sign)
	for _, p := range parts {
		if p.n == 0 {
			continue
		}
		b.WriteString(strconv.FormatInt(p.n, 10))
		b.WriteString(p.unit)
	}
	return b.String()
}

// displayScalar renders a scalar for people (tables and HTML).
// The second result is false for composite values.
func displayScalar(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KindNull:
		return "", true
	case value.KindBool:
		return strconv.FormatBool(v.AsBool()), true
	case value.KindNumber:
		return formatNumber(v), true
	case value.KindString:
		return v.AsString(), true
	case value.KindDuration:
		return HumanDuration(v.AsDuration()), true
	default:
		return "", false
	}
}
