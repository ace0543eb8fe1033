package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Intervals the upstream APIs accept for history endpoints.
var validRequestIntervals = map[string]struct{}{
	"5m": {}, "15m": {}, "30m": {},
	"1h": {}, "2h": {}, "4h": {}, "6h": {}, "8h": {}, "12h": {}, "24h": {},
	"1d": {}, "7d": {}, "30d": {},
}

// NormalizeParams coerces raw request parameters into the wire format the
// providers expect: every value a string, intervals lowercased with an hour
// suffix, limits numeric, symbols uppercased. It is pure and total - any
// input produces a usable parameter map, falling back to safe defaults
// rather than failing.
func NormalizeParams(params map[string]any) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		switch key {
		case "interval":
			out[key] = normalizeInterval(value)
		case "limit":
			out[key] = normalizeLimit(value)
		case "symbol":
			out[key] = normalizeSymbol(value)
		default:
			out[key] = stringify(value)
		}
	}
	return out
}

func normalizeInterval(value any) string {
	var interval string
	switch v := value.(type) {
	case int:
		interval = fmt.Sprintf("%dh", v)
	case string:
		interval = strings.ToLower(strings.TrimSpace(v))
		if isDigits(interval) {
			interval += "h"
		}
	default:
		interval = strings.ToLower(stringify(value))
	}
	if _, ok := validRequestIntervals[interval]; ok {
		return interval
	}
	return "1h"
}

func normalizeLimit(value any) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case string:
		if isDigits(strings.TrimSpace(v)) {
			return strings.TrimSpace(v)
		}
		return "1"
	default:
		return "1"
	}
}

func normalizeSymbol(value any) string {
	s, ok := value.(string)
	if !ok {
		return "BTC"
	}
	symbol := strings.ToUpper(strings.TrimSpace(s))
	switch symbol {
	case "BITCOIN", "BITCOINUSDT":
		return "BTC"
	}
	return symbol
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
