package retroachievements

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// BaseOrigin is prefixed to every relative image path the service returns
const BaseOrigin = "https://retroachievements.org"

// ResolveImageURL turns a site-relative image path into an absolute URL.
// Absent and empty paths stay absent; paths that are already absolute are kept.
func ResolveImageURL(path *string) *string {
	if path == nil {
		return nil
	}
	p := strings.TrimSpace(*path)
	if p == "" {
		return nil
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return &p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := BaseOrigin + p
	return &u
}

// CoerceTriBool maps the service's mixed boolean encodings to true, false or
// absent. Strings are read as integers first and any non-zero value is true;
// an empty string is false.
func CoerceTriBool(v any) *bool {
	var b bool
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		b = x
	case json.Number:
		n, ok := toFloat(x.String())
		if !ok {
			return nil
		}
		b = n != 0
	case float64:
		b = x != 0
	case int:
		b = x != 0
	case int64:
		b = x != 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			b = false
			break
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			b = n != 0
			break
		}
		if n, ok := toFloat(s); ok {
			b = n != 0
			break
		}
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}

// CoercePercentage normalizes a completion value to a float in [0, 100].
//
// Integers are already percentages. Strings carrying a "%" are percentages
// once the sign is stripped. Anything else is a 0-1 fraction that is scaled
// by 100 and rounded to two decimals, which also removes float noise such
// as 0.5676*100 = 56.76000000000001.
func CoercePercentage(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return clampPercentage(float64(x))
	case int64:
		return clampPercentage(float64(x))
	case json.Number:
		s := x.String()
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return clampPercentage(float64(n))
		}
		f, ok := toFloat(s)
		if !ok {
			return nil
		}
		return fractionToPercentage(f)
	case float64:
		return fractionToPercentage(x)
	case string:
		s := strings.TrimSpace(x)
		if strings.Contains(s, "%") {
			f, ok := toFloat(strings.TrimSpace(strings.ReplaceAll(s, "%", "")))
			if !ok {
				return nil
			}
			return clampPercentage(f)
		}
		f, ok := toFloat(s)
		if !ok {
			return nil
		}
		return fractionToPercentage(f)
	}
	return nil
}

func fractionToPercentage(f float64) *float64 {
	pct := math.Round(f*100*100) / 100
	return clampPercentage(pct)
}

func clampPercentage(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Max(0, math.Min(100, f))
	return &f
}

func toFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
