package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ecograph/backend/pkg/schema"
)

// Accepted date input layouts, tried in order. Day-first beats month-first
// when both could apply, matching the Italian-locale data this backend
// ingests.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var truthyWords = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "y": {}, "si": {}, "sì": {},
}

var falsyWords = map[string]struct{}{
	"false": {}, "0": {}, "no": {}, "n": {},
}

// NormalizeDate parses a date in any of the accepted input layouts and
// returns it in canonical YYYY-MM-DD form. A bare four-digit year resolves
// to January 1st of that year.
func NormalizeDate(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if len(s) == 4 {
		if year, err := strconv.Atoi(s); err == nil {
			return fmt.Sprintf("%04d-01-01", year), true
		}
	}
	return "", false
}

// coerce converts a raw submitted value into the normalized representation
// of the attribute's field type: trimmed string, int64, float64, bool, or a
// canonical date string. The boolean reports success; on failure the message
// describes the expected shape.
func coerce(attr schema.Attr, raw any) (any, bool, string) {
	switch attr.Type {
	case schema.TypeString, schema.TypeText, schema.TypeCategory:
		s, ok := raw.(string)
		if !ok {
			return nil, false, "must be a string"
		}
		return strings.TrimSpace(s), true, ""
	case schema.TypeYear, schema.TypeInt:
		n, ok := asInt64(raw)
		if !ok {
			return nil, false, "must be an integer"
		}
		return n, true, ""
	case schema.TypeAmount, schema.TypePercent:
		f, ok := asFloat64(raw)
		if !ok {
			return nil, false, "must be a number"
		}
		return f, true, ""
	case schema.TypeBool:
		b, ok := asBool(raw)
		if !ok {
			return nil, false, "must be a boolean"
		}
		return b, true, ""
	case schema.TypeDate:
		switch v := raw.(type) {
		case string:
			if d, ok := NormalizeDate(v); ok {
				return d, true, ""
			}
		case time.Time:
			return v.Format("2006-01-02"), true, ""
		}
		return nil, false, "must be a date (YYYY-MM-DD)"
	}
	return nil, false, fmt.Sprintf("unsupported field type %q", attr.Type)
}

// checkAttr applies the enum and range rules of an attribute to an already
// coerced value. The boolean reports validity.
func checkAttr(attr schema.Attr, value any, now time.Time) (ViolationKind, string, bool) {
	switch attr.Type {
	case schema.TypeCategory:
		s := value.(string)
		for _, allowed := range attr.Values {
			if s == allowed {
				return "", "", true
			}
		}
		return ViolationEnum, "must be one of: " + strings.Join(attr.Values, ", "), false
	case schema.TypeYear:
		n := value.(int64)
		lo := int64(1)
		if attr.Min != nil {
			lo = int64(*attr.Min)
		}
		hi := int64(now.Year())
		if !attr.MaxIsCurrentYear && attr.Max != nil {
			hi = int64(*attr.Max)
		}
		if n < lo || n > hi {
			return ViolationRange, fmt.Sprintf("must be between %d and %d", lo, hi), false
		}
	case schema.TypeInt:
		n := value.(int64)
		if attr.Min != nil && n < int64(*attr.Min) {
			return ViolationRange, fmt.Sprintf("must be at least %d", int64(*attr.Min)), false
		}
		if attr.Max != nil && n > int64(*attr.Max) {
			return ViolationRange, fmt.Sprintf("must be at most %d", int64(*attr.Max)), false
		}
	case schema.TypeAmount:
		f := value.(float64)
		if attr.ExclusiveMin {
			if f <= 0 {
				return ViolationRange, "must be greater than 0", false
			}
		} else if f < 0 {
			return ViolationRange, "must not be negative", false
		}
	case schema.TypePercent:
		f := value.(float64)
		lo, hi := 0.0, 100.0
		if attr.Min != nil {
			lo = *attr.Min
		}
		if attr.Max != nil {
			hi = *attr.Max
		}
		if f < lo || f > hi {
			return ViolationRange, fmt.Sprintf("must be between %g and %g", lo, hi), false
		}
	}
	return "", "", true
}

func asInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		return asInt64(float64(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func asFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if _, ok := truthyWords[s]; ok {
			return true, true
		}
		if _, ok := falsyWords[s]; ok {
			return false, true
		}
	case float64:
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
	case int:
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
	}
	return false, false
}
