package billing

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeNumbers reads a loosely stored quantity: a number, a numeric
// string, an array of either, or a JSON string holding any of those. Entries
// that cannot be parsed count as 0.
func NormalizeNumbers(raw []byte) []decimal.Decimal {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	value, ok := decodeLoose(string(raw))
	if !ok {
		return []decimal.Decimal{parseNumber(string(raw))}
	}
	return numbersFrom(value, 0)
}

func decodeLoose(raw string) (interface{}, bool) {
	var value interface{}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return nil, false
	}
	return value, true
}

func numbersFrom(value interface{}, depth int) []decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return nil
	case json.Number:
		return []decimal.Decimal{parseNumber(v.String())}
	case float64:
		return []decimal.Decimal{decimal.NewFromFloat(v)}
	case bool:
		return []decimal.Decimal{decimal.Zero}
	case []interface{}:
		result := make([]decimal.Decimal, 0, len(v))
		for _, item := range v {
			result = append(result, numbersFrom(item, depth+1)...)
		}
		return result
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if depth == 0 && (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "\"")) {
			return NormalizeNumbers([]byte(trimmed))
		}
		return []decimal.Decimal{parseNumber(trimmed)}
	default:
		return []decimal.Decimal{decimal.Zero}
	}
}

func parseNumber(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "\"")
	if d, err := decimal.NewFromString(raw); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}

// SumNumbers adds up a normalized list.
func SumNumbers(values []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, values...)
}

// EncodeNumbers is the canonical stored form: always a JSON array.
func EncodeNumbers(values []decimal.Decimal) []byte {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String())
	}
	return []byte("[" + strings.Join(parts, ",") + "]")
}

// NormalizeStrings does for ticket references and image paths what
// NormalizeNumbers does for weights. Blank entries are dropped.
func NormalizeStrings(raw []byte) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	value, ok := decodeLoose(trimmed)
	if !ok {
		return compactStrings([]string{trimmed})
	}
	return stringsFrom(value, 0)
}

func stringsFrom(value interface{}, depth int) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case json.Number:
		return []string{v.String()}
	case string:
		trimmed := strings.TrimSpace(v)
		if depth == 0 && strings.HasPrefix(trimmed, "[") {
			return NormalizeStrings([]byte(trimmed))
		}
		return compactStrings([]string{trimmed})
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, stringsFrom(item, depth+1)...)
		}
		return result
	case bool:
		return []string{strconv.FormatBool(v)}
	default:
		return nil
	}
}

func compactStrings(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// EncodeStrings stores a list as a JSON array.
func EncodeStrings(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return data
}
