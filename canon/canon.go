// Package canon implements canonical JSON serialization: sorted object
// keys (recursively), no insignificant whitespace, a minimal ASCII escape
// set, and numbers/arrays preserved verbatim. This is the exact byte
// string signed and verified throughout the core (C2).
//
// encoding/json.Marshal on a map already sorts keys, but this package
// hand-rolls the encoder anyway: Go's default escaping and numeric
// formatting are not pinned by any specification and can legally differ
// across encoding/json versions, whereas canonical JSON here must produce
// byte-identical output across every implementation of this scheme.
package canon

import (
	"fmt"
	"sort"
	"strconv"
)

// Encode serializes value as canonical JSON. Supported value shapes:
// map[string]interface{}, []interface{}, string, bool, nil, and numbers
// (int, int64, float64, json.Number-compatible values already converted
// to one of the above).
func Encode(value interface{}) []byte {
	var buf []byte
	buf = appendValue(buf, value)
	return buf
}

func appendValue(buf []byte, value interface{}) []byte {
	switch v := value.(type) {
	case nil:
		return append(buf, "null"...)
	case map[string]interface{}:
		return appendObject(buf, v)
	case []interface{}:
		return appendArray(buf, v)
	case string:
		return appendString(buf, v)
	case bool:
		if v {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case int:
		return append(buf, strconv.Itoa(v)...)
	case int64:
		return append(buf, strconv.FormatInt(v, 10)...)
	case uint64:
		return append(buf, strconv.FormatUint(v, 10)...)
	case float64:
		return append(buf, formatNumber(v)...)
	default:
		panic(fmt.Sprintf("canon: unsupported value type %T", value))
	}
}

func appendObject(buf []byte, m map[string]interface{}) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, k)
		buf = append(buf, ':')
		buf = appendValue(buf, m[k])
	}
	buf = append(buf, '}')
	return buf
}

func appendArray(buf []byte, arr []interface{}) []byte {
	buf = append(buf, '[')
	for i, v := range arr {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendValue(buf, v)
	}
	buf = append(buf, ']')
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = append(buf, string(r)...)
			}
		}
	}
	buf = append(buf, '"')
	return buf
}

// formatNumber renders a float64 the way a JSON number that started life
// as an integer should look: no trailing ".0" for whole numbers, shortest
// round-trippable representation otherwise.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
