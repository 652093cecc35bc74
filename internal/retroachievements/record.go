package retroachievements

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one loosely-typed response object as decoded from the service.
// Numbers are kept as json.Number so integer and fractional encodings stay
// distinguishable until a normalizer looks at them.
type Record map[string]any

// keys is an ordered list of alternate spellings for one logical field
type keys []string

// Lookup returns the value stored under key. The boolean is false only when
// the key is missing; a JSON null that is present comes back as (nil, true).
func (r Record) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// first returns the value of the first candidate key that holds a non-null value
func (r Record) first(candidates keys) (any, bool) {
	for _, k := range candidates {
		if v, ok := r.Lookup(k); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) getInt(candidates keys) *int64 {
	for _, k := range candidates {
		v, ok := r.Lookup(k)
		if !ok || v == nil {
			continue
		}
		if n, ok := toInt64(v); ok {
			return &n
		}
	}
	return nil
}

func (r Record) getString(candidates keys) *string {
	for _, k := range candidates {
		v, ok := r.Lookup(k)
		if !ok || v == nil {
			continue
		}
		if s, ok := toString(v); ok {
			return &s
		}
	}
	return nil
}

func (r Record) getTriBool(candidates keys) *bool {
	v, _ := r.first(candidates)
	return CoerceTriBool(v)
}

func (r Record) getPercentage(candidates keys) *float64 {
	v, _ := r.first(candidates)
	return CoercePercentage(v)
}

func (r Record) getImageURL(candidates keys) *string {
	return ResolveImageURL(r.getString(candidates))
}

// getRecord returns the nested object stored under the first matching key.
// PHP encodes an empty associative array as [], so an empty list counts as
// an empty object.
func (r Record) getRecord(candidates keys) (Record, bool) {
	v, ok := r.first(candidates)
	if !ok {
		return nil, false
	}
	return asRecord(v)
}

func asRecord(v any) (Record, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case map[string]any:
		return Record(x), true
	case []any:
		if len(x) == 0 {
			return Record{}, true
		}
	}
	return nil, false
}

// asRecordList accepts either a JSON list of objects or an object whose
// values are objects (ordered by numeric key). Non-object entries are skipped.
func asRecordList(v any) ([]Record, bool) {
	switch x := v.(type) {
	case []any:
		out := make([]Record, 0, len(x))
		for _, item := range x {
			if rec, ok := asRecord(item); ok {
				out = append(out, rec)
			}
		}
		return out, true
	case map[string]any:
		return keyedRecords(Record(x)), true
	case Record:
		return keyedRecords(x), true
	}
	return nil, false
}

// keyedRecords returns the object-valued entries of r ordered by key,
// numerically where the keys are numbers
func keyedRecords(r Record) []Record {
	out := make([]Record, 0, len(r))
	for _, k := range sortedKeys(r) {
		if rec, ok := asRecord(r[k]); ok {
			out = append(out, rec)
		}
	}
	return out
}

func sortedKeys(r Record) []string {
	ks := make([]string, 0, len(r))
	for k := range r {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool {
		a, aerr := strconv.ParseInt(ks[i], 10, 64)
		b, berr := strconv.ParseInt(ks[j], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return ks[i] < ks[j]
	})
	return ks
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		return floatToInt(x.String())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		return floatToInt(s)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func floatToInt(s string) (int64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// decodeJSON parses a response body keeping numbers as json.Number
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}
