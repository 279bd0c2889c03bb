package fpl

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is a loosely typed API object. Values keep whatever shape the API sent,
// so a dump round-trips every attribute, including ones added upstream later.
type Record map[string]any

func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

func (r Record) Value(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

func (r Record) Int64(key string) int64 {
	out, err := cast.ToInt64E(r.Value(key))
	if err != nil {
		return int64(r.Float(key))
	}
	return out
}

func (r Record) Int(key string) int {
	return int(r.Int64(key))
}

// IntPtr returns nil when the key is missing or null.
func (r Record) IntPtr(key string) *int {
	raw := r.Value(key)
	if raw == nil {
		return nil
	}
	out, err := cast.ToIntE(raw)
	if err != nil {
		return nil
	}
	return &out
}

// Float reads numbers and numeric strings such as "12.3".
func (r Record) Float(key string) float64 {
	switch typed := r.Value(key).(type) {
	case nil:
		return 0
	case string:
		out, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return out
	default:
		return cast.ToFloat64(typed)
	}
}

func (r Record) String(key string) string {
	if r.Value(key) == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(r.Value(key)))
}

func (r Record) Bool(key string) bool {
	return cast.ToBool(r.Value(key))
}

// Slice returns the list stored under key as records, skipping non-object items.
func (r Record) Slice(key string) []Record {
	items, ok := r.Value(key).([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			out = append(out, Record(typed))
		case Record:
			out = append(out, typed)
		}
	}
	return out
}

// Key formats an entity id as a JSON object key.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}
