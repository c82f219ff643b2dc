// ABOUTME: Cell formatters shared by entity pages and the CLI
// ABOUTME: Timestamps with placeholders, yes/no booleans and lookups into related records

package view

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
	"github.com/tidwall/gjson"
)

// TimestampLayout is how timestamps appear in tables.
const TimestampLayout = "Jan 2, 2006 15:04:05"

// Timestamp formats a datetime field in local time, showing placeholder
// when the field is null, missing or empty.
func Timestamp(placeholder string) func(Value, json.RawMessage) string {
	return TimestampIn(time.Local, placeholder)
}

// TimestampIn is Timestamp for an explicit location. Zone-less values are
// read in loc.
func TimestampIn(loc *time.Location, placeholder string) func(Value, json.RawMessage) string {
	return func(v Value, _ json.RawMessage) string {
		s := v.String()
		if !v.Exists() || v.Type == gjson.Null || s == "" {
			return placeholder
		}
		t, err := api.ParseTimeIn(s, loc)
		if err != nil {
			return s
		}
		return t.In(loc).Format(TimestampLayout)
	}
}

// YesNo renders booleans as Yes/No.
func YesNo() func(Value, json.RawMessage) string {
	return func(v Value, _ json.RawMessage) string {
		switch v.Type {
		case gjson.True:
			return "Yes"
		case gjson.False:
			return "No"
		}
		return Raw(v)
	}
}

// Truncate shortens long text cells to n runes.
func Truncate(n int) func(Value, json.RawMessage) string {
	return func(v Value, _ json.RawMessage) string {
		s := Raw(v)
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	}
}
