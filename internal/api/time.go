// ABOUTME: Timestamp decoding tolerant of the API's datetime formats
// ABOUTME: Accepts RFC 3339 as well as naive ISO datetimes without a zone

package api

import (
	"bytes"
	"fmt"
	"time"
)

// naiveLayouts carry no zone and are read in the caller's location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses a timestamp as the API emits it. Values without a zone
// are taken as local time.
func ParseTime(s string) (time.Time, error) {
	return ParseTimeIn(s, time.Local)
}

// ParseTimeIn is ParseTime with zone-less values read in loc.
func ParseTimeIn(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Time is a time.Time that decodes any layout ParseTime understands.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", data)
	}
	parsed, err := ParseTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.Time.MarshalJSON()
}
