// ABOUTME: Form field descriptors and their conversion to controls and JSON payloads
// ABOUTME: text/number/password/select/textarea kinds, select placeholders and value coercion

package view

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the HTML control a field renders as.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindPassword Kind = "password"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
)

// Option is one choice of a select control.
type Option struct {
	Value string
	Label string
}

// OptionSource names the collection a select draws its options from.
// Label, when set, takes precedence over LabelKey.
type OptionSource struct {
	Resource string
	ValueKey string
	LabelKey string
	Label    func(row json.RawMessage) string
}

// Field describes one form input.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Placeholder string
	Required    bool
	Options     []Option
	OptionsFrom *OptionSource
}

// Control is a field ready to render, with its current value and
// resolved options.
type Control struct {
	Field
	ID      string
	Value   string
	Options []Option
}

// NewControl prepares f for rendering. Select controls always start with an
// empty "Select {label}" option; opts, when non-nil, replaces f.Options.
func NewControl(f Field, value string, opts []Option) Control {
	c := Control{Field: f, ID: "field-" + f.Name, Value: value}
	if f.Kind == "" {
		c.Kind = KindText
	}
	if c.Kind == KindSelect {
		if opts == nil {
			opts = f.Options
		}
		c.Options = make([]Option, 0, len(opts)+1)
		c.Options = append(c.Options, Option{Value: "", Label: "Select " + f.Label})
		c.Options = append(c.Options, opts...)
	}
	return c
}

// Selected reports whether opt is the control's current value.
func (c Control) Selected(opt Option) bool {
	return opt.Value == c.Value
}

// OptionsFromRecords builds select options from a fetched collection.
func OptionsFromRecords(src OptionSource, rows []json.RawMessage) []Option {
	valueKey := src.ValueKey
	if valueKey == "" {
		valueKey = "id"
	}
	opts := make([]Option, 0, len(rows))
	for _, raw := range rows {
		value := Raw(gjson.GetBytes(raw, valueKey))
		var label string
		if src.Label != nil {
			label = src.Label(raw)
		} else {
			label = Raw(gjson.GetBytes(raw, src.LabelKey))
		}
		if label == "" {
			label = value
		}
		opts = append(opts, Option{Value: value, Label: label})
	}
	return opts
}

// Prefill reads the current values of fields from a record, for edit forms.
func Prefill(fields []Field, record json.RawMessage) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Kind == KindPassword {
			continue
		}
		values[f.Name] = Raw(gjson.GetBytes(record, f.Name))
	}
	return values
}

// FieldError reports a posted value that cannot be used.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Coerce turns posted form values into a JSON payload. Numbers become JSON
// numbers, numeric select values become numbers, "true"/"false" select
// values become booleans, and empty optional values are left out.
func Coerce(fields []Field, form url.Values) (map[string]any, error) {
	payload := make(map[string]any, len(fields))
	for _, f := range fields {
		raw := form.Get(f.Name)
		if f.Kind != KindTextarea && f.Kind != KindPassword {
			raw = strings.TrimSpace(raw)
		}

		if strings.TrimSpace(raw) == "" {
			if f.Required {
				return nil, &FieldError{Field: f.Name, Message: f.Label + " is required"}
			}
			continue
		}

		switch f.Kind {
		case KindNumber:
			n, err := parseNumber(raw)
			if err != nil {
				return nil, &FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a number", f.Label)}
			}
			payload[f.Name] = n
		case KindSelect:
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				payload[f.Name] = n
			} else if raw == "true" || raw == "false" {
				payload[f.Name] = raw == "true"
			} else {
				payload[f.Name] = raw
			}
		default:
			payload[f.Name] = raw
		}
	}
	return payload, nil
}

func parseNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}
