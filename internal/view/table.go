// ABOUTME: Generic table model built from raw JSON records and column descriptors
// ABOUTME: One header per column, optional actions column, "No data available" when empty

package view

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// NoDataText is the only content of a table without rows.
const NoDataText = "No data available"

// ActionsTitle heads the extra column holding edit/delete links.
const ActionsTitle = "Actions"

// Value is one field looked up from a record.
type Value = gjson.Result

// Column describes one table column. Key is a gjson path into the record.
// When Render is nil the raw field value is shown.
type Column struct {
	Key    string
	Title  string
	Render func(v Value, row json.RawMessage) string
}

// Actions turns a row id into link targets. A nil func disables that action.
type Actions struct {
	Edit   func(id string) string
	Delete func(id string) string
}

// Any reports whether at least one action is supplied.
func (a Actions) Any() bool {
	return a.Edit != nil || a.Delete != nil
}

// Table is a rendered-ready table model.
type Table struct {
	Headers    []string
	Rows       []Row
	Empty      bool
	HasActions bool
}

// Row is one body row. Index is its position in the input.
type Row struct {
	Index     int
	ID        string
	Cells     []string
	EditURL   string
	DeleteURL string
}

// CellCount is the number of cells the row renders, actions included.
func (t Table) CellCount(r Row) int {
	if t.HasActions {
		return len(r.Cells) + 1
	}
	return len(r.Cells)
}

// BuildTable maps rows through columns.
func BuildTable(columns []Column, rows []json.RawMessage, actions Actions) Table {
	if len(rows) == 0 {
		return Table{Empty: true}
	}

	t := Table{HasActions: actions.Any()}
	t.Headers = make([]string, 0, len(columns)+1)
	for _, col := range columns {
		t.Headers = append(t.Headers, col.Title)
	}
	if t.HasActions {
		t.Headers = append(t.Headers, ActionsTitle)
	}

	t.Rows = make([]Row, len(rows))
	for i, raw := range rows {
		row := Row{
			Index: i,
			ID:    gjson.GetBytes(raw, "id").String(),
			Cells: make([]string, len(columns)),
		}
		for j, col := range columns {
			v := gjson.GetBytes(raw, col.Key)
			if col.Render != nil {
				row.Cells[j] = col.Render(v, raw)
			} else {
				row.Cells[j] = Raw(v)
			}
		}
		if actions.Edit != nil {
			row.EditURL = actions.Edit(row.ID)
		}
		if actions.Delete != nil {
			row.DeleteURL = actions.Delete(row.ID)
		}
		t.Rows[i] = row
	}
	return t
}

// Raw renders a value the way a plain cell shows it: strings unquoted,
// null or missing as empty, everything else as its JSON text.
func Raw(v Value) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return v.Raw
	}
}
