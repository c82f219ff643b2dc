// ABOUTME: Tests for table building, formatters, controls and form coercion
// ABOUTME: Exercises both the HTML partials and the tabwriter output

package view

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, docs ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		require.True(t, json.Valid([]byte(d)), d)
		out[i] = json.RawMessage(d)
	}
	return out
}

var scenarioColumns = []Column{
	{Key: "id", Title: "ID"},
	{Key: "name", Title: "Name"},
}

func TestBuildTable_Empty(t *testing.T) {
	for _, rows := range [][]json.RawMessage{nil, {}} {
		tbl := BuildTable(scenarioColumns, rows, Actions{Edit: func(string) string { return "/x" }})
		assert.True(t, tbl.Empty)
		assert.Empty(t, tbl.Headers)
		assert.Empty(t, tbl.Rows)

		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, tbl, ""))
		html := buf.String()
		assert.Contains(t, html, NoDataText)
		assert.NotContains(t, html, "<tr")
		assert.NotContains(t, html, "<th")
		assert.NotContains(t, html, "<td")

		buf.Reset()
		require.NoError(t, RenderText(&buf, tbl))
		assert.Equal(t, NoDataText+"\n", buf.String())
	}
}

func TestBuildTable_Shape(t *testing.T) {
	rows := records(t,
		`{"id":1,"name":"Login"}`,
		`{"id":2,"name":"Checkout"}`,
		`{"id":3,"name":"Search"}`,
	)

	t.Run("without actions", func(t *testing.T) {
		tbl := BuildTable(scenarioColumns, rows, Actions{})
		assert.Equal(t, []string{"ID", "Name"}, tbl.Headers)
		require.Len(t, tbl.Rows, 3)
		for _, r := range tbl.Rows {
			assert.Equal(t, 2, tbl.CellCount(r))
		}

		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, tbl, ""))
		html := buf.String()
		assert.Equal(t, 4, strings.Count(html, "<tr"))
		assert.Equal(t, 2, strings.Count(html, "<th"))
		assert.Equal(t, 6, strings.Count(html, "<td"))
		assert.NotContains(t, html, ActionsTitle)
	})

	t.Run("with actions", func(t *testing.T) {
		tbl := BuildTable(scenarioColumns, rows, Actions{
			Edit:   func(id string) string { return "/scenarios/" + id + "/edit" },
			Delete: func(id string) string { return "/scenarios/" + id + "/delete" },
		})
		assert.Equal(t, []string{"ID", "Name", ActionsTitle}, tbl.Headers)
		for _, r := range tbl.Rows {
			assert.Equal(t, 3, tbl.CellCount(r))
		}
		assert.Equal(t, "/scenarios/2/edit", tbl.Rows[1].EditURL)

		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, tbl, "csrf-abc"))
		html := buf.String()
		assert.Equal(t, 9, strings.Count(html, "<td"))
		assert.Equal(t, 3, strings.Count(html, `value="csrf-abc"`))
		assert.Contains(t, html, `action="/scenarios/3/delete"`)
	})

	t.Run("delete only still adds actions column", func(t *testing.T) {
		tbl := BuildTable(scenarioColumns, rows, Actions{Delete: func(id string) string { return "/d/" + id }})
		assert.True(t, tbl.HasActions)
		assert.Empty(t, tbl.Rows[0].EditURL)
	})
}

func TestBuildTable_RawValues(t *testing.T) {
	rows := records(t, `{"id":5,"name":"quoted \"x\"","note":null,"ok":true,"meta":{"a":1}}`)
	cols := []Column{
		{Key: "name", Title: "Name"},
		{Key: "note", Title: "Note"},
		{Key: "missing", Title: "Missing"},
		{Key: "ok", Title: "OK"},
		{Key: "meta", Title: "Meta"},
		{Key: "meta.a", Title: "Nested"},
	}

	tbl := BuildTable(cols, rows, Actions{})
	assert.Equal(t, []string{`quoted "x"`, "", "", "true", `{"a":1}`, "1"}, tbl.Rows[0].Cells)
	assert.Equal(t, "5", tbl.Rows[0].ID)
}

func TestBuildTable_FormatterAppliesToEveryRow(t *testing.T) {
	rows := records(t, `{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`, `{"id":3}`)
	cols := []Column{{
		Key:   "name",
		Title: "Name",
		Render: func(v Value, row json.RawMessage) string {
			return "<" + v.String() + ">"
		},
	}}

	tbl := BuildTable(cols, rows, Actions{})
	for _, r := range tbl.Rows {
		assert.True(t, strings.HasPrefix(r.Cells[0], "<"), r.Cells[0])
	}
	assert.Equal(t, "<>", tbl.Rows[2].Cells[0])

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, tbl, ""))
	assert.Contains(t, buf.String(), "&lt;a&gt;", "formatter output is escaped")
}

func TestTimestamp_NaiveValuesReadInDisplayZone(t *testing.T) {
	render := TimestampIn(time.FixedZone("UTC+3", 3*60*60), "-")

	rows := records(t,
		`{"started_at":"2024-05-06T07:08:09"}`,
		`{"started_at":"2024-05-06T07:08:09Z"}`,
	)
	tbl := BuildTable([]Column{{Key: "started_at", Title: "Started At", Render: render}}, rows, Actions{})

	assert.Equal(t, "May 6, 2024 07:08:09", tbl.Rows[0].Cells[0])
	assert.Equal(t, "May 6, 2024 10:08:09", tbl.Rows[1].Cells[0])
}

func TestTimestamp(t *testing.T) {
	render := TimestampIn(time.UTC, "Not started")

	rows := records(t,
		`{"started_at":"2024-05-06T07:08:09Z"}`,
		`{"started_at":"2024-05-06T07:08:09"}`,
		`{"started_at":null}`,
		`{}`,
		`{"started_at":""}`,
		`{"started_at":"garbage"}`,
	)
	tbl := BuildTable([]Column{{Key: "started_at", Title: "Started At", Render: render}}, rows, Actions{})

	got := make([]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		got[i] = r.Cells[0]
	}
	assert.Equal(t, []string{
		"May 6, 2024 07:08:09",
		"May 6, 2024 07:08:09",
		"Not started",
		"Not started",
		"Not started",
		"garbage",
	}, got)
}

func TestYesNoAndTruncate(t *testing.T) {
	rows := records(t, `{"f":true,"s":"abcdefgh"}`, `{"f":false,"s":"ab"}`)
	tbl := BuildTable([]Column{
		{Key: "f", Title: "Final", Render: YesNo()},
		{Key: "s", Title: "S", Render: Truncate(4)},
	}, rows, Actions{})

	assert.Equal(t, []string{"Yes", "abcd…"}, tbl.Rows[0].Cells)
	assert.Equal(t, []string{"No", "ab"}, tbl.Rows[1].Cells)
}

func TestRenderText(t *testing.T) {
	rows := records(t, `{"id":1,"name":"Login"}`, `{"id":22,"name":"Checkout flow"}`)
	tbl := BuildTable(scenarioColumns, rows, Actions{Edit: func(string) string { return "" }})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, tbl))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "NAME")
	assert.NotContains(t, lines[0], "ACTIONS")
	assert.Contains(t, lines[3], "Checkout flow")
}

func TestNewControl_SelectPlaceholder(t *testing.T) {
	f := Field{Name: "scenario_id", Label: "Scenario", Kind: KindSelect, Required: true}

	c := NewControl(f, "", []Option{{Value: "1", Label: "Login"}, {Value: "2", Label: "Search"}})
	require.Len(t, c.Options, 3)
	assert.Equal(t, Option{Value: "", Label: "Select Scenario"}, c.Options[0])

	empty := NewControl(f, "", nil)
	require.Len(t, empty.Options, 1)
	assert.Equal(t, "Select Scenario", empty.Options[0].Label)

	html, err := ControlHTML(NewControl(f, "2", []Option{{Value: "1", Label: "Login"}, {Value: "2", Label: "Search"}}))
	require.NoError(t, err)
	s := string(html)
	assert.Less(t, strings.Index(s, "Select Scenario"), strings.Index(s, "Login"))
	assert.Contains(t, s, `<option value="2" selected>Search</option>`)
	assert.Contains(t, s, " required")
}

func TestControlHTML_Kinds(t *testing.T) {
	tests := []struct {
		field    Field
		value    string
		contains []string
		absent   []string
	}{
		{
			field:    Field{Name: "name", Label: "Name", Kind: KindText, Placeholder: "Enter name", Required: true},
			value:    "abc",
			contains: []string{`type="text"`, `placeholder="Enter name"`, `value="abc"`, "required"},
		},
		{
			field:    Field{Name: "w", Label: "Width", Kind: KindNumber},
			contains: []string{`type="number"`, `step="any"`},
			absent:   []string{"required"},
		},
		{
			field:    Field{Name: "password", Label: "Password", Kind: KindPassword},
			value:    "secret",
			contains: []string{`type="password"`},
			absent:   []string{"secret"},
		},
		{
			field:    Field{Name: "steps", Label: "Steps", Kind: KindTextarea},
			value:    "1. open\n2. click",
			contains: []string{"<textarea", "1. open\n2. click</textarea>"},
		},
		{
			field:    Field{Name: "cpu", Label: "CPU"},
			contains: []string{`type="text"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			html, err := ControlHTML(NewControl(tt.field, tt.value, nil))
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(html), want)
			}
			for _, bad := range tt.absent {
				assert.NotContains(t, string(html), bad)
			}
		})
	}
}

func TestOptionsFromRecords(t *testing.T) {
	rows := records(t, `{"id":1,"name":"Login"}`, `{"id":2}`)

	opts := OptionsFromRecords(OptionSource{Resource: "scenarios", LabelKey: "name"}, rows)
	assert.Equal(t, []Option{{Value: "1", Label: "Login"}, {Value: "2", Label: "2"}}, opts)
}

func TestPrefill(t *testing.T) {
	fields := []Field{
		{Name: "name", Kind: KindText},
		{Name: "w", Kind: KindNumber},
		{Name: "password", Kind: KindPassword},
	}
	got := Prefill(fields, json.RawMessage(`{"id":1,"name":"HD","w":1280,"password":"x"}`))
	assert.Equal(t, map[string]string{"name": "HD", "w": "1280"}, got)
}

func TestCoerce(t *testing.T) {
	fields := []Field{
		{Name: "name", Label: "Name", Kind: KindText, Required: true},
		{Name: "w", Label: "Width", Kind: KindNumber},
		{Name: "ratio", Label: "Ratio", Kind: KindNumber},
		{Name: "scenario_id", Label: "Scenario", Kind: KindSelect},
		{Name: "kind", Label: "Kind", Kind: KindSelect},
		{Name: "is_final", Label: "Final", Kind: KindSelect},
		{Name: "description", Label: "Description", Kind: KindTextarea},
	}

	payload, err := Coerce(fields, url.Values{
		"name":        {"  Smoke  "},
		"w":           {"1920"},
		"ratio":       {"1.5"},
		"scenario_id": {"3"},
		"kind":        {"manual"},
		"is_final":    {"true"},
		"description": {""},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":        "Smoke",
		"w":           int64(1920),
		"ratio":       1.5,
		"scenario_id": int64(3),
		"kind":        "manual",
		"is_final":    true,
	}, payload)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Smoke","w":1920,"ratio":1.5,"scenario_id":3,"kind":"manual","is_final":true}`, string(data))
}

func TestCoerce_Errors(t *testing.T) {
	fields := []Field{
		{Name: "name", Label: "Name", Required: true},
		{Name: "w", Label: "Width", Kind: KindNumber},
	}

	_, err := Coerce(fields, url.Values{"w": {"10"}})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)
	assert.Equal(t, "Name is required", err.Error())

	_, err = Coerce(fields, url.Values{"name": {"x"}, "w": {"wide"}})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Width must be a number", err.Error())
}
