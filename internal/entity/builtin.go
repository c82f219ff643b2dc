// ABOUTME: Built-in registry of the twelve test-management entities
// ABOUTME: Columns, form fields, capabilities and hub groups for each entity

package entity

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/view"
)

// Hub groups.
const (
	GroupPlanning   = "Test Planning"
	GroupConfig     = "Configuration"
	GroupExecution  = "Execution"
	GroupVersioning = "Versioning & Attachments"
)

// PendingVar is the variable execution filters compare status_id against.
const PendingVar = "pending"

var yesNoOptions = []view.Option{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}

func idColumn() view.Column {
	return view.Column{Key: "id", Title: "ID"}
}

func nameField(placeholder string) view.Field {
	return view.Field{Name: "name", Label: "Name", Kind: view.KindText, Placeholder: placeholder, Required: true}
}

func ref(resource, labelKey string) *view.OptionSource {
	return &view.OptionSource{Resource: resource, ValueKey: "id", LabelKey: labelKey}
}

func resolutionLabel(row json.RawMessage) string {
	r := gjson.GetManyBytes(row, "w", "h")
	return fmt.Sprintf("%sx%s", view.Raw(r[0]), view.Raw(r[1]))
}

// Default returns the registry of every entity the API exposes, in the
// order the hub and sidebar show them.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range defaultDescriptors() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		MustDefine[Scenario](Descriptor{
			Name:        "scenarios",
			Resource:    "scenarios",
			Title:       "Scenarios",
			Singular:    "Scenario",
			Group:       GroupPlanning,
			Description: "Manage test scenarios",
			Caps:        CapAll,
			Columns:     []view.Column{idColumn(), {Key: "name", Title: "Name"}},
			Fields:      []view.Field{nameField("Enter scenario name")},
		}),
		MustDefine[TestSuite](Descriptor{
			Name:        "testSuites",
			Resource:    "test_suites",
			Title:       "Test Suites",
			Singular:    "Test Suite",
			Group:       GroupPlanning,
			Description: "Organize test suites",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "name", Title: "Name"},
				{Key: "scenario_id", Title: "Scenario"},
			},
			Fields: []view.Field{
				nameField("Enter suite name"),
				{Name: "scenario_id", Label: "Scenario", Kind: view.KindSelect, OptionsFrom: ref("scenarios", "name")},
			},
		}),
		MustDefine[TestCase](Descriptor{
			Name:        "testCases",
			Resource:    "test_cases",
			Title:       "Test Cases",
			Singular:    "Test Case",
			Group:       GroupPlanning,
			Description: "Create and manage test cases",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "name", Title: "Name"},
				{Key: "scenario_id", Title: "Scenario"},
				{Key: "status_set_id", Title: "Status Set"},
			},
			Fields: []view.Field{
				nameField("Enter test case name"),
				{Name: "scenario_id", Label: "Scenario", Kind: view.KindSelect, OptionsFrom: ref("scenarios", "name")},
				{Name: "status_set_id", Label: "Status Set", Kind: view.KindSelect, OptionsFrom: ref("status_sets", "name")},
			},
		}),
		MustDefine[Resolution](Descriptor{
			Name:        "resolutions",
			Resource:    "resolutions",
			Title:       "Resolutions",
			Singular:    "Resolution",
			Group:       GroupConfig,
			Description: "Configure screen resolutions",
			Caps:        CapAll,
			Columns: []view.Column{
				idColumn(),
				{Key: "w", Title: "Width"},
				{Key: "h", Title: "Height"},
			},
			Fields: []view.Field{
				{Name: "w", Label: "Width", Kind: view.KindNumber, Placeholder: "Enter width", Required: true},
				{Name: "h", Label: "Height", Kind: view.KindNumber, Placeholder: "Enter height", Required: true},
			},
		}),
		MustDefine[Device](Descriptor{
			Name:        "devices",
			Resource:    "devices",
			Title:       "Devices",
			Singular:    "Device",
			Group:       GroupConfig,
			Description: "Manage test devices",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "name", Title: "Name"},
				{Key: "resolution_id", Title: "Resolution"},
				{Key: "cpu", Title: "CPU"},
				{Key: "gpu", Title: "GPU"},
				{Key: "ram", Title: "RAM"},
			},
			Fields: []view.Field{
				nameField("Enter device name"),
				{
					Name:        "resolution_id",
					Label:       "Resolution",
					Kind:        view.KindSelect,
					OptionsFrom: &view.OptionSource{Resource: "resolutions", ValueKey: "id", Label: resolutionLabel},
				},
				{Name: "cpu", Label: "CPU", Kind: view.KindText},
				{Name: "gpu", Label: "GPU", Kind: view.KindText},
				{Name: "ram", Label: "RAM", Kind: view.KindText},
			},
		}),
		MustDefine[StatusSet](Descriptor{
			Name:        "statusSets",
			Resource:    "status_sets",
			Title:       "Status Sets",
			Singular:    "Status Set",
			Group:       GroupConfig,
			Description: "Configure status categories",
			Caps:        CapAll,
			Columns:     []view.Column{idColumn(), {Key: "name", Title: "Name"}},
			Fields:      []view.Field{nameField("Enter status set name")},
		}),
		MustDefine[Status](Descriptor{
			Name:        "statuses",
			Resource:    "statuses",
			Title:       "Statuses",
			Singular:    "Status",
			Group:       GroupConfig,
			Description: "Manage individual statuses",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "name", Title: "Name"},
				{Key: "status_set_id", Title: "Status Set"},
				{Key: "is_final", Title: "Final", Render: view.YesNo()},
			},
			Fields: []view.Field{
				nameField("Enter status name"),
				{Name: "description", Label: "Description", Kind: view.KindTextarea},
				{Name: "status_set_id", Label: "Status Set", Kind: view.KindSelect, OptionsFrom: ref("status_sets", "name")},
				{Name: "is_final", Label: "Final", Kind: view.KindSelect, Options: yesNoOptions},
			},
		}),
		MustDefine[Run](Descriptor{
			Name:        "runs",
			Resource:    "runs",
			Title:       "Runs",
			Singular:    "Run",
			Group:       GroupExecution,
			Description: "Manage test runs",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "name", Title: "Name"},
				{Key: "test_suite_id", Title: "Suite"},
				{Key: "started_at", Title: "Started At", Render: view.Timestamp("Not started")},
				{Key: "done_at", Title: "Completed At", Render: view.Timestamp("In progress")},
			},
			Fields: []view.Field{
				nameField("Enter run name"),
				{Name: "test_suite_id", Label: "Test Suite", Kind: view.KindSelect, OptionsFrom: ref("test_suites", "name")},
				{Name: "project_id", Label: "Project ID", Kind: view.KindNumber},
			},
		}),
		MustDefine[Execution](Descriptor{
			Name:        "executions",
			Resource:    "executions",
			Title:       "Executions",
			Singular:    "Execution",
			Group:       GroupExecution,
			Description: "View and manage executions",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "run_id", Title: "Run ID"},
				{Key: "test_case_version_id", Title: "Test Case Version"},
				{Key: "device_id", Title: "Device ID"},
				{Key: "status_id", Title: "Status ID"},
				{Key: "executed_at", Title: "Executed At", Render: view.Timestamp("Pending")},
				{Key: "execution_order", Title: "Order"},
			},
			Fields: []view.Field{
				{Name: "run_id", Label: "Run", Kind: view.KindSelect, Required: true, OptionsFrom: ref("runs", "name")},
				{Name: "test_case_version_id", Label: "Test Case Version", Kind: view.KindSelect, Required: true, OptionsFrom: ref("test_case_versions", "name")},
				{Name: "device_id", Label: "Device", Kind: view.KindSelect, OptionsFrom: ref("devices", "name")},
				{Name: "status_id", Label: "Status", Kind: view.KindSelect, OptionsFrom: ref("statuses", "name")},
				{Name: "actual_result", Label: "Actual Result", Kind: view.KindTextarea},
				{Name: "execution_order", Label: "Order", Kind: view.KindNumber},
			},
			Filters: []Filter{
				{Key: "all", Label: "All Executions", Expr: "true"},
				{Key: "completed", Label: "Completed", Expr: "status_id != " + PendingVar},
				{Key: "pending", Label: "Pending", Expr: "status_id == " + PendingVar},
			},
		}),
		MustDefine[Suitcase](Descriptor{
			Name:        "suitcases",
			Resource:    "suitcases",
			Title:       "Suitcases",
			Singular:    "Suitcase",
			Group:       GroupExecution,
			Description: "Link test cases to suites",
			Caps:        CapRead,
			Columns: []view.Column{
				idColumn(),
				{Key: "test_suite_id", Title: "Test Suite"},
				{Key: "test_case_version_id", Title: "Test Case Version"},
			},
		}),
		MustDefine[TestCaseVersion](Descriptor{
			Name:        "testCaseVersions",
			Resource:    "test_case_versions",
			Title:       "Test Case Versions",
			Singular:    "Test Case Version",
			Group:       GroupVersioning,
			Description: "Manage test case versions",
			Caps:        CapCreatable,
			Columns: []view.Column{
				idColumn(),
				{Key: "test_case_id", Title: "Test Case"},
				{Key: "version", Title: "Version"},
				{Key: "name", Title: "Name"},
				{Key: "release_ready", Title: "Release Ready", Render: view.YesNo()},
				{Key: "created_at", Title: "Created At", Render: view.Timestamp("")},
			},
			Fields: []view.Field{
				{Name: "test_case_id", Label: "Test Case", Kind: view.KindSelect, Required: true, OptionsFrom: ref("test_cases", "name")},
				{Name: "version", Label: "Version", Kind: view.KindNumber, Placeholder: "Next version if empty"},
				{Name: "name", Label: "Name", Kind: view.KindText, Required: true},
				{Name: "description", Label: "Description", Kind: view.KindTextarea},
				{Name: "steps", Label: "Steps", Kind: view.KindTextarea},
				{Name: "expected_result", Label: "Expected Result", Kind: view.KindTextarea},
				{Name: "release_ready", Label: "Release Ready", Kind: view.KindSelect, Options: yesNoOptions},
			},
		}),
		MustDefine[Attachment](Descriptor{
			Name:        "attachments",
			Resource:    "attachments",
			Title:       "Attachments",
			Singular:    "Attachment",
			Group:       GroupVersioning,
			Description: "Manage test attachments",
			Caps:        CapRead,
			Columns: []view.Column{
				idColumn(),
				{Key: "execution_id", Title: "Execution"},
				{Key: "filename", Title: "Filename"},
				{Key: "file_path", Title: "File Path"},
				{Key: "uploaded_at", Title: "Uploaded At", Render: view.Timestamp("")},
			},
		}),
	}
}
