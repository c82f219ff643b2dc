// ABOUTME: Typed record schemas for every entity of the test-management API
// ABOUTME: Field names follow the API's JSON; optional references are pointers

package entity

import "github.com/Oleksiak-Inc/FileManagementTool/internal/api"

// Resolution is a screen size devices can have.
type Resolution struct {
	ID int64 `json:"id"`
	W  int64 `json:"w"`
	H  int64 `json:"h"`
}

// Scenario groups test suites and test cases.
type Scenario struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StatusSet is a named family of statuses.
type StatusSet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Status is one outcome a test case can be in.
type Status struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StatusSetID *int64 `json:"status_set_id,omitempty"`
	IsFinal     bool   `json:"is_final"`
}

// TestSuite belongs to a scenario.
type TestSuite struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScenarioID *int64 `json:"scenario_id,omitempty"`
}

// TestCase belongs to a scenario and uses one status set.
type TestCase struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ScenarioID  *int64 `json:"scenario_id,omitempty"`
	StatusSetID *int64 `json:"status_set_id,omitempty"`
}

// TestCaseVersion is an immutable revision of a test case.
type TestCaseVersion struct {
	ID             int64     `json:"id"`
	TestCaseID     int64     `json:"test_case_id"`
	Version        int64     `json:"version"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Steps          string    `json:"steps,omitempty"`
	ExpectedResult string    `json:"expected_result,omitempty"`
	ReleaseReady   bool      `json:"release_ready"`
	CreatedBy      *int64    `json:"created_by,omitempty"`
	CreatedAt      *api.Time `json:"created_at,omitempty"`
}

// Suitcase places a test case version into a test suite.
type Suitcase struct {
	ID                int64  `json:"id"`
	TestSuiteID       int64  `json:"test_suite_id"`
	TestCaseID        int64  `json:"test_case_id"`
	TestCaseVersionID *int64 `json:"test_case_version_id,omitempty"`
}

// Device is a machine executions run on.
type Device struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ResolutionID *int64 `json:"resolution_id,omitempty"`
	CPU          string `json:"cpu,omitempty"`
	GPU          string `json:"gpu,omitempty"`
	RAM          string `json:"ram,omitempty"`
}

// Run is one execution pass over a test suite.
type Run struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ProjectID         *int64    `json:"project_id,omitempty"`
	TestSuiteID       *int64    `json:"test_suite_id,omitempty"`
	TestSuiteMetadata string    `json:"test_suite_metadata,omitempty"`
	StartedAt         *api.Time `json:"started_at,omitempty"`
	DoneAt            *api.Time `json:"done_at,omitempty"`
}

// Attachment is a file uploaded against an execution.
type Attachment struct {
	ID          int64     `json:"id"`
	ExecutionID int64     `json:"execution_id"`
	Filename    string    `json:"filename"`
	FilePath    string    `json:"file_path"`
	UploadedBy  *int64    `json:"uploaded_by,omitempty"`
	UploadedAt  *api.Time `json:"uploaded_at,omitempty"`
}

// Execution is the result of running one test case version on a device.
type Execution struct {
	ID                int64     `json:"id"`
	RunID             int64     `json:"run_id"`
	TestCaseVersionID int64     `json:"test_case_version_id"`
	DeviceID          *int64    `json:"device_id,omitempty"`
	StatusID          *int64    `json:"status_id,omitempty"`
	ExecutedBy        *int64    `json:"executed_by,omitempty"`
	ActualResult      string    `json:"actual_result,omitempty"`
	ExecutedAt        *api.Time `json:"executed_at,omitempty"`
	ExecutionOrder    *int64    `json:"execution_order,omitempty"`
}
