// ABOUTME: Tests for the stub API server driven through the real HTTP client
// ABOUTME: Covers auth, create-then-list for every entity, validation and run-scoped executions

package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/auth"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/store"
)

type harness struct {
	srv    *Server
	http   *httptest.Server
	client *api.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := New(store.NewMockStore(), auth.NewJWTIssuer([]byte("test-secret"), time.Hour), entity.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &harness{srv: srv, http: ts, client: api.New(ts.URL + BasePath)}
}

// signIn registers a tester and returns a client bound to its token.
func (h *harness) signIn(t *testing.T) *api.Client {
	t.Helper()
	ctx := context.Background()
	_, err := h.client.Register(ctx, api.Registration{Email: "ada@example.com", Password: "secret", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	resp, err := h.client.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	return h.client.WithToken(resp.AccessToken)
}

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "Ada", me.FirstName)
	assert.True(t, me.Active)
	assert.NotNil(t, me.CreatedAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	_, err := h.client.Login(context.Background(), "ada@example.com", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrLoginFailed)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))

	_, err = h.client.Login(context.Background(), "nobody@example.com", "secret")
	assert.ErrorIs(t, err, api.ErrLoginFailed)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	_, err := h.client.Register(context.Background(), api.Registration{Email: "ada@example.com", Password: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRegistrationFailed)
	assert.Equal(t, "Email already registered", err.Error())
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.Register(context.Background(), api.Registration{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))

	_, err = h.client.Register(context.Background(), api.Registration{Email: "a@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Password is required", err.Error())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.List(context.Background(), "scenarios")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	_, err = h.client.WithToken("garbage").List(context.Background(), "scenarios")
	assert.True(t, api.IsUnauthorized(err))
}

// samplePayloads holds a valid create body per resource.
var samplePayloads = map[string]map[string]any{
	"scenarios":          {"name": "Checkout"},
	"test_suites":        {"name": "Smoke", "scenario_id": 1},
	"test_cases":         {"name": "Pay with card", "scenario_id": 1, "status_set_id": 1},
	"resolutions":        {"w": 1920, "h": 1080},
	"devices":            {"name": "Pixel 8", "resolution_id": 1, "cpu": "Tensor G3"},
	"status_sets":        {"name": "Default"},
	"statuses":           {"name": "Passed", "status_set_id": 1, "is_final": true},
	"runs":               {"name": "Nightly", "test_suite_id": 1, "project_id": 3},
	"executions":         {"run_id": 1, "test_case_version_id": 1, "device_id": 1, "actual_result": "ok"},
	"suitcases":          {"test_suite_id": 1, "test_case_id": 1},
	"test_case_versions": {"test_case_id": 1, "name": "v1", "steps": "1. open"},
	"attachments":        {"execution_id": 1, "filename": "shot.png", "file_path": "/files/shot.png"},
}

func TestCreateThenListEveryEntity(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()

	for _, d := range entity.Default().All() {
		t.Run(d.Name, func(t *testing.T) {
			payload, ok := samplePayloads[d.Resource]
			require.True(t, ok, "no sample payload for %s", d.Resource)

			created, err := client.Create(ctx, d.Resource, payload)
			require.NoError(t, err)
			id := gjson.GetBytes(created, "id")
			require.True(t, id.Exists())

			list, err := client.List(ctx, d.Resource)
			require.NoError(t, err)

			var found json.RawMessage
			for _, rec := range list {
				if gjson.GetBytes(rec, "id").Int() == id.Int() {
					found = rec
				}
			}
			require.NotNil(t, found, "created record missing from list")
			for k, want := range payload {
				assert.EqualValues(t, jsonValue(t, want), gjson.GetBytes(found, k).Value(), "field %s", k)
			}

			// Typed accessors decode what the server stores.
			_, err = entity.Raw(client, d).List(ctx)
			require.NoError(t, err)
		})
	}
}

func jsonValue(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return gjson.ParseBytes(data).Value()
}

func TestTypedAccessorsDecode(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()
	reg := entity.Default()

	d, err := reg.Lookup("testCaseVersions")
	require.NoError(t, err)
	versions := entity.For[entity.TestCaseVersion](client, d)

	first, err := versions.Create(ctx, map[string]any{"test_case_id": 4, "name": "first"})
	require.NoError(t, err)
	second, err := versions.Create(ctx, map[string]any{"test_case_id": 4, "name": "second"})
	require.NoError(t, err)
	other, err := versions.Create(ctx, map[string]any{"test_case_id": 5, "name": "other"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, int64(1), other.Version)
	require.NotNil(t, first.CreatedBy)
	assert.Equal(t, int64(1), *first.CreatedBy)
	require.NotNil(t, first.CreatedAt)
	assert.WithinDuration(t, time.Now(), first.CreatedAt.Time, time.Minute)
}

func TestUpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()

	d, err := entity.Default().Lookup("scenarios")
	require.NoError(t, err)
	scenarios := entity.For[entity.Scenario](client, d)

	created, err := scenarios.Create(ctx, map[string]any{"name": "Login"})
	require.NoError(t, err)

	updated, err := scenarios.Update(ctx, "1", map[string]any{"name": "Sign in"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Sign in", updated.Name)

	deleted, err := scenarios.Delete(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "Sign in", deleted.Name)

	_, err = scenarios.Get(ctx, "1")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		resource string
		payload  map[string]any
		want     string
	}{
		{"missing required", "resolutions", map[string]any{"w": 10}, `field "h" is required`},
		{"unknown field", "scenarios", map[string]any{"name": "x", "colour": "red"}, "unknown field"},
		{"wrong type", "scenarios", map[string]any{"name": 5}, "invalid Scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Create(ctx, tt.resource, tt.payload)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))
			var reqErr *api.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Contains(t, reqErr.Message, tt.want)
		})
	}
}

func TestUpdate_RejectsNullForTypedFields(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "scenarios", map[string]any{"name": "Login"})
	require.NoError(t, err)

	_, err = client.Update(ctx, "scenarios", "1", map[string]any{"name": nil})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))
	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Message, `field "name" cannot be null`)

	rec, err := client.Get(ctx, "scenarios", "1")
	require.NoError(t, err)
	assert.Equal(t, "Login", gjson.GetBytes(rec, "name").String())
}

func TestUnknownCollection(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)

	_, err := client.List(context.Background(), "projects")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestExecutionsByRun(t *testing.T) {
	h := newHarness(t)
	client := h.signIn(t)
	ctx := context.Background()

	for _, runID := range []int{1, 2, 1} {
		_, err := client.Create(ctx, "executions", map[string]any{"run_id": runID, "test_case_version_id": 1})
		require.NoError(t, err)
	}
	withStatus, err := client.Create(ctx, "executions", map[string]any{"run_id": 2, "test_case_version_id": 2, "status_id": 1})
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(withStatus, "executed_at").Exists())
	assert.Equal(t, int64(1), gjson.GetBytes(withStatus, "executed_by").Int())

	got, err := client.ExecutionsByRun(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = client.ExecutionsByRun(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestHealthAndMethodNotAllowed(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Get(h.http.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(h.http.URL + BasePath + "/auth/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSeed(t *testing.T) {
	cfg, err := ParseConfig(`
listen = "127.0.0.1:0"
jwt_secret = "s"

[[testers]]
email = "grace@example.com"
password = "hopper"
first_name = "Grace"

[[seed.scenarios]]
name = "Onboarding"

[[seed.resolutions]]
w = 1280
h = 720
`)
	require.NoError(t, err)

	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.srv.Seed(ctx, cfg))
	// A second run leaves existing data alone.
	require.NoError(t, h.srv.Seed(ctx, cfg))

	resp, err := h.client.Login(ctx, "grace@example.com", "hopper")
	require.NoError(t, err)
	client := h.client.WithToken(resp.AccessToken)

	scenarios, err := client.List(ctx, "scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "Onboarding", gjson.GetBytes(scenarios[0], "name").String())

	resolutions, err := client.List(ctx, "resolutions")
	require.NoError(t, err)
	require.Len(t, resolutions, 1)
	assert.Equal(t, int64(1280), gjson.GetBytes(resolutions[0], "w").Int())
}

func TestSeed_UnknownCollection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = map[string][]map[string]any{"projects": {{"name": "x"}}}

	err := newHarness(t).srv.Seed(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "projects"))
}
