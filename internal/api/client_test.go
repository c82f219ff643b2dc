// ABOUTME: Tests for the REST client against httptest servers
// ABOUTME: Covers auth header presence, error taxonomy, verbs and auth endpoints

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	Method  string
	Path    string
	Auth    string
	HasAuth bool
	CT      string
	Body    string
}

func recordingServer(t *testing.T, status int, body string) (*httptest.Server, *[]seenRequest) {
	t.Helper()
	var seen []seenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_, hasAuth := r.Header["Authorization"]
		seen = append(seen, seenRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Auth:    r.Header.Get("Authorization"),
			HasAuth: hasAuth,
			CT:      r.Header.Get("Content-Type"),
			Body:    string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func allVerbs(c *Client) map[string]func() error {
	ctx := context.Background()
	return map[string]func() error{
		"list": func() error { _, err := c.List(ctx, "scenarios"); return err },
		"get":  func() error { _, err := c.Get(ctx, "scenarios", "1"); return err },
		"create": func() error {
			_, err := c.Create(ctx, "scenarios", map[string]any{"name": "a"})
			return err
		},
		"update": func() error {
			_, err := c.Update(ctx, "scenarios", "1", map[string]any{"name": "b"})
			return err
		},
		"delete": func() error { _, err := c.Delete(ctx, "scenarios", "1"); return err },
	}
}

func TestClient_AuthHeaderOnlyWithToken(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"id":1}`)

	for name, call := range allVerbs(New(srv.URL).WithToken("tok-123")) {
		t.Run(name+"/with token", func(t *testing.T) {
			*seen = nil
			_ = call()
			require.Len(t, *seen, 1)
			assert.Equal(t, "Bearer tok-123", (*seen)[0].Auth)
			assert.Equal(t, "application/json", (*seen)[0].CT)
		})
	}

	for name, call := range allVerbs(New(srv.URL)) {
		t.Run(name+"/without token", func(t *testing.T) {
			*seen = nil
			_ = call()
			require.Len(t, *seen, 1)
			assert.False(t, (*seen)[0].HasAuth, "no Authorization header expected")
			assert.Equal(t, "application/json", (*seen)[0].CT)
		})
	}
}

func TestClient_TokenSourceIsConsultedPerRequest(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `[]`)

	var n atomic.Int32
	c := New(srv.URL, WithTokenSource(func() string {
		if n.Add(1) == 1 {
			return ""
		}
		return "later"
	}))

	_, err := c.List(context.Background(), "runs")
	require.NoError(t, err)
	_, err = c.List(context.Background(), "runs")
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	assert.False(t, (*seen)[0].HasAuth)
	assert.Equal(t, "Bearer later", (*seen)[1].Auth)
}

func TestClient_ServerErrorReturnsErrorAndNoBody(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusInternalServerError, `{"id":99,"name":"should not parse"}`)
	c := New(srv.URL).WithToken("t")
	ctx := context.Background()

	list, err := c.List(ctx, "scenarios")
	assert.Nil(t, list)
	assert.ErrorIs(t, err, ErrRequestFailed)

	rec, err := c.Get(ctx, "scenarios", "1")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrRequestFailed)

	rec, err = c.Create(ctx, "scenarios", map[string]any{"name": "x"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrRequestFailed)

	rec, err = c.Update(ctx, "scenarios", "1", map[string]any{"name": "x"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrRequestFailed)

	rec, err = c.Delete(ctx, "scenarios", "1")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_ErrorWording(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusInternalServerError, `oops`)
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.List(ctx, "runs")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch runs: 500 Internal Server Error", err.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))

	_, err = c.Create(ctx, "runs", map[string]any{})
	assert.Contains(t, err.Error(), "Failed to create")

	_, err = c.Update(ctx, "runs", "1", map[string]any{})
	assert.Contains(t, err.Error(), "Failed to update")

	_, err = c.Delete(ctx, "runs", "1")
	assert.Contains(t, err.Error(), "Failed to delete")
}

func TestClient_ServerMessageSurfaced(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusBadRequest, `{"detail":"name already taken"}`)

	_, err := New(srv.URL).Create(context.Background(), "scenarios", map[string]any{"name": "dup"})
	require.Error(t, err)

	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, OpCreate, rerr.Op)
	assert.Equal(t, "scenarios", rerr.Resource)
	assert.Equal(t, "name already taken", rerr.Message)
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)

	_, err := New(srv.URL).WithToken("expired").List(context.Background(), "runs")
	assert.True(t, IsUnauthorized(err))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).List(context.Background(), "runs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_VerbsAndPaths(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"id":1}`)
	c := New(srv.URL + "/api/v1/")
	ctx := context.Background()

	_, _ = c.Get(ctx, "status_sets", "7")
	_, _ = c.Create(ctx, "status_sets", map[string]any{"name": "Default"})
	_, _ = c.Update(ctx, "status_sets", "7", map[string]any{"name": "Renamed"})
	_, _ = c.Delete(ctx, "status_sets", "7")
	_, _ = c.ExecutionsByRun(ctx, "3")

	require.Len(t, *seen, 5)
	assert.Equal(t, "GET /api/v1/status_sets/7", (*seen)[0].Method+" "+(*seen)[0].Path)
	assert.Equal(t, "POST /api/v1/status_sets", (*seen)[1].Method+" "+(*seen)[1].Path)
	assert.JSONEq(t, `{"name":"Default"}`, (*seen)[1].Body)
	assert.Equal(t, "PATCH /api/v1/status_sets/7", (*seen)[2].Method+" "+(*seen)[2].Path)
	assert.Equal(t, "DELETE /api/v1/status_sets/7", (*seen)[3].Method+" "+(*seen)[3].Path)
	assert.Equal(t, "GET /api/v1/executions/run/3", (*seen)[4].Method+" "+(*seen)[4].Path)
}

func TestClient_ListDecodesRawRecords(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`)

	recs, err := New(srv.URL).List(context.Background(), "scenarios")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.JSONEq(t, `{"id":2,"name":"b"}`, string(recs[1]))
}

func TestClient_DeleteWithEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rec, err := New(srv.URL).Delete(context.Background(), "scenarios", "1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).List(context.Background(), "runs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_WithTokenDoesNotMutateOriginal(t *testing.T) {
	base := New("http://example.invalid")
	bound := base.WithToken("abc")

	req, err := base.NewRequest(context.Background(), http.MethodGet, "runs", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))

	req, err = bound.NewRequest(context.Background(), http.MethodGet, "runs", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	assert.Equal(t, "http://example.invalid/runs", req.URL.String())
}

func TestClient_Login(t *testing.T) {
	var got LoginRequest
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, sawAuth = r.Header["Authorization"]
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect email or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"t","token_type":"bearer"}`)
	}))
	defer srv.Close()

	c := New(srv.URL).WithToken("stale")

	resp, err := c.Login(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "t", resp.AccessToken)
	assert.Equal(t, "a@example.com", got.Email)
	assert.False(t, sawAuth, "login must not carry a bearer token")

	_, err = c.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Incorrect email or password", err.Error())
}

func TestClient_LoginWithoutTokenFails(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{}`)

	_, err := New(srv.URL).Login(context.Background(), "a@example.com", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "Login failed", err.Error())
}

func TestClient_Register(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusBadRequest, `{}`)

	_, err := New(srv.URL).Register(context.Background(), Registration{
		Email: "new@example.com", Password: "pw", FirstName: "Ada", LastName: "Lovelace",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Equal(t, "Registration failed", err.Error())

	require.Len(t, *seen, 1)
	assert.Equal(t, "/testers/register", (*seen)[0].Path)
	assert.JSONEq(t,
		`{"email":"new@example.com","password":"pw","first_name":"Ada","last_name":"Lovelace"}`,
		(*seen)[0].Body)
}

func TestClient_Me(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK,
		`{"id":4,"email":"a@example.com","first_name":"Ada","last_name":"L","active":true,"created_at":"2024-03-01T10:20:30"}`)

	me, err := New(srv.URL).WithToken("t").Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), me.ID)
	assert.Equal(t, "Ada", me.FirstName)
	require.NotNil(t, me.CreatedAt)
	assert.Equal(t, 2024, me.CreatedAt.Year())
	assert.Equal(t, "Bearer t", (*seen)[0].Auth)
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{
		"2024-03-01T10:20:30Z",
		"2024-03-01T10:20:30.123456",
		"2024-03-01T10:20:30+02:00",
		"2024-03-01 10:20:30",
	} {
		_, err := ParseTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestParseTimeIn_NaiveUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	got, err := ParseTimeIn("2024-03-01T10:20:30", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 15, got.UTC().Hour())

	got, err = ParseTimeIn("2024-03-01T10:20:30Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, got.UTC().Hour())

	got, err = ParseTime("2024-03-01 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
}
