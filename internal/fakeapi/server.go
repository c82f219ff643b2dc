// ABOUTME: Stub implementation of the test-management REST API for development and tests
// ABOUTME: gorilla/mux routes over the record store, guarded by JWT bearer auth

package fakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/auth"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/store"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// dummyHash keeps login timing equal for unknown emails.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Server serves the REST contract the console and CLI talk to.
type Server struct {
	store    store.Store
	issuer   *auth.JWTIssuer
	registry *entity.Registry
	logger   *slog.Logger
	router   *mux.Router
}

// New creates a server over s. Collections are the resources of registry.
func New(s store.Store, issuer *auth.JWTIssuer, registry *entity.Registry) *Server {
	srv := &Server{
		store:    s,
		issuer:   issuer,
		registry: registry,
		logger:   slog.Default().With("component", "fakeapi"),
	}
	srv.router = srv.routes()
	return srv
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix(BasePath).Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/testers/register", s.handleRegister).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(mux.MiddlewareFunc(auth.HTTPAuthMiddleware(s.issuer)))
	protected.HandleFunc("/testers/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/executions/run/{id:[0-9]+}", s.handleExecutionsByRun).Methods(http.MethodGet)
	protected.HandleFunc("/{collection}", s.handleList).Methods(http.MethodGet)
	protected.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/{collection}/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	protected.HandleFunc("/{collection}/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPatch)
	protected.HandleFunc("/{collection}/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// testerJSON is the public view of a tester.
type testerJSON struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func publicTester(t *store.Tester) testerJSON {
	return testerJSON{
		ID:        t.ID,
		Email:     t.Email,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Active:    t.Active,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tester, err := s.store.GetTesterByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to get tester", "error", err)
			writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tester.PasswordHash), []byte(req.Password)); err != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !tester.Active {
		writeDetail(w, http.StatusBadRequest, "Inactive tester")
		return
	}

	token, err := s.issuer.Generate(auth.Identity{
		TesterID:  tester.ID,
		Email:     tester.Email,
		FirstName: tester.FirstName,
		LastName:  tester.LastName,
	})
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.logger.Info("tester logged in", "tester_id", tester.ID)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeDetail(w, http.StatusUnprocessableEntity, "A valid email is required")
		return
	}
	if req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Password is required")
		return
	}

	tester, err := RegisterTester(r.Context(), s.store, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		s.logger.Error("failed to register tester", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, publicTester(tester))
}

// RegisterTester hashes password and stores a new active tester.
func RegisterTester(ctx context.Context, s store.Store, email, password, firstName, lastName string) (*store.Tester, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	tester := &store.Tester{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Active:       true,
	}
	if err := s.CreateTester(ctx, tester); err != nil {
		return nil, err
	}
	return tester, nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	tester, err := s.store.GetTester(r.Context(), ident.TesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Tester not found")
			return
		}
		s.logger.Error("failed to get tester", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, publicTester(tester))
}

// collection resolves the {collection} path variable, writing a 404 when
// it names no entity.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (entity.Descriptor, bool) {
	d, err := s.registry.ByResource(mux.Vars(r)["collection"])
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return entity.Descriptor{}, false
	}
	return d, true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	d, ok := s.collection(w, r)
	if !ok {
		return
	}
	recs, err := s.store.ListRecords(r.Context(), d.Resource)
	if err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleExecutionsByRun(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListRecordsWhere(r.Context(), "executions", "run_id", pathID(r))
	if err != nil {
		s.storeError(w, err, "Execution")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetRecord(r.Context(), d.Resource, pathID(r))
	if err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.collection(w, r)
	if !ok {
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	delete(fields, "id")

	if err := s.fillServerFields(r.Context(), d, fields); err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	if err := validate(d, fields, true); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec, err := s.store.CreateRecord(r.Context(), d.Resource, fields)
	if err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	s.logger.Debug("record created", "collection", d.Resource)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.collection(w, r)
	if !ok {
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	delete(fields, "id")
	if err := validate(d, fields, false); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec, err := s.store.UpdateRecord(r.Context(), d.Resource, pathID(r), fields)
	if err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := s.store.DeleteRecord(r.Context(), d.Resource, pathID(r))
	if err != nil {
		s.storeError(w, err, d.Singular)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// fillServerFields sets the fields the server owns on new records.
func (s *Server) fillServerFields(ctx context.Context, d entity.Descriptor, fields map[string]any) error {
	ident := auth.FromContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339)

	switch d.Resource {
	case "test_case_versions":
		if _, ok := fields["version"]; !ok {
			next, err := s.nextVersion(ctx, fields["test_case_id"])
			if err != nil {
				return err
			}
			fields["version"] = next
		}
		fields["created_by"] = ident.TesterID
		fields["created_at"] = now
	case "attachments":
		fields["uploaded_by"] = ident.TesterID
		fields["uploaded_at"] = now
	case "executions":
		if _, ok := fields["status_id"]; ok {
			fields["executed_by"] = ident.TesterID
			fields["executed_at"] = now
		}
	}
	return nil
}

// nextVersion is one past the highest version of a test case.
func (s *Server) nextVersion(ctx context.Context, testCaseID any) (int64, error) {
	id, ok := asInt(testCaseID)
	if !ok {
		return 1, nil
	}
	versions, err := s.store.ListRecordsWhere(ctx, "test_case_versions", "test_case_id", id)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, v := range versions {
		var rec struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(v, &rec); err == nil && rec.Version > max {
			max = rec.Version
		}
	}
	return max + 1, nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case float64:
		return int64(n), n == float64(int64(n))
	}
	return 0, false
}

func (s *Server) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, what+" not found")
		return
	}
	s.logger.Error("store operation failed", "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
}

// validate checks fields against the entity's record type. Unknown fields
// and mistyped values are rejected. Non-optional fields must be present on
// create and may never be set to null.
func validate(d entity.Descriptor, fields map[string]any, create bool) error {
	typ := d.Schema()
	if typ == nil {
		return nil
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(reflect.New(typ).Interface()); err != nil {
		return fmt.Errorf("invalid %s: %s", d.Singular, strings.TrimPrefix(err.Error(), "json: "))
	}

	for _, name := range requiredFields(typ) {
		v, ok := fields[name]
		switch {
		case create && (!ok || v == nil):
			return fmt.Errorf("field %q is required", name)
		case ok && v == nil:
			return fmt.Errorf("field %q cannot be null", name)
		}
	}
	return nil
}

// requiredFields lists JSON fields of typ that are neither pointers, bools,
// nor tagged omitempty. The id is excluded.
func requiredFields(typ reflect.Type) []string {
	var out []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" || name == "id" {
			continue
		}
		if strings.Contains(opts, "omitempty") {
			continue
		}
		if f.Type.Kind() == reflect.Pointer || f.Type.Kind() == reflect.Bool {
			continue
		}
		out = append(out, name)
	}
	return out
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// decodeFields reads a JSON object body keeping numbers exact.
func decodeFields(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if fields == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
