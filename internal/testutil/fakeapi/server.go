// Package fakeapi is an in-memory implementation of the console backend's
// REST contract for tests.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/agentconsole/pkg/cerr"
	"github.com/kazz187/agentconsole/pkg/clog"
)

type Object = map[string]any

type user struct {
	ID       string
	Name     string
	Email    string
	Password string
}

type failure struct {
	status int
	msg    string
}

type Request struct {
	Method        string
	Path          string
	Authorization string
}

const (
	SeedEmail    = "admin@example.com"
	SeedPassword = "secret123"
)

type Server struct {
	mu sync.Mutex

	users  map[string]*user // by email
	tokens map[string]string // token -> user id

	agents []Object
	tools  []Object
	logs   []Object

	// ToolTypes is served by /api/tools/types; nil answers 404.
	ToolTypes []string
	// OmitPagination drops the pagination block from log responses, leaving
	// only count.
	OmitPagination bool
	// Delay is applied to every request before it is handled.
	Delay time.Duration

	failures map[string]failure
	requests []Request
}

func New() *Server {
	s := &Server{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
	}
	s.users[SeedEmail] = &user{ID: newID(), Name: "Admin", Email: SeedEmail, Password: SeedPassword}
	return s
}

// Start serves s on a test server that is closed with the test.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func newID() string {
	return strings.ToLower(ulid.Make().String())
}

// Token issues a valid token for the seeded user.
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(s.users[SeedEmail])
}

func (s *Server) issue(u *user) string {
	token := "tok-" + newID()
	s.tokens[token] = u.ID
	return token
}

// FailNext makes the next request to method and path fail with status. An
// empty msg produces an error body without a message.
func (s *Server) FailNext(method, path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, msg: msg}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) AddAgent(a Object) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(&s.agents, a)
}

func (s *Server) AddTool(t Object) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(&s.tools, t)
}

// AddLog appends an activity log entry; entries are served newest first.
func (s *Server) AddLog(l Object) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLog(l)
}

func (s *Server) insert(list *[]Object, o Object) string {
	cp := clone(o)
	if _, ok := cp["_id"]; !ok {
		cp["_id"] = newID()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	cp["createdAt"] = now
	cp["updatedAt"] = now
	*list = append([]Object{cp}, *list...)
	return cp["_id"].(string)
}

func (s *Server) appendLog(l Object) string {
	cp := clone(l)
	if _, ok := cp["_id"]; !ok {
		cp["_id"] = newID()
	}
	if _, ok := cp["timestamp"]; !ok {
		cp["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.logs = append([]Object{cp}, s.logs...)
	return cp["_id"].(string)
}

func clone(o Object) Object {
	cp := make(Object, len(o))
	for k, v := range o {
		cp[k] = v
	}
	return cp
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(clog.SlogChiMiddleware())
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/me", s.me)
			r.Put("/auth/updatedetails", s.updateDetails)
			r.Put("/auth/updatepassword", s.updatePassword)

			r.Get("/agents", s.listAgents)
			r.Post("/agents", s.createAgent)
			r.Get("/agents/{id}", s.getAgent)
			r.Put("/agents/{id}", s.updateAgent)
			r.Delete("/agents/{id}", s.deleteAgent)
			r.Post("/agents/{id}/register", s.setAgentActive(true))
			r.Post("/agents/{id}/deregister", s.setAgentActive(false))
			r.Post("/agents/{id}/query", s.queryAgent)

			r.Get("/tools", s.listTools)
			r.Get("/tools/types", s.toolTypes)
			r.Post("/tools", s.createTool)
			r.Get("/tools/{id}", s.getTool)
			r.Put("/tools/{id}", s.updateTool)
			r.Delete("/tools/{id}", s.deleteTool)
			r.Post("/tools/{id}/register", s.setToolActive(true))
			r.Post("/tools/{id}/deregister", s.setToolActive(false))
			r.Post("/tools/{id}/execute", s.executeTool)

			r.Get("/logs", s.listLogs(nil))
			r.Get("/logs/agent/{id}", s.listLogs(func(l Object, id string) bool { return l["agentId"] == id }))
			r.Get("/logs/tool/{id}", s.listLogs(func(l Object, id string) bool { return l["toolId"] == id }))
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Delay > 0 {
			select {
			case <-time.After(s.Delay):
			case <-r.Context().Done():
				return
			}
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		})
		key := r.Method + " " + r.URL.Path
		f, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if fail {
			writeJSON(w, f.status, Object{"success": false, "message": f.msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		uid, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			fail(w, r, cerr.Unauthenticated, "Not authorized to access this route")
			return
		}
		clog.AddAttribute(r.Context(), "user_id", uid)
		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), uid)))
	})
}

func fail(w http.ResponseWriter, r *http.Request, code cerr.Code, msg string) {
	cerr.WriteJSONError(r.Context(), w, cerr.NewError(code, msg, nil))
}

func writeJSON(w http.ResponseWriter, status int, body Object) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, body Object) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func decode(r *http.Request) (Object, error) {
	var body Object
	if r.Body == nil || r.ContentLength == 0 {
		return Object{}, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if body == nil {
		body = Object{}
	}
	return body, nil
}
