package fakeapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/agentconsole/pkg/cerr"
)

// resource is one collection of the API with the operations shared by
// agents and tools.
type resource struct {
	noun  string
	list  func(s *Server) *[]Object
	valid func(body Object) string
}

var (
	agents = resource{
		noun: "Agent",
		list: func(s *Server) *[]Object { return &s.agents },
		valid: func(body Object) string {
			if str(body, "name") == "" || str(body, "type") == "" {
				return "Please provide a name and type"
			}
			return ""
		},
	}
	tools = resource{
		noun: "Tool",
		list: func(s *Server) *[]Object { return &s.tools },
		valid: func(body Object) string {
			if str(body, "name") == "" || str(body, "endpoint") == "" {
				return "Please provide a name and endpoint"
			}
			return ""
		},
	}
)

func (s *Server) find(res resource, id string) (int, Object) {
	for i, o := range *res.list(s) {
		if o["_id"] == id {
			return i, o
		}
	}
	return -1, nil
}

func (s *Server) listAll(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		items := append([]Object{}, *res.list(s)...)
		ok(w, Object{"count": len(items), "data": items})
	}
}

func (s *Server) getOne(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, o := s.find(res, chi.URLParam(r, "id"))
		if o == nil {
			fail(w, r, cerr.NotFound, fmt.Sprintf("%s not found", res.noun))
			return
		}
		ok(w, Object{"data": o})
	}
}

func (s *Server) create(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			fail(w, r, cerr.InvalidArgument, err.Error())
			return
		}
		if msg := res.valid(body); msg != "" {
			fail(w, r, cerr.InvalidArgument, msg)
			return
		}
		delete(body, "_id")
		s.mu.Lock()
		defer s.mu.Unlock()
		id := s.insert(res.list(s), body)
		_, o := s.find(res, id)
		ok(w, Object{"data": o})
	}
}

func (s *Server) update(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decode(r)
		if err != nil {
			fail(w, r, cerr.InvalidArgument, err.Error())
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i, o := s.find(res, chi.URLParam(r, "id"))
		if o == nil {
			fail(w, r, cerr.NotFound, fmt.Sprintf("%s not found", res.noun))
			return
		}
		next := clone(o)
		for k, v := range body {
			if k == "_id" || k == "createdAt" {
				continue
			}
			next[k] = v
		}
		next["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		(*res.list(s))[i] = next
		ok(w, Object{"data": next})
	}
}

func (s *Server) remove(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i, o := s.find(res, chi.URLParam(r, "id"))
		if o == nil {
			fail(w, r, cerr.NotFound, fmt.Sprintf("%s not found", res.noun))
			return
		}
		list := res.list(s)
		*list = append((*list)[:i:i], (*list)[i+1:]...)
		ok(w, Object{"data": Object{}})
	}
}

func (s *Server) setActive(res resource, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i, o := s.find(res, chi.URLParam(r, "id"))
		if o == nil {
			fail(w, r, cerr.NotFound, fmt.Sprintf("%s not found", res.noun))
			return
		}
		next := clone(o)
		next["isActive"] = active
		(*res.list(s))[i] = next
		verb := "registered"
		if !active {
			verb = "deregistered"
		}
		s.appendLog(Object{
			"type":    "system",
			"message": fmt.Sprintf("%s %s %s", res.noun, str(next, "name"), verb),
		})
		ok(w, Object{"data": next})
	}
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request)  { s.listAll(agents)(w, r) }
func (s *Server) getAgent(w http.ResponseWriter, r *http.Request)    { s.getOne(agents)(w, r) }
func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) { s.create(agents)(w, r) }
func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) { s.update(agents)(w, r) }
func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) { s.remove(agents)(w, r) }
func (s *Server) listTools(w http.ResponseWriter, r *http.Request)   { s.listAll(tools)(w, r) }
func (s *Server) getTool(w http.ResponseWriter, r *http.Request)     { s.getOne(tools)(w, r) }
func (s *Server) createTool(w http.ResponseWriter, r *http.Request)  { s.create(tools)(w, r) }
func (s *Server) updateTool(w http.ResponseWriter, r *http.Request)  { s.update(tools)(w, r) }
func (s *Server) deleteTool(w http.ResponseWriter, r *http.Request)  { s.remove(tools)(w, r) }

func (s *Server) setAgentActive(active bool) http.HandlerFunc { return s.setActive(agents, active) }
func (s *Server) setToolActive(active bool) http.HandlerFunc  { return s.setActive(tools, active) }

func (s *Server) queryAgent(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, a := s.find(agents, chi.URLParam(r, "id"))
	if a == nil {
		fail(w, r, cerr.NotFound, "Agent not found")
		return
	}
	if active, _ := a["isActive"].(bool); !active {
		fail(w, r, cerr.InvalidArgument, "Agent is not active")
		return
	}
	prompt := str(body, "prompt")
	if prompt == "" {
		fail(w, r, cerr.InvalidArgument, "Please provide a prompt")
		return
	}
	s.appendLog(Object{
		"type":      "query",
		"message":   prompt,
		"agentId":   a["_id"],
		"agentName": a["name"],
	})
	ok(w, Object{"data": Object{"response": fmt.Sprintf("%s received: %s", str(a, "name"), prompt)}})
}

func (s *Server) toolTypes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	types := s.ToolTypes
	s.mu.Unlock()
	if types == nil {
		fail(w, r, cerr.NotFound, "Not found")
		return
	}
	ok(w, Object{"data": types})
}

func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, t := s.find(tools, chi.URLParam(r, "id"))
	if t == nil {
		fail(w, r, cerr.NotFound, "Tool not found")
		return
	}
	if active, _ := t["isActive"].(bool); !active {
		fail(w, r, cerr.InvalidArgument, "Tool is not active")
		return
	}
	action := str(body, "action")
	s.appendLog(Object{
		"type":     "action",
		"message":  fmt.Sprintf("Executed %s", action),
		"toolId":   t["_id"],
		"toolName": t["name"],
	})
	ok(w, Object{"data": Object{
		"toolId": t["_id"],
		"action": action,
		"params": body["params"],
		"status": "ok",
	}})
}
