package fakeapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/kazz187/agentconsole/pkg/cerr"
)

func contextWithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userKey{}, uid)
}

func (s *Server) currentUser(r *http.Request) *user {
	uid, _ := r.Context().Value(userKey{}).(string)
	for _, u := range s.users {
		if u.ID == uid {
			return u
		}
	}
	return nil
}

func userObject(u *user) Object {
	return Object{"_id": u.ID, "name": u.Name, "email": u.Email}
}

func str(o Object, key string) string {
	v, _ := o[key].(string)
	return v
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	email := strings.ToLower(str(body, "email"))
	if email == "" || str(body, "password") == "" || str(body, "name") == "" {
		fail(w, r, cerr.InvalidArgument, "Please provide name, email and password")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		fail(w, r, cerr.InvalidArgument, "User already exists")
		return
	}
	u := &user{ID: newID(), Name: str(body, "name"), Email: email, Password: str(body, "password")}
	s.users[email] = u
	ok(w, Object{"token": s.issue(u)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[strings.ToLower(str(body, "email"))]
	if !exists || u.Password != str(body, "password") {
		fail(w, r, cerr.Unauthenticated, "Invalid credentials")
		return
	}
	ok(w, Object{"token": s.issue(u)})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		fail(w, r, cerr.NotFound, "User not found")
		return
	}
	ok(w, Object{"data": userObject(u)})
}

func (s *Server) updateDetails(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		fail(w, r, cerr.NotFound, "User not found")
		return
	}
	if name := str(body, "name"); name != "" {
		u.Name = name
	}
	if email := strings.ToLower(str(body, "email")); email != "" && email != u.Email {
		if _, taken := s.users[email]; taken {
			fail(w, r, cerr.InvalidArgument, "Email already in use")
			return
		}
		delete(s.users, u.Email)
		u.Email = email
		s.users[email] = u
	}
	ok(w, Object{"data": userObject(u)})
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	body, err := decode(r)
	if err != nil {
		fail(w, r, cerr.InvalidArgument, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		fail(w, r, cerr.NotFound, "User not found")
		return
	}
	if u.Password != str(body, "currentPassword") {
		fail(w, r, cerr.Unauthenticated, "Password is incorrect")
		return
	}
	u.Password = str(body, "newPassword")
	ok(w, Object{"token": s.issue(u)})
}
