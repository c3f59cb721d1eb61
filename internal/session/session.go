// Package session holds the bearer token shared by every API call and keeps
// it in durable storage between runs.
package session

import (
	"net/http"
	"sync"
)

const authorizationHeader = "Authorization"

// Session is the process-wide authentication context. The zero value is an
// anonymous session.
type Session struct {
	mu    sync.RWMutex
	token string
}

func New(token string) *Session {
	return &Session{token: token}
}

// SetToken replaces the token. Setting the same token twice is a no-op.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// AuthorizationValue is the header value to send, or "" when anonymous.
func (s *Session) AuthorizationValue() string {
	token := s.Token()
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// Apply sets or removes the Authorization header on req to match the current
// token.
func (s *Session) Apply(req *http.Request) {
	if v := s.AuthorizationValue(); v != "" {
		req.Header.Set(authorizationHeader, v)
		return
	}
	req.Header.Del(authorizationHeader)
}
