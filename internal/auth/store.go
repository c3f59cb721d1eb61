package auth

import (
	"context"
	"log/slog"

	"github.com/kazz187/agentconsole/internal/flux"
	"github.com/kazz187/agentconsole/internal/session"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

// Store owns the operator's identity and the bearer token. Every token change
// goes to the shared session before the state transition is dispatched, so a
// subscriber reacting to the new state already sends the new header.
//
// None of the methods return backend failures; they land in State.Error.
type Store struct {
	repo    Repository
	session *session.Session
	tokens  TokenPersister
	state   *flux.Store[State, Action]
}

type Option func(*Store)

// WithTokenPersister keeps issued tokens between runs.
func WithTokenPersister(p TokenPersister) Option {
	return func(s *Store) {
		s.tokens = p
	}
}

// NewStore starts from the token the session already carries.
func NewStore(repo Repository, sess *session.Session, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		session: sess,
		state:   flux.New(InitialState(sess.Token()), reduce),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) State() State {
	return s.state.State()
}

func (s *Store) Subscribe(bufSize int) (string, <-chan State) {
	return s.state.Subscribe(bufSize)
}

func (s *Store) Unsubscribe(id string) {
	s.state.Unsubscribe(id)
}

func (s *Store) persist(ctx context.Context, token string) {
	if s.tokens == nil {
		return
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		slog.WarnContext(ctx, "failed to persist session token", "error", err)
	}
}

func (s *Store) forget(ctx context.Context) {
	if s.tokens == nil {
		return
	}
	if err := s.tokens.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "failed to remove session token", "error", err)
	}
}

func (s *Store) accept(ctx context.Context, token string) {
	s.session.SetToken(token)
	s.persist(ctx, token)
	s.state.Dispatch(tokenIssued{token: token})
}

func (s *Store) fail(ctx context.Context, err error, fallback string) {
	slog.WarnContext(ctx, "auth request failed", "op", fallback, "error", err)
	s.state.Dispatch(failed{msg: cerr.Message(err, fallback)})
}

// LoadUser asks the backend for the identity behind the current token.
// A failed check leaves the store anonymous. The durable token is only
// removed when the backend rejected it, so an unreachable backend does not
// log the operator out of the next run.
func (s *Store) LoadUser(ctx context.Context) {
	if token := s.State().Token; token != "" {
		s.session.SetToken(token)
	}
	u, err := s.repo.Me(ctx)
	if err != nil {
		slog.InfoContext(ctx, "identity check failed", "error", err)
		s.session.SetToken("")
		if cerr.IsCode(err, cerr.Unauthenticated) || cerr.IsCode(err, cerr.NotFound) {
			s.forget(ctx)
		}
		s.state.Dispatch(checkFailed{})
		return
	}
	s.state.Dispatch(userLoaded{user: u})
}

func (s *Store) Register(ctx context.Context, c Credentials) {
	s.state.Dispatch(loadingStarted{})
	token, err := s.repo.Register(ctx, c)
	if err != nil {
		s.fail(ctx, err, "Registration failed")
		return
	}
	s.accept(ctx, token)
	s.LoadUser(ctx)
}

func (s *Store) Login(ctx context.Context, c Credentials) {
	s.state.Dispatch(loadingStarted{})
	token, err := s.repo.Login(ctx, c)
	if err != nil {
		s.fail(ctx, err, "Login failed")
		return
	}
	s.accept(ctx, token)
	s.LoadUser(ctx)
}

func (s *Store) UpdateUser(ctx context.Context, p Profile) {
	s.state.Dispatch(loadingStarted{})
	u, err := s.repo.UpdateDetails(ctx, p)
	if err != nil {
		s.fail(ctx, err, "Update failed")
		return
	}
	s.state.Dispatch(userUpdated{user: u})
}

// UpdatePassword changes the password and adopts the token the backend
// issues for it.
func (s *Store) UpdatePassword(ctx context.Context, p PasswordChange) {
	s.state.Dispatch(loadingStarted{})
	token, err := s.repo.UpdatePassword(ctx, p)
	if err != nil {
		s.fail(ctx, err, "Password update failed")
		return
	}
	s.accept(ctx, token)
	s.LoadUser(ctx)
}

// Logout forgets the token locally. The backend is not told.
func (s *Store) Logout(ctx context.Context) {
	s.session.SetToken("")
	s.forget(ctx)
	s.state.Dispatch(loggedOut{})
}

// AdoptToken takes over a token written by another process. An empty token
// logs out. It reports whether the token differed from the current one; the
// caller is expected to LoadUser afterwards.
func (s *Store) AdoptToken(token string) bool {
	if token == s.State().Token {
		return false
	}
	s.session.SetToken(token)
	if token == "" {
		s.state.Dispatch(loggedOut{})
		return true
	}
	s.state.Dispatch(tokenIssued{token: token})
	return true
}

func (s *Store) ClearErrors() {
	s.state.Dispatch(errorsCleared{})
}
