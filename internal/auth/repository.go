package auth

import "context"

// Repository is the backend's identity API. Register, Login and
// UpdatePassword return the token the backend issued.
type Repository interface {
	Me(ctx context.Context) (*User, error)
	Register(ctx context.Context, c Credentials) (string, error)
	Login(ctx context.Context, c Credentials) (string, error)
	UpdateDetails(ctx context.Context, p Profile) (*User, error)
	UpdatePassword(ctx context.Context, p PasswordChange) (string, error)
}

// TokenPersister keeps the token between runs.
type TokenPersister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
