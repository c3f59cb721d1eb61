package repositoryimpl

import (
	"context"
	"errors"

	"github.com/kazz187/agentconsole/internal/apiclient"
	"github.com/kazz187/agentconsole/internal/auth"
)

const authPath = "/api/auth"

var (
	errNoUser  = errors.New("response carried no user")
	errNoToken = errors.New("response carried no token")
)

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(c *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: c}
}

func (r *HTTPRepository) Me(ctx context.Context) (*auth.User, error) {
	env, err := r.client.Get(ctx, authPath+"/me", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

func (r *HTTPRepository) Register(ctx context.Context, c auth.Credentials) (string, error) {
	env, err := r.client.Post(ctx, authPath+"/register", c)
	if err != nil {
		return "", err
	}
	return token(env)
}

func (r *HTTPRepository) Login(ctx context.Context, c auth.Credentials) (string, error) {
	env, err := r.client.Post(ctx, authPath+"/login", auth.Credentials{Email: c.Email, Password: c.Password})
	if err != nil {
		return "", err
	}
	return token(env)
}

func (r *HTTPRepository) UpdateDetails(ctx context.Context, p auth.Profile) (*auth.User, error) {
	env, err := r.client.Put(ctx, authPath+"/updatedetails", p)
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

func (r *HTTPRepository) UpdatePassword(ctx context.Context, p auth.PasswordChange) (string, error) {
	env, err := r.client.Put(ctx, authPath+"/updatepassword", p)
	if err != nil {
		return "", err
	}
	return token(env)
}

func token(env *apiclient.Envelope) (string, error) {
	if env.Token == "" {
		return "", errNoToken
	}
	return env.Token, nil
}

func decodeUser(env *apiclient.Envelope) (*auth.User, error) {
	u, err := apiclient.Decode[*auth.User](env)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNoUser
	}
	return u, nil
}
