package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/kazz187/agentconsole/internal/agent"
	"github.com/kazz187/agentconsole/internal/apiclient"
)

const agentsPath = "/api/agents"

var errNoAgent = errors.New("response carried no agent")

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(c *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: c}
}

func path(id string, action ...string) string {
	p := fmt.Sprintf("%s/%s", agentsPath, apiclient.PathID(id))
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func (r *HTTPRepository) List(ctx context.Context) ([]*agent.Agent, error) {
	env, err := r.client.Get(ctx, agentsPath, nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]*agent.Agent](env)
}

func (r *HTTPRepository) Get(ctx context.Context, id string) (*agent.Agent, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Get(ctx, path(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Create(ctx context.Context, a *agent.Agent) (*agent.Agent, error) {
	env, err := r.client.Post(ctx, agentsPath, a)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Update(ctx context.Context, a *agent.Agent) (*agent.Agent, error) {
	if a.ID == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Put(ctx, path(a.ID), a)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apiclient.ErrEmptyID
	}
	_, err := r.client.Delete(ctx, path(id))
	return err
}

func (r *HTTPRepository) Register(ctx context.Context, id string) (*agent.Agent, error) {
	return r.lifecycle(ctx, id, "register")
}

func (r *HTTPRepository) Deregister(ctx context.Context, id string) (*agent.Agent, error) {
	return r.lifecycle(ctx, id, "deregister")
}

func (r *HTTPRepository) lifecycle(ctx context.Context, id, action string) (*agent.Agent, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Post(ctx, path(id, action), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

func (r *HTTPRepository) Query(ctx context.Context, id, prompt string) (*agent.QueryResult, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Post(ctx, path(id, "query"), queryRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	res, err := apiclient.Decode[agent.QueryResult](env)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func decodeOne(env *apiclient.Envelope) (*agent.Agent, error) {
	a, err := apiclient.Decode[*agent.Agent](env)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errNoAgent
	}
	return a, nil
}
