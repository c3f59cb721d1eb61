package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/kazz187/agentconsole/internal/apiclient"
	"github.com/kazz187/agentconsole/internal/tool"
)

const toolsPath = "/api/tools"

var errNoTool = errors.New("response carried no tool")

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(c *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: c}
}

func path(id string, action string) string {
	p := fmt.Sprintf("%s/%s", toolsPath, apiclient.PathID(id))
	if action != "" {
		p += "/" + action
	}
	return p
}

func (r *HTTPRepository) List(ctx context.Context) ([]*tool.Tool, error) {
	env, err := r.client.Get(ctx, toolsPath, nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]*tool.Tool](env)
}

func (r *HTTPRepository) Get(ctx context.Context, id string) (*tool.Tool, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Get(ctx, path(id, ""), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Types(ctx context.Context) ([]tool.Type, error) {
	env, err := r.client.Get(ctx, toolsPath+"/types", nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]tool.Type](env)
}

func (r *HTTPRepository) Create(ctx context.Context, t *tool.Tool) (*tool.Tool, error) {
	env, err := r.client.Post(ctx, toolsPath, t)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Update(ctx context.Context, t *tool.Tool) (*tool.Tool, error) {
	if t.ID == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Put(ctx, path(t.ID, ""), t)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

func (r *HTTPRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apiclient.ErrEmptyID
	}
	_, err := r.client.Delete(ctx, path(id, ""))
	return err
}

func (r *HTTPRepository) Register(ctx context.Context, id string) (*tool.Tool, error) {
	return r.post(ctx, id, "register")
}

func (r *HTTPRepository) Deregister(ctx context.Context, id string) (*tool.Tool, error) {
	return r.post(ctx, id, "deregister")
}

func (r *HTTPRepository) post(ctx context.Context, id, action string) (*tool.Tool, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	env, err := r.client.Post(ctx, path(id, action), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne(env)
}

type executeRequest struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

func (r *HTTPRepository) Execute(ctx context.Context, id, action string, params map[string]any) (tool.ExecuteResult, error) {
	if id == "" {
		return nil, apiclient.ErrEmptyID
	}
	if params == nil {
		params = map[string]any{}
	}
	env, err := r.client.Post(ctx, path(id, "execute"), executeRequest{Action: action, Params: params})
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[tool.ExecuteResult](env)
}

func decodeOne(env *apiclient.Envelope) (*tool.Tool, error) {
	t, err := apiclient.Decode[*tool.Tool](env)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errNoTool
	}
	return t, nil
}
