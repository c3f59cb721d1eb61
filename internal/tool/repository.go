package tool

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Tool, error)
	Get(ctx context.Context, id string) (*Tool, error)
	Types(ctx context.Context) ([]Type, error)
	Create(ctx context.Context, t *Tool) (*Tool, error)
	Update(ctx context.Context, t *Tool) (*Tool, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, id string) (*Tool, error)
	Deregister(ctx context.Context, id string) (*Tool, error)
	Execute(ctx context.Context, id, action string, params map[string]any) (ExecuteResult, error)
}
