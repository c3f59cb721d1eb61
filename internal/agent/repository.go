package agent

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Agent, error)
	Get(ctx context.Context, id string) (*Agent, error)
	Create(ctx context.Context, a *Agent) (*Agent, error)
	Update(ctx context.Context, a *Agent) (*Agent, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, id string) (*Agent, error)
	Deregister(ctx context.Context, id string) (*Agent, error)
	Query(ctx context.Context, id, prompt string) (*QueryResult, error)
}

// Querier sends a prompt to an agent. *Store satisfies it.
type Querier interface {
	QueryAgent(ctx context.Context, id, prompt string) (*QueryResult, error)
}
