package activitylog

import "context"

type Repository interface {
	List(ctx context.Context, scope Scope, page, limit int) (*Result, error)
}
