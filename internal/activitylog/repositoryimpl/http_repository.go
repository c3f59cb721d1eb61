package repositoryimpl

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kazz187/agentconsole/internal/activitylog"
	"github.com/kazz187/agentconsole/internal/apiclient"
)

const logsPath = "/api/logs"

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(c *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: c}
}

func path(scope activitylog.Scope) (string, error) {
	switch scope.Kind {
	case activitylog.ScopeAgent:
		if scope.ID == "" {
			return "", apiclient.ErrEmptyID
		}
		return fmt.Sprintf("%s/agent/%s", logsPath, apiclient.PathID(scope.ID)), nil
	case activitylog.ScopeTool:
		if scope.ID == "" {
			return "", apiclient.ErrEmptyID
		}
		return fmt.Sprintf("%s/tool/%s", logsPath, apiclient.PathID(scope.ID)), nil
	}
	return logsPath, nil
}

func (r *HTTPRepository) List(ctx context.Context, scope activitylog.Scope, page, limit int) (*activitylog.Result, error) {
	p, err := path(scope)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	env, err := r.client.Get(ctx, p, query)
	if err != nil {
		return nil, err
	}
	entries, err := apiclient.Decode[[]*activitylog.Entry](env)
	if err != nil {
		return nil, err
	}
	res := &activitylog.Result{Entries: entries, Count: env.Count}
	if env.Pagination != nil {
		res.Pagination = &activitylog.Pagination{
			Page:       env.Pagination.Page,
			Limit:      env.Pagination.Limit,
			Total:      env.Pagination.Total,
			TotalPages: env.Pagination.TotalPages,
		}
	}
	return res, nil
}
