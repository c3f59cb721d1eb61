package clog

import (
	"context"
	"maps"
	"sync"
)

type scope struct {
	mu    sync.RWMutex
	attrs map[string]any
}

type scopeKey struct{}

// ContextWithSlog returns a context carrying a mutable attribute scope. Log
// records emitted with the returned context (or a child of it) pick up every
// attribute added to the scope, including ones added after the call.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &scope{attrs: make(map[string]any)})
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

func AddAttribute(ctx context.Context, key string, value any) {
	s := scopeFrom(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	s := scopeFrom(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merge(s.attrs, attributes)
}

func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	s := scopeFrom(ctx)
	if s == nil {
		return zero
	}
	s.mu.RLock()
	v, ok := s.attrs[key]
	s.mu.RUnlock()
	if !ok {
		return zero
	}
	typed, ok := v.(T)
	if !ok {
		return zero
	}
	return typed
}

func GetAttributes(ctx context.Context) map[string]any {
	s := scopeFrom(ctx)
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.attrs)
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		nested, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if existing, ok := dst[k].(map[string]any); ok {
			merge(existing, nested)
			continue
		}
		dst[k] = nested
	}
}

const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
)

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}
