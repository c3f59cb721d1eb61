package clog

import (
	"net/http"
	"time"
)

// Transport logs every round trip made through it. Each request gets its own
// attribute scope seeded from the caller's scope.
type Transport struct {
	Base http.RoundTripper
}

func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	parent := GetAttributes(req.Context())
	ctx := ContextWithSlog(req.Context())
	AddAttributes(ctx, parent)
	AddAttributes(ctx, map[string]any{
		"method": req.Method,
		"path":   req.URL.RequestURI(),
	})

	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	AddAttribute(ctx, "duration", time.Since(start).Round(time.Millisecond))
	if err != nil {
		AddError(ctx, err)
		logAt(ctx, HTTPStatusToLevel(0), "api request failed")
		return nil, err
	}
	AddAttribute(ctx, "status", resp.StatusCode)
	logAt(ctx, HTTPStatusToLevel(resp.StatusCode), http.StatusText(resp.StatusCode))
	return resp, nil
}
