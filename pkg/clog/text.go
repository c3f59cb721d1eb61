package clog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
)

// TextHandler writes one coloured headline per record, with the API call
// columns first, followed by the remaining attributes one per line.
type TextHandler struct {
	cfg   TextHandlerConfig
	attrs []slog.Attr
	group string
	mu    *sync.Mutex
	w     io.Writer
}

type TextHandlerConfig struct {
	Color bool
	Level slog.Leveler
}

type TextHandlerOption func(*TextHandlerConfig)

func WithColor(c bool) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Color = c
	}
}

func WithLevel(level slog.Leveler) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Level = level
	}
}

var headlineColumns = []string{"method", "path", "status", "duration"}

func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	cfg := TextHandlerConfig{Color: true, Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TextHandler{cfg: cfg, mu: &sync.Mutex{}, w: w}
}

func (h *TextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.cfg.Level.Level()
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, h.qualify(a))
	}
	return &nh
}

func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "."
	}
	nh.group += name
	return &nh
}

func (h *TextHandler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" {
		return a
	}
	return slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
}

func levelColor(l slog.Level) *color.Color {
	switch {
	case l < slog.LevelInfo:
		return color.New(color.FgCyan)
	case l < slog.LevelWarn:
		return color.New(color.FgBlue)
	case l < slog.LevelError:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := map[string]slog.Value{}
	for _, a := range h.attrs {
		kv[a.Key] = a.Value
	}
	record.Attrs(func(a slog.Attr) bool {
		a = h.qualify(a)
		kv[a.Key] = a.Value
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	paint := func(c *color.Color) *color.Color {
		if !h.cfg.Color {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c
	}
	plain := paint(color.New())

	if _, err := plain.Fprintf(h.w, "%s ", record.Time.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("can't write time: %w", err)
	}
	if _, err := paint(levelColor(record.Level)).Fprintf(h.w, "%-5s ", record.Level); err != nil {
		return fmt.Errorf("can't write level: %w", err)
	}
	for _, key := range headlineColumns {
		v, ok := kv[key]
		if !ok {
			continue
		}
		delete(kv, key)
		if _, err := plain.Fprintf(h.w, "%s ", v); err != nil {
			return fmt.Errorf("can't write %s: %w", key, err)
		}
	}
	if _, err := paint(color.New(color.FgGreen)).Fprint(h.w, record.Message); err != nil {
		return fmt.Errorf("can't write message: %w", err)
	}
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		if _, err := paint(color.New(color.FgRed)).Fprintf(h.w, " %s", e); err != nil {
			return fmt.Errorf("can't write err: %w", err)
		}
	}
	if _, err := fmt.Fprintln(h.w); err != nil {
		return err
	}

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := plain.Fprintf(h.w, "    %s=%s\n", k, kv[k]); err != nil {
			return fmt.Errorf("can't write %s: %w", k, err)
		}
	}
	return nil
}
