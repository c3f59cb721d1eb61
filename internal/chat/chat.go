// Package chat runs the turn-taking protocol of the agent console: one
// prompt in flight at a time, the reply appended after a short delay.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/agentconsole/internal/agent"
	"github.com/kazz187/agentconsole/internal/flux"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

const DefaultReplyDelay = 500 * time.Millisecond

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrBusy        = errors.New("a reply is still pending")
	ErrInactive    = errors.New("agent is not active")
)

type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

type State struct {
	Messages []Message
	// Pending is set while a reply is outstanding; input stays disabled.
	Pending bool
}

type Action interface {
	isChatAction()
}

type (
	submitted struct{ msg Message }
	replied   struct{ msg Message }
	cleared   struct{}
)

func (submitted) isChatAction() {}
func (replied) isChatAction()   {}
func (cleared) isChatAction()   {}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case submitted:
		s.Messages = append(s.Messages[:len(s.Messages):len(s.Messages)], a.msg)
		s.Pending = true
	case replied:
		s.Messages = append(s.Messages[:len(s.Messages):len(s.Messages)], a.msg)
		s.Pending = false
	case cleared:
		s.Messages = nil
	}
	return s
}

type Conversation struct {
	mu      sync.RWMutex
	agent   *agent.Agent
	querier agent.Querier
	delay   time.Duration
	now     func() time.Time
	busy    atomic.Bool
	state   *flux.Store[State, Action]
}

type Option func(*Conversation)

// WithReplyDelay sets the pause between the answer arriving and it being
// shown. Zero shows it immediately.
func WithReplyDelay(d time.Duration) Option {
	return func(c *Conversation) {
		c.delay = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
	}
}

func New(a *agent.Agent, q agent.Querier, opts ...Option) *Conversation {
	c := &Conversation{
		agent:   a,
		querier: q,
		delay:   DefaultReplyDelay,
		now:     time.Now,
		state:   flux.New(State{}, reduce),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) Agent() *agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agent
}

// SetAgent swaps in a refreshed copy of the agent, for example after it was
// registered. The transcript is kept.
func (c *Conversation) SetAgent(a *agent.Agent) {
	c.mu.Lock()
	c.agent = a
	c.mu.Unlock()
}

func (c *Conversation) State() State {
	return c.state.State()
}

func (c *Conversation) Messages() []Message {
	return c.state.State().Messages
}

func (c *Conversation) Pending() bool {
	return c.state.State().Pending
}

func (c *Conversation) Subscribe(bufSize int) (string, <-chan State) {
	return c.state.Subscribe(bufSize)
}

func (c *Conversation) Unsubscribe(id string) {
	c.state.Unsubscribe(id)
}

func (c *Conversation) message(role Role, content string) Message {
	return Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	}
}

// Submit sends prompt and blocks until the reply, or the error standing in
// for it, has been appended. Rejected prompts leave the transcript alone.
func (c *Conversation) Submit(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	a := c.Agent()
	if a == nil || !a.IsActive {
		return ErrInactive
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.state.Dispatch(submitted{msg: c.message(RoleUser, prompt)})

	res, err := c.querier.QueryAgent(ctx, a.ID, prompt)
	if err != nil {
		slog.WarnContext(ctx, "agent query failed", "agent_id", a.ID, "error", err)
		msg := fmt.Sprintf("Error: %s", cerr.Message(err, "Failed to get response from agent"))
		c.state.Dispatch(replied{msg: c.message(RoleSystem, msg)})
		return nil
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	content := ""
	if res != nil {
		content = res.Response
	}
	if content == "" {
		content = "No response from agent"
	}
	c.state.Dispatch(replied{msg: c.message(RoleAgent, content)})
	return nil
}

// Clear drops the transcript. A pending reply is still appended when it
// arrives.
func (c *Conversation) Clear() {
	c.state.Dispatch(cleared{})
}

// Suggestions are starter prompts for the bound agent.
func (c *Conversation) Suggestions() []string {
	a := c.Agent()
	if a == nil {
		return agent.Suggestions("")
	}
	return agent.Suggestions(a.Type)
}
