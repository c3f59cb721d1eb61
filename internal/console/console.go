// Package console wires the session, the API client and the four stores
// together, and holds the screen-level logic that spans more than one store.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kazz187/agentconsole/internal/activitylog"
	logrepo "github.com/kazz187/agentconsole/internal/activitylog/repositoryimpl"
	"github.com/kazz187/agentconsole/internal/agent"
	agentrepo "github.com/kazz187/agentconsole/internal/agent/repositoryimpl"
	"github.com/kazz187/agentconsole/internal/apiclient"
	"github.com/kazz187/agentconsole/internal/auth"
	authrepo "github.com/kazz187/agentconsole/internal/auth/repositoryimpl"
	"github.com/kazz187/agentconsole/internal/chat"
	"github.com/kazz187/agentconsole/internal/config"
	"github.com/kazz187/agentconsole/internal/policy"
	"github.com/kazz187/agentconsole/internal/session"
	"github.com/kazz187/agentconsole/internal/tool"
	toolrepo "github.com/kazz187/agentconsole/internal/tool/repositoryimpl"
	"github.com/kazz187/agentconsole/pkg/storage"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	ReplyDelay     time.Duration
}

// Deps are the optional collaborators. Without Storage the token lives only
// as long as the process.
type Deps struct {
	Storage    storage.Storage
	Sealer     session.Sealer
	HTTPClient *http.Client
}

type Console struct {
	cfg Config

	Session *session.Session
	Client  *apiclient.Client
	Auth    *auth.Store
	Agents  *agent.Store
	Tools   *tool.Store
	Logs    *activitylog.Store

	tokens *session.TokenStore

	mu        sync.Mutex
	lastFetch func(ctx context.Context)

	enginesOnce sync.Once
	toolForm    *policy.Engine
	profile     *policy.Engine
	enginesErr  error
}

func New(ctx context.Context, cfg Config, deps Deps) (*Console, error) {
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base url is required")
	}

	c := &Console{cfg: cfg}

	token := ""
	if deps.Storage != nil {
		var opts []session.TokenStoreOption
		if deps.Sealer != nil {
			opts = append(opts, session.WithSealer(deps.Sealer))
		}
		c.tokens = session.NewTokenStore(deps.Storage, opts...)
		t, err := c.tokens.Load(ctx)
		if err != nil {
			slog.WarnContext(ctx, "ignoring stored session token", "error", err)
		}
		token = t
	}
	c.Session = session.New(token)

	clientOpts := []apiclient.Option{apiclient.WithTimeout(cfg.RequestTimeout)}
	if deps.HTTPClient != nil {
		clientOpts = append([]apiclient.Option{apiclient.WithHTTPClient(deps.HTTPClient)}, clientOpts...)
	}
	c.Client = apiclient.New(cfg.APIBaseURL, c.Session, clientOpts...)

	var authOpts []auth.Option
	if c.tokens != nil {
		authOpts = append(authOpts, auth.WithTokenPersister(c.tokens))
	}
	c.Auth = auth.NewStore(authrepo.NewHTTPRepository(c.Client), c.Session, authOpts...)
	c.Agents = agent.NewStore(agentrepo.NewHTTPRepository(c.Client))
	c.Tools = tool.NewStore(toolrepo.NewHTTPRepository(c.Client))
	c.Logs = activitylog.NewStore(logrepo.NewHTTPRepository(c.Client))
	return c, nil
}

// NewFromEnv builds the console from CONSOLE_* settings.
func NewFromEnv(ctx context.Context, env *config.Env) (*Console, error) {
	var (
		store storage.Storage
		err   error
	)
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
	}

	deps := Deps{Storage: store}
	if env.SessionEnv.IdentityFile != "" {
		identity, err := session.LoadOrCreateIdentity(env.SessionEnv.IdentityFile)
		if err != nil {
			return nil, err
		}
		deps.Sealer = session.NewAgeSealer(identity)
	}

	return New(ctx, Config{
		APIBaseURL:     env.BaseEnv.APIBaseURL,
		RequestTimeout: env.BaseEnv.RequestTimeout,
		ReplyDelay:     env.BaseEnv.ReplyDelay,
	}, deps)
}

// Conversation opens a chat with a, querying through the agent store so
// query failures also show up in Alerts.
func (c *Console) Conversation(a *agent.Agent) *chat.Conversation {
	return chat.New(a, c.Agents, chat.WithReplyDelay(c.cfg.ReplyDelay))
}

// WatchSession follows token changes made by other processes, such as a
// login in another terminal, until ctx is done.
func (c *Console) WatchSession(ctx context.Context) error {
	if c.tokens == nil {
		return session.ErrNotWatchable
	}
	return c.tokens.Watch(ctx, c.Session.Token(), func(token string) {
		slog.InfoContext(ctx, "session token changed on disk")
		if c.Auth.AdoptToken(token) && token != "" {
			c.Auth.LoadUser(ctx)
		}
	})
}

func (c *Console) engines(ctx context.Context) error {
	c.enginesOnce.Do(func() {
		c.toolForm, c.enginesErr = policy.NewToolFormEngine(ctx)
		if c.enginesErr != nil {
			return
		}
		c.profile, c.enginesErr = policy.NewProfileEngine(ctx)
	})
	return c.enginesErr
}

func (c *Console) ValidateToolForm(ctx context.Context, f *tool.Form) (policy.FieldErrors, error) {
	if err := c.engines(ctx); err != nil {
		return nil, err
	}
	return f.Validate(ctx, c.toolForm)
}

func (c *Console) ValidateProfile(ctx context.Context, f auth.ProfileForm) (policy.FieldErrors, error) {
	if err := c.engines(ctx); err != nil {
		return nil, err
	}
	return f.Validate(ctx, c.profile)
}

// ValidateDetails checks only the name and email half of the profile form.
func (c *Console) ValidateDetails(ctx context.Context, p auth.Profile) (policy.FieldErrors, error) {
	if err := c.engines(ctx); err != nil {
		return nil, err
	}
	return auth.ValidateProfile(ctx, c.profile, p)
}

func (c *Console) ValidatePasswordChange(ctx context.Context, p auth.PasswordChange, confirm string) (policy.FieldErrors, error) {
	if err := c.engines(ctx); err != nil {
		return nil, err
	}
	return auth.ValidatePassword(ctx, c.profile, p, confirm)
}
