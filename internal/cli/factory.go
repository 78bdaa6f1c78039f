package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/leadwizard/internal/config"
	"github.com/aretw0/leadwizard/pkg/adapters/llm"
	"github.com/aretw0/leadwizard/pkg/adapters/memory"
	"github.com/aretw0/leadwizard/pkg/adapters/notify"
	"github.com/aretw0/leadwizard/pkg/adapters/postgres"
	"github.com/aretw0/leadwizard/pkg/adapters/redis"
	"github.com/aretw0/leadwizard/pkg/adapters/sqlite"
	"github.com/aretw0/leadwizard/pkg/adapters/zipcode"
	"github.com/aretw0/leadwizard/pkg/chat"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/aretw0/leadwizard/pkg/observability"
	"github.com/aretw0/leadwizard/pkg/persistence/middleware"
	"github.com/aretw0/leadwizard/pkg/ports"
	"github.com/aretw0/leadwizard/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is the fully wired application shared by serve, chat and mcp.
type Stack struct {
	Flow     *flow.Store
	Sessions ports.SessionStore
	Leads    ports.LeadRepository
	Engine   *wizard.Engine
	Service  *chat.Service

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry

	closers []func() error
}

// StackOptions tweaks how BuildStack wires adapters.
type StackOptions struct {
	// Local forces in-memory sessions and leads (console sessions).
	Local bool
	// Debug adds log hooks for every lifecycle event.
	Debug bool
}

// BuildStack loads the flow and connects every adapter named by cfg.
// Only startup failures (flow, database, redis) are returned; the caller must Close the stack.
func BuildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts StackOptions) (*Stack, error) {
	st := &Stack{}

	f, err := flow.LoadFile(cfg.Flow.Path)
	if err != nil {
		return nil, err
	}
	st.Flow = f

	if err := st.connectSessions(ctx, cfg, logger, opts.Local); err != nil {
		st.Close()
		return nil, err
	}
	mws, err := sessionMiddlewares(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	if len(mws) > 0 {
		st.Sessions = middleware.Wrap(st.Sessions, mws...)
		logger.Info("session store middlewares enabled", "count", len(mws))
	}
	if err := st.connectLeads(ctx, cfg, logger, opts.Local); err != nil {
		st.Close()
		return nil, err
	}

	hookSets := []domain.LifecycleHooks{}
	if opts.Debug {
		hookSets = append(hookSets, observability.LogHooks(logger))
	}
	if cfg.Metrics {
		st.Registry = prometheus.NewRegistry()
		st.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := observability.NewMetrics(st.Registry)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hookSets = append(hookSets, m.Hooks())
	}
	hooks := observability.Chain(hookSets...)

	engine, err := wizard.New(f, st.Sessions,
		wizard.WithStartNode(cfg.Flow.StartNode),
		wizard.WithFallbackNode(cfg.Flow.FallbackNode),
		wizard.WithLogger(logger),
		wizard.WithLifecycleHooks(hooks),
	)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Engine = engine

	st.Service = chat.New(engine, st.Sessions,
		chat.WithLeadRepository(st.Leads),
		chat.WithNotifier(buildNotifier(cfg, logger)),
		chat.WithReplyGenerator(llm.New(llm.Config{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			Model:        cfg.LLM.Model,
			Temperature:  cfg.LLM.Temperature,
			SystemPrompt: cfg.LLM.SystemPrompt,
			Timeout:      cfg.LLM.Timeout,
		})),
		chat.WithZipChecker(buildZipChecker(cfg, logger)),
		chat.WithSelectionMarker(cfg.Flow.SelectionMarker),
		chat.WithLifecycleHooks(hooks),
		chat.WithLogger(logger),
	)

	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured, free-text replies will use the apology text")
	}
	return st, nil
}

func (st *Stack) connectSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, local bool) error {
	if local || cfg.Redis.URL == "" {
		st.Sessions = memory.NewSessionStore(memory.WithTTL(cfg.Redis.SessionTTL))
		logger.Info("using in-memory session store")
		return nil
	}

	store, err := redis.New(cfg.Redis.URL, redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.SessionTTL))
	if err != nil {
		return fmt.Errorf("failed to configure redis: %w", err)
	}
	st.closers = append(st.closers, store.Close)
	if err := store.Ping(ctx); err != nil {
		return err
	}
	st.Sessions = store
	logger.Info("using redis session store", "prefix", cfg.Redis.Prefix)
	return nil
}

// sessionMiddlewares builds answer masking and encryption from config. Masking
// runs before encryption so masked values are encrypted at rest too.
func sessionMiddlewares(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Sessions.MaskAnswers) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Sessions.MaskAnswers)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.Sessions.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.Sessions.EncryptionKey)
		if err != nil {
			return nil, err
		}
		encCfg := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.Sessions.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key %d: %w", i, err)
			}
			encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(encCfg))
	}
	return mws, nil
}

func (st *Stack) connectLeads(ctx context.Context, cfg *config.Config, logger *slog.Logger, local bool) error {
	driver := cfg.LeadDriver()
	if local {
		driver = "memory"
	}

	switch driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Leads.DatabaseURL)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() error { pool.Close(); return nil })
		st.Leads = postgres.NewLeadStore(pool)
	case "sqlite":
		store, err := sqlite.Open(cfg.Leads.SQLitePath)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, store.Close)
		st.Leads = store
	default:
		st.Leads = memory.NewLeadStore()
	}
	logger.Info("lead repository ready", "driver", driver)
	return nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) ports.Notifier {
	var multi notify.Multi
	if cfg.Notify.WebhookURL != "" {
		multi = append(multi, notify.NewWebhook(cfg.Notify.WebhookURL, nil))
	}
	if cfg.Notify.Alerts {
		multi = append(multi, notify.NewAlerts(logger))
	}
	if len(multi) == 0 {
		return nil
	}
	return multi
}

func buildZipChecker(cfg *config.Config, logger *slog.Logger) ports.ZipChecker {
	opts := []zipcode.Option{zipcode.WithLogger(logger)}
	if cfg.Zip.APIURL != "" {
		opts = append(opts, zipcode.WithBaseURL(cfg.Zip.APIURL))
	}
	if len(cfg.Zip.States) > 0 {
		opts = append(opts, zipcode.WithStates(cfg.Zip.States...))
	}
	if cfg.Zip.CSVPath != "" {
		zips, err := zipcode.LoadAllowList(cfg.Zip.CSVPath)
		switch {
		case err == nil:
			opts = append(opts, zipcode.WithAllowList(zips))
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("zip allow-list not found, API lookups only", "path", cfg.Zip.CSVPath)
		default:
			logger.Warn("failed to load zip allow-list", "path", cfg.Zip.CSVPath, "err", err)
		}
	}
	return zipcode.New(opts...)
}

// Close releases connections in reverse order of creation.
func (st *Stack) Close() error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	st.closers = nil
	return errors.Join(errs...)
}
