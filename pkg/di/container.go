// Package di assembles the client core from configuration. Both the CLI and
// the companion server build their object graph here.
package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-agent-character-demo/client/internal/api"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/session"
	"ai-agent-character-demo/client/internal/storage"
	"ai-agent-character-demo/client/internal/transport"
	"ai-agent-character-demo/client/pkg/config"
	"ai-agent-character-demo/client/pkg/health"
	"ai-agent-character-demo/client/pkg/logger"
	"ai-agent-character-demo/client/pkg/observability"
	"ai-agent-character-demo/client/pkg/secrets"

	"github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/time/rate"
)

// Container holds all the dependencies for the application
type Container struct {
	Config        *config.Config
	Logger        *logger.Logger
	Registry      *prometheus.Registry
	MeterProvider *sdkmetric.MeterProvider
	Store         storage.Store
	Transport     *transport.Client
	API           *api.Client
	Hub           *notify.Hub
	Notifier      notify.Notifier
	Session       *session.Store
	Health        *health.Checker
}

// Options holds the per-binary parts of the graph
type Options struct {
	// Hub, when set, receives every notification and navigation and is
	// served to browsers over /ws
	Hub *notify.Hub
	// Notifier receives notifications in addition to the log
	Notifier notify.Notifier
	// Registry enables Prometheus metrics for backend calls and session transitions
	Registry   *prometheus.Registry
	HTTPClient *http.Client
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	notifiers := notify.Multi{notify.NewLogNotifier(log.WithComponent("notify"))}
	if opts.Hub != nil {
		notifiers = append(notifiers, opts.Hub)
	}
	if opts.Notifier != nil {
		notifiers = append(notifiers, opts.Notifier)
	}

	// The vault copy of the encryption key wins over the plain env value
	encryptionKey := secrets.GetSecretWithDefault(ctx, secrets.KeyStorageEncryption, cfg.Storage.EncryptionKey)

	store, err := storage.Open(ctx, storage.Options{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.Storage.Path,
		DSN:           cfg.Storage.DSN,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		EncryptionKey: encryptionKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   log,
		Registry: opts.Registry,
		Store:    store,
		Hub:      opts.Hub,
		Notifier: notifiers,
	}

	transportOpts := []transport.Option{
		transport.WithHTTPClient(httpClient),
		transport.WithLogger(log),
	}
	if cfg.API.ValidateResponses {
		validator, err := transport.NewSchemaValidator()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to load backend schema: %w", err)
		}
		transportOpts = append(transportOpts, transport.WithValidator(validator))
	}
	if cfg.API.RateLimit > 0 {
		transportOpts = append(transportOpts, transport.WithLimiter(rate.NewLimiter(rate.Limit(cfg.API.RateLimit), max(cfg.API.RateLimitBurst, 1))))
	}

	var sessionOpts []session.Option
	sessionOpts = append(sessionOpts, session.WithLogger(log))
	if opts.Registry != nil {
		metrics, err := transport.NewMetrics(opts.Registry)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		transportOpts = append(transportOpts, transport.WithMetrics(metrics))

		mp, err := observability.SetupMetrics(cfg.Observability.ServiceName, opts.Registry)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to set up meter provider: %w", err)
		}
		c.MeterProvider = mp
		sessionOpts = append(sessionOpts, session.WithMeterProvider(mp))
	}

	c.Transport = transport.NewClient(cfg.API.BaseURL, api.TokenFromStore(store), notifiers, transportOpts...)
	c.API = api.New(c.Transport, store)

	var nav session.Navigator
	if opts.Hub != nil {
		nav = opts.Hub
	}
	c.Session = session.NewStore(c.API.Auth, store, notifiers, nav, sessionOpts...)

	c.Health = health.NewChecker(log, cfg.Server.HealthInterval)
	if p, ok := store.(health.Pinger); ok {
		c.Health.RegisterStorageCheck(p)
	}
	c.Health.RegisterAPICheck("backend", cfg.API.BaseURL, httpClient)

	return c, nil
}

// Close releases the storage backend and flushes metrics
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	if c.MeterProvider != nil {
		if err := c.MeterProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if err := c.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Bootstrap prepares the process-wide pieces both binaries share: the
// global logger and the secrets manager
func Bootstrap(cfg *config.Config) (*logger.Logger, error) {
	log := logger.New(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	logger.SetGlobal(log)

	err := secrets.Init(secrets.VaultConfig{
		Address:     cfg.Vault.Address,
		Token:       cfg.Vault.Token,
		Namespace:   cfg.Vault.Namespace,
		Timeout:     cfg.Vault.Timeout,
		MaxRetries:  cfg.Vault.MaxRetries,
		SecretsPath: cfg.Vault.SecretsPath,
		Enabled:     cfg.Vault.Enabled,
	}, log)
	if err != nil {
		return log, fmt.Errorf("failed to initialize secrets manager: %w", err)
	}
	return log, nil
}
