package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"onlinemall/internal/ratelimit"
	"onlinemall/internal/util"
	"onlinemall/pkg/domain"
	"onlinemall/pkg/storage"
	"onlinemall/pkg/store"
	"onlinemall/services/storefront/internal/apiclient"
	"onlinemall/services/storefront/internal/app"
	"onlinemall/services/storefront/internal/config"
	"onlinemall/services/storefront/internal/guard"
	"onlinemall/services/storefront/internal/state"
)

// Runtime is everything one command invocation needs, built from config.
type Runtime struct {
	cfg      config.FileConfig
	logger   *slog.Logger
	app      *app.App
	registry *prometheus.Registry
	closers  []io.Closer
	stdout   io.Writer
	stderr   io.Writer

	// shownError is set once an error notification has been printed, so
	// the same failure is not reported twice.
	shownError bool
}

func newRuntime(cfg config.FileConfig, stdout, stderr io.Writer) (*Runtime, error) {
	rt := &Runtime{
		cfg:      cfg,
		logger:   util.InitLogger(cfg.LogLevel, stderr),
		registry: prometheus.NewRegistry(),
		stdout:   stdout,
		stderr:   stderr,
	}

	storageBackend, err := rt.openStorage()
	if err != nil {
		return nil, err
	}
	session := state.NewSession(storageBackend)

	policy, err := guard.PolicyFromConfig(cfg.AdminPolicy, cfg.AdminRole)
	if err != nil {
		rt.Close()
		return nil, err
	}

	metrics := apiclient.NewMetrics(rt.registry)
	transport := apiclient.TracingTransport(metrics.Transport(apiclient.LoggingTransport(http.DefaultTransport, rt.logger)))
	client := apiclient.NewClient(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout(), Transport: transport},
		Tokens:     session,
	})

	limiter, err := rt.openLimiter()
	if err != nil {
		rt.Close()
		return nil, err
	}
	images, err := rt.openImages()
	if err != nil {
		rt.Close()
		return nil, err
	}

	notifier := state.NewNotifier(state.NotifierConfig{Duration: cfg.NotificationTTL()})
	notifier.OnChange(rt.printNotification)

	appCfg := app.Config{
		API:      client,
		Session:  session,
		Cart:     state.NewCart(),
		Notifier: notifier,
		Guard:    guard.New(guard.Config{Policy: policy, Logger: rt.logger}),
		Routes:   guard.NewTable(guard.DefaultRoutes()),
		Logger:   rt.logger,
	}
	if limiter != nil {
		appCfg.Limiter = limiter
	}
	if images != nil {
		appCfg.Images = images
	}
	rt.app, err = app.New(appCfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) openStorage() (store.Storage, error) {
	sc := rt.cfg.Storage
	switch sc.Driver {
	case config.StorageMemory:
		return store.NewMemoryStorage(), nil
	case config.StorageRedis:
		s, err := store.NewRedisStorage(sc.RedisAddr, sc.RedisPassword, sc.RedisPrefix, rt.cfg.StorageTTL())
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		rt.closers = append(rt.closers, s)
		return s, nil
	case config.StoragePostgres:
		s, err := store.NewGormStorage(sc.DatabaseURL, sc.Namespace)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		rt.closers = append(rt.closers, s)
		return s, nil
	default:
		s, err := store.NewFileStorage(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil
	}
}

func (rt *Runtime) openLimiter() (*ratelimit.FixedWindowLimiter, error) {
	tc := rt.cfg.Tracking
	if tc.RedisAddr == "" || tc.PerMinute <= 0 {
		return nil, nil
	}
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(tc.RedisAddr, tc.RedisPassword, "onlinemall:track", tc.PerMinute, trackingWindow)
	if err != nil {
		return nil, fmt.Errorf("open tracking limiter: %w", err)
	}
	rt.closers = append(rt.closers, limiter)
	return limiter, nil
}

func (rt *Runtime) openImages() (*storage.MinioStore, error) {
	if !rt.cfg.ImagesEnabled() {
		return nil, nil
	}
	ic := rt.cfg.Images
	images, err := storage.NewMinioStore(ic.Endpoint, ic.AccessKey, ic.SecretKey, ic.Bucket, ic.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("open image store: %w", err)
	}
	return images, nil
}

func (rt *Runtime) printNotification(n domain.Notification) {
	if !n.Visible {
		return
	}
	mark := "✓"
	if n.Type == domain.NotificationError {
		mark = "✗"
		rt.shownError = true
	}
	fmt.Fprintf(rt.stderr, "%s %s\n", mark, n.Message)
}

// Close pushes collected metrics when a pushgateway is configured and
// releases backend connections.
func (rt *Runtime) Close() error {
	var errs []error
	if url := rt.cfg.Metrics.PushURL; url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.RequestTimeout())
		err := push.New(url, rt.cfg.Metrics.Job).Gatherer(rt.registry).PushContext(ctx)
		cancel()
		if err != nil {
			rt.logger.Warn("push metrics failed", "url", url, "err", err)
		}
	}
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
