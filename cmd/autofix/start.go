package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/autofix/common/id"
	"basegraph.app/autofix/common/logger"
	"basegraph.app/autofix/common/otel"
	"basegraph.app/autofix/core/config"
	"basegraph.app/autofix/internal/backend"
	"basegraph.app/autofix/internal/http/handler"
	"basegraph.app/autofix/internal/http/handler/webhook"
	"basegraph.app/autofix/internal/http/middleware"
	httprouter "basegraph.app/autofix/internal/http/router"
	"basegraph.app/autofix/internal/mapper"
	"basegraph.app/autofix/internal/queue"
	"basegraph.app/autofix/internal/service"
	issue_tracker "basegraph.app/autofix/internal/service/issue_tracker"
	"basegraph.app/autofix/internal/store"
	"basegraph.app/autofix/internal/worker"
)

const (
	drainInterval = time.Second
	drainDeadline = 30 * time.Second
)

type startOptions struct {
	port    int
	noSparc bool
	noSwarm bool
}

func (c *cli) startCmd() *cobra.Command {
	var opts startOptions

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the webhook server and issue worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStart(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (overrides webhookPort)")
	cmd.Flags().BoolVar(&opts.noSparc, "no-sparc", false, "Disable SPARC analysis")
	cmd.Flags().BoolVar(&opts.noSwarm, "no-swarm", false, "Disable swarm fixes")
	return cmd
}

func (c *cli) runStart(ctx context.Context, opts startOptions) error {
	fmt.Fprintf(c.out, "%s\n", banner)

	cfg, err := c.loadConfig(true)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}

	logger.Setup(cfg)
	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	}

	if err := id.Init(1); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}

	settings, err := c.settingsStore(cfg, slog.Default()).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if opts.port != 0 {
		settings.WebhookPort = opts.port
	}
	if opts.noSparc {
		settings.Sparc.Enabled = false
	}
	if opts.noSwarm {
		settings.Swarm.Enabled = false
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "autofix starting",
		"env", cfg.Env,
		"enabled", settings.Enabled,
		"max_concurrent", settings.MaxConcurrentIssues,
		"signature_required", cfg.GitHub.SignatureRequired())

	b := setupBackends(ctx, cfg, settings, backend.ExecCommandRunner{}, slog.Default())
	tracker := issue_tracker.NewGitHubIssueTracker(cfg.GitHub.Token)

	deliveries, closeDeliveries := setupDeliveryStore(ctx, cfg)
	defer closeDeliveries()

	q := queue.NewAdmissionQueue(settings.MaxConcurrentIssues, slog.Default())
	w := worker.New(q, newPipeline(tracker, b, slog.Default()), slog.Default())

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go func() {
		if err := w.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "worker exited", "error", err)
		}
	}()

	dispatcher := service.NewEventDispatcher(settings, q, slog.Default())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, httprouter.Handlers{
		Webhook: webhook.NewGitHubWebhookHandler(cfg.GitHub.WebhookSecret, deliveries, mapper.NewGitHubEventMapper(), dispatcher),
		Status:  handler.NewStatusHandler(q),
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(settings.WebhookPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server starting",
			"port", settings.WebhookPort,
			"webhook_path", cfg.BasePath+"/github-webhook")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	// Closing the queue ends the worker's wait; in-flight runs are never
	// cancelled. Past the deadline they are abandoned with the process.
	left := worker.Drain(ctx, q, drainInterval, drainDeadline)
	q.Close()
	if left > 0 {
		slog.WarnContext(ctx, "abandoning in-flight issues", "active", left)
	} else {
		w.Stop()
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
	return runErr
}

func setupRouter(cfg config.Config, handlers httprouter.Handlers) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, handlers, httprouter.RouterConfig{BasePath: cfg.BasePath})
	return router
}

// setupDeliveryStore uses Redis when configured and reachable, otherwise an
// in-memory window.
func setupDeliveryStore(ctx context.Context, cfg config.Config) (store.DeliveryStore, func()) {
	nop := func() {}
	if cfg.RedisURL == "" {
		return store.NewMemoryDeliveryStore(store.DeliveryWindow), nop
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.WarnContext(ctx, "invalid redis url, using in-memory delivery tracking", "error", err)
		return store.NewMemoryDeliveryStore(store.DeliveryWindow), nop
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.WarnContext(ctx, "redis unreachable, using in-memory delivery tracking", "error", err)
		_ = client.Close()
		return store.NewMemoryDeliveryStore(store.DeliveryWindow), nop
	}

	slog.InfoContext(ctx, "redis connected")
	return store.NewRedisDeliveryStore(client, store.DeliveryWindow), func() { _ = client.Close() }
}
