package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/slot-availability/internal/application"
	"github.com/example/slot-availability/internal/availability"
	"github.com/example/slot-availability/internal/config"
	httptransport "github.com/example/slot-availability/internal/http"
	"github.com/example/slot-availability/internal/logging"
	"github.com/example/slot-availability/internal/telemetry"
)

const serviceName = "availability-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches the subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := logging.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)

	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "compute":
		err = compute(ctx, cfg, logger, args, stdout, stderr)
	case "migrate":
		err = migrate(ctx, cfg, logger)
	default:
		fmt.Fprintf(stderr, "unknown command %q (want serve, compute or migrate)\n", command)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		logger.Error("command failed", "command", command, "error", err, "error_kind", application.ErrorKind(err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSamplingRatio,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if err := store.migrate(ctx); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" && cfg.RateLimitEnabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				logger.Error("failed to close redis client", "error", cerr)
			}
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(cfg, store, rdb, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("availability API listening", "addr", server.Addr, "store", cfg.Store, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newHandler assembles the router and middleware chain. rdb may be nil, in
// which case rate limiting stays in process.
func newHandler(cfg config.Config, store *eventStore, rdb *redis.Client, logger *slog.Logger) http.Handler {
	service := newService(cfg, store, logger)

	checks := map[string]httptransport.ReadyCheck{
		"store": store.ping,
	}

	var limiter httptransport.Limiter
	failOpen := false
	if cfg.RateLimitEnabled() {
		if rdb != nil {
			limit := int(math.Ceil(cfg.RateLimit))
			limiter = httptransport.NewRedisRateLimiter(rdb, limit, time.Second, "")
			failOpen = true
			checks["redis"] = func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}
		} else {
			limiter = httptransport.NewMemoryRateLimiter(cfg.RateLimit, cfg.RateBurst)
		}
	}

	return httptransport.NewRouter(httptransport.RouterConfig{
		Availability: httptransport.NewAvailabilityHandler(service, logger),
		Health:       httptransport.NewHealthHandler(checks, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.Tracing(serviceName),
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(limiter, logger, failOpen),
		},
	})
}

func newService(cfg config.Config, store *eventStore, logger *slog.Logger) *application.AvailabilityService {
	opts := availability.Options{
		SnapLabels:  cfg.SnapLabels,
		DedupeSlots: cfg.DedupeSlots,
	}
	return application.NewAvailabilityServiceWithLogger(
		application.NewRepositorySource(store.events),
		opts,
		cfg.Location,
		time.Now,
		logger,
	)
}

func compute(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	fs.SetOutput(stderr)
	date := fs.String("date", "", "reference day as yyyy-MM-dd (default today)")
	seedPath := fs.String("seed", "", "JSON file of events stored before computing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if err := store.migrate(ctx); err != nil {
		return err
	}

	if *seedPath != "" {
		count, err := seedFile(ctx, store.events, *seedPath)
		if err != nil {
			return err
		}
		logger.Info("seeded events", "path", *seedPath, "count", count)
	}

	service := newService(cfg, store, logger)
	reference, err := service.ParseReference(*date)
	if err != nil {
		return err
	}
	result, err := service.GetAvailabilities(ctx, reference)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if err := store.migrate(ctx); err != nil {
		return err
	}
	logger.Info("migrations applied", "store", cfg.Store)
	return nil
}
