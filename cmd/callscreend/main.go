package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haukened/rr-callscreen/internal/screen/common/clock"
	"github.com/haukened/rr-callscreen/internal/screen/common/log"
	"github.com/haukened/rr-callscreen/internal/screen/config"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
	"github.com/haukened/rr-callscreen/internal/screen/gateways/terminator"
	"github.com/haukened/rr-callscreen/internal/screen/infra/metrics"
	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts/bloom"
	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts/bolt"
	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts/lru"
	"github.com/haukened/rr-callscreen/internal/screen/repos/settingsfile"
	"github.com/haukened/rr-callscreen/internal/screen/services/screener"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "callscreend"

	defaultShutdownTimeout = 10 * time.Second
	maxEventSize           = 64 * 1024
)

// Application holds all the components of the screening daemon
type Application struct {
	config   *config.AppConfig
	service  *screener.Service
	settings *settingsfile.Loader
	store    contacts.Store
	registry *prometheus.Registry
	in       io.Reader

	metricsAddr net.Addr
}

// callEvent is one line of daemon input. A null or missing caller_id is a
// private call.
type callEvent struct {
	CallerID *string `json:"caller_id"`
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = configureLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":        version,
		"env":            cfg.Env,
		"log_level":      cfg.Log.Level,
		"log_redact":     cfg.Log.Redact,
		"settings_file":  cfg.Settings.File,
		"settings_watch": cfg.Settings.Watch,
		"contacts_db":    cfg.Contacts.DB,
		"contacts_files": cfg.Contacts.Files,
		"metrics_listen": cfg.Metrics.Listen,
	}, "Starting call screening daemon")

	app, err := buildApplication(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}

	log.Info(nil, "Call screening daemon stopped gracefully")
}

// redactedFields are the log fields that carry phone numbers.
var redactedFields = []string{"caller_id", "rule", "value"}

// configureLogging sets up the global logger, masking phone numbers unless
// redaction is turned off.
func configureLogging(cfg *config.AppConfig) error {
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		return err
	}
	if cfg.Log.Redact {
		log.SetLogger(log.Redacting(log.GetLogger(), redactedFields...))
	}
	return nil
}

// buildApplication constructs all components and wires them together.
// Call events are read from in; terminated calls are reported on out.
func buildApplication(cfg *config.AppConfig, in io.Reader, out io.Writer) (*Application, error) {
	clk := &clock.RealClock{}
	logger := log.GetLogger()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewScreening(registry)

	store, repo, err := buildContacts(cfg, clk, log.Named(logger, "contacts"))
	if err != nil {
		return nil, fmt.Errorf("failed to build contacts: %w", err)
	}
	recorder.SetContacts(repo.Stats().Store.Contacts)

	engine := screener.NewEngine(domain.DefaultRuleSettings(), repo)
	service := screener.NewService(screener.ServiceOptions{
		Clock:    clk,
		Engine:   engine,
		Logger:   log.Named(logger, "screener"),
		Recorder: recorder,
		Terminator: &terminator.Fallback{
			Primary: terminator.NewWriter(out),
		},
	})

	loader := settingsfile.New(cfg.Settings.File, clk, log.Named(logger, "settings"))
	service.UpdateSettings(loader.LoadOrDefault())

	return &Application{
		config:   cfg,
		service:  service,
		settings: loader,
		store:    store,
		registry: registry,
		in:       in,
	}, nil
}

// buildContacts opens the contact index and, when contact lists are
// configured, rebuilds it from them. Otherwise the persisted index is warmed.
func buildContacts(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (contacts.Store, contacts.Repository, error) {
	store, err := bolt.New(cfg.Contacts.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open contacts db %s: %w", cfg.Contacts.DB, err)
	}

	cache, err := lru.New(cfg.Contacts.Cache.Size)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create contacts cache: %w", err)
	}

	repo := contacts.NewRepository(store, cache, bloom.NewFactory(), cfg.Contacts.FPRate)

	if len(cfg.Contacts.Files) == 0 {
		if err := repo.Warm(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to warm contacts: %w", err)
		}
	} else {
		now := clk.Now()
		var ids []string
		for _, path := range cfg.Contacts.Files {
			list, err := contacts.ReadList(path, logger, now)
			if err != nil {
				_ = store.Close()
				return nil, nil, err
			}
			ids = append(ids, list...)
		}
		if err := repo.UpdateAll(ids, uint64(now.Unix()), now.Unix()); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to rebuild contacts: %w", err)
		}
	}

	stats := repo.Stats()
	logger.Info(map[string]any{
		"db":          cfg.Contacts.DB,
		"contacts":    stats.Store.Contacts,
		"version":     stats.Store.Version,
		"cache_size":  stats.Cache.Capacity,
		"bloom_bits":  stats.Bloom.Bits,
		"bloom_funcs": stats.Bloom.Hashes,
	}, "Contact index initialized")

	return store, repo, nil
}

// Run screens call events until ctx is cancelled or the input ends.
func (app *Application) Run(ctx context.Context) error {
	defer func() {
		if err := app.store.Close(); err != nil {
			log.Warn(map[string]any{"error": err}, "Error closing contacts db")
		}
	}()

	if app.config.Settings.Watch {
		if err := app.settings.Watch(ctx, app.service.UpdateSettings); err != nil {
			log.Warn(map[string]any{"path": app.settings.Path(), "error": err}, "Settings watch unavailable")
		} else {
			log.Info(map[string]any{"path": app.settings.Path()}, "Watching settings file")
		}
	}

	var srv *http.Server
	if app.config.Metrics.Listen != "" {
		ln, err := net.Listen("tcp", app.config.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics: %w", err)
		}
		app.metricsAddr = ln.Addr()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
		srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(map[string]any{"error": err}, "Metrics server failed")
			}
		}()
		log.Info(map[string]any{"address": ln.Addr().String()}, "Metrics endpoint started")
	}

	done := make(chan error, 1)
	go func() {
		done <- app.readEvents(ctx)
	}()

	log.Info(nil, "Call screening started")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(nil, "Shutdown initiated")
	case runErr = <-done:
		if runErr == nil {
			log.Info(nil, "Input closed, shutting down")
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(map[string]any{"error": err}, "Error during metrics shutdown")
		}
	}

	return runErr
}

// readEvents screens one call per input line. Malformed lines are logged
// and skipped.
func (app *Application) readEvents(ctx context.Context) error {
	scanner := bufio.NewScanner(app.in)
	scanner.Buffer(make([]byte, 0, 4096), maxEventSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev callEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "Malformed call event")
			continue
		}

		call := app.service.NewCall(domain.CallerIDFromPtr(ev.CallerID))
		app.service.Screen(ctx, call)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading call events: %w", err)
	}
	return nil
}
