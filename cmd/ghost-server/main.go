// Command ghost-server runs the ingestion, clustering, execution and
// approval HTTP surface as a single long-lived process. Wiring goes
// structured logging first, config load, then component construction
// bottom-up (stores, provider clients, the execution engine, finally the
// HTTP server), with a signal-driven graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ghostlabs/ghost-core/internal/browser"
	"github.com/ghostlabs/ghost-core/internal/config"
	"github.com/ghostlabs/ghost-core/internal/execution"
	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/governance/memstore"
	"github.com/ghostlabs/ghost-core/internal/httpapi"
	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/notify"
	"github.com/ghostlabs/ghost-core/internal/ratelimit"
	"github.com/ghostlabs/ghost-core/internal/store/pg"
	"github.com/ghostlabs/ghost-core/internal/telemetry"
	"github.com/ghostlabs/ghost-core/internal/trigger"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "ghost-server",
		Short: "Ghost automation engine: ingestion, clustering, execution and approval API",
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: ghost.json5 or $GHOST_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(migrateCmd())
	root.AddCommand(mcpCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	if v := os.Getenv("GHOST_CONFIG"); v != "" {
		return v
	}
	return "ghost.json5"
}

func run() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("ghost-server: failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telProvider, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("ghost-server: telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer telProvider.Shutdown(context.Background())

	watcher := config.NewWatcher(path, cfg, slog.Default())
	if err := watcher.Start(ctx); err != nil {
		slog.Warn("ghost-server: config hot-reload disabled", "error", err)
	}

	store, eventStore, closeStore, err := buildStores(cfg)
	if err != nil {
		slog.Error("ghost-server: failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	llmPort := buildLLMPort(cfg.LLM)
	notifier := buildNotifier(cfg.Notify)
	engine := execution.NewEngine(llmPort, browser.NewQueueingDriver(), notifier, store, nil)

	perMinute := orDefault(cfg.RateLimit.PerMinuteLimit, 1000)
	rl := ratelimit.New(
		rate.Limit(float64(perMinute)/60.0),
		orDefault(cfg.RateLimit.Burst, perMinute),
		time.Duration(orDefault(cfg.RateLimit.EvictAgeSec, 600))*time.Second,
	)

	if len(cfg.Scheduler.Orgs) > 0 {
		runner := &trigger.Runner{
			Orgs:     cfg.Scheduler.Orgs,
			Interval: time.Duration(orDefault(cfg.Scheduler.IntervalSec, 60)) * time.Second,
			Ghosts:   store,
			Executor: engine,
			Saver:    store,
			Logger:   slog.Default(),
		}
		go runner.Run(ctx)
	}

	srv := httpapi.New(&httpapi.Server{
		Store:        store,
		Events:       eventStore,
		LLM:          llmPort,
		Executor:     engine,
		RateLimit:    rl,
		Notify:       notifier,
		Metrics:      telProvider.Metrics,
		BearerToken:  cfg.Server.BearerToken,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       slog.Default(),
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	if err := srv.Run(ctx, addr); err != nil {
		slog.Error("ghost-server: server stopped with error", "error", err)
		os.Exit(1)
	}
}

func buildStores(cfg *config.Config) (governance.Store, httpapi.EventStore, func(), error) {
	if cfg.Database.IsMemstoreMode() {
		s := memstore.New()
		return s, s, func() {}, nil
	}

	stores, err := pg.NewStores(cfg.Database.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open postgres stores: %w", err)
	}
	closeFn := func() {
		if cerr := stores.Close(); cerr != nil {
			slog.Warn("ghost-server: close store", "error", cerr)
		}
	}
	return stores, stores.Events, closeFn, nil
}

func buildLLMPort(cfg config.LLMConfig) llm.Port {
	if cfg.Provider == "stub" || cfg.APIKey == "" {
		slog.Warn("ghost-server: no LLM API key configured, running with a stub port")
		return llm.NewStub()
	}
	opts := []llm.AnthropicOption{
		llm.WithModel(cfg.Model),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second),
	}
	if cfg.APIBase != "" {
		opts = append(opts, llm.WithBaseURL(cfg.APIBase))
	}
	return llm.NewAnthropicClient(cfg.APIKey, opts...)
}

func buildNotifier(cfg config.NotifyConfig) notify.Notifier {
	var backends []notify.Notifier
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("ghost-server: telegram notifier disabled", "error", err)
		} else {
			backends = append(backends, n)
		}
	}
	if cfg.Discord.Enabled && cfg.Discord.Token != "" {
		n, err := notify.NewDiscordNotifier(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			slog.Warn("ghost-server: discord notifier disabled", "error", err)
		} else {
			backends = append(backends, n)
		}
	}
	if len(backends) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(backends...)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
