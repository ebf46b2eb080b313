package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"

	"gridiron/internal/adapters/ai"
	"gridiron/internal/adapters/config"
	"gridiron/internal/adapters/errors/noop"
	"gridiron/internal/adapters/errors/sentry"
	"gridiron/internal/domain/tradecontext"
	"gridiron/internal/metrics"
	"gridiron/internal/services/advice"
	"gridiron/pkg/errors"
	"gridiron/pkg/logger"
)

func main() {
	contextPath := flag.String("context", "", "path to a trade decision context JSON file (default: stdin)")
	systemPath := flag.String("system", "", "path to the system prompt file")
	userPath := flag.String("user", "", "path to the user prompt file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()
	if cfg.App.MetricsAddr != "" {
		go serveMetrics(cfg.App.MetricsAddr, log)
	}

	result, err := run(context.Background(), cfg, *contextPath, *systemPath, *userPath)
	if err != nil {
		log.Fatalf("Advice failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, contextPath, systemPath, userPath string) (interface{}, error) {
	decisionCtx, err := loadContext(contextPath)
	if err != nil {
		return nil, err
	}

	opts := advice.OptionsFromConfig(cfg.Advice)

	registry := ai.NewProviderRegistry()
	if opts.Mode != advice.ModeOff {
		registry, err = ai.BuildRegistry(cfg.AI, opts.Timeout)
		if err != nil {
			return nil, err
		}
	}

	prompt, err := loadPrompt(systemPath, userPath)
	if err != nil {
		return nil, err
	}

	engine := advice.NewEngine(registry, opts)
	return engine.Advise(ctx, decisionCtx, prompt)
}

// loadContext reads the trade decision context from a file, or stdin when no
// path is given.
func loadContext(path string) (*tradecontext.TradeDecisionContext, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read trade context")
	}

	var decisionCtx tradecontext.TradeDecisionContext
	if err := json.Unmarshal(data, &decisionCtx); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "parse trade context: "+err.Error())
	}
	return &decisionCtx, nil
}

func loadPrompt(systemPath, userPath string) (advice.Prompt, error) {
	prompt := advice.Prompt{}
	if systemPath != "" {
		data, err := os.ReadFile(systemPath)
		if err != nil {
			return prompt, errors.Wrap(err, "read system prompt")
		}
		prompt.System = string(data)
	}
	if userPath != "" {
		data, err := os.ReadFile(userPath)
		if err != nil {
			return prompt, errors.Wrap(err, "read user prompt")
		}
		prompt.User = string(data)
	}
	return prompt, nil
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Infof("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server stopped: %v", err)
	}
}
