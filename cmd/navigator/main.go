package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-browser/internal/di"
	"voice-browser/internal/domain/entity"
	rediscache "voice-browser/internal/infrastructure/cache/redis"
	"voice-browser/internal/infrastructure/env"
	"voice-browser/internal/infrastructure/logger"
	"voice-browser/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

var (
	headlessFlag bool
	providerFlag string
	cacheFlag    string
	jsonFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "navigator [url or request]",
	Short: "Browse the web by conversation",
	Long: `navigator loads a page, reads out a short summary and the sections you can go to,
then takes free-text turns: pick a section, ask about the page, go back, bookmark,
switch to another site, or say "exit".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runNavigator,
}

func init() {
	rootCmd.Flags().BoolVar(&headlessFlag, "headless", true, "Run the browser without a window")
	rootCmd.Flags().StringVar(&providerFlag, "provider", "", "Text generation provider: openrouter or langchain (default from LLM_PROVIDER)")
	rootCmd.Flags().StringVar(&cacheFlag, "cache", "", "Summary cache backend: memory or redis (default from CACHE_BACKEND)")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print each response as a JSON object")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runNavigator(cmd *cobra.Command, args []string) error {
	settings, err := env.Load(".")
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Require("OPENROUTER_API_KEY", "OPENROUTER_MODEL_NAME"); err != nil {
		return err
	}
	cfg := loadConfig(cmd, settings)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close()

	if addr := settings.Get("METRICS_ADDR"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(container), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				container.Logger.Error("Metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		container.Logger.Info("Serving metrics", "addr", addr)
	}

	console := userinteraction.NewConsole(os.Stdin, os.Stdout, jsonFlag)
	console.ShowWelcome()

	pending := ""
	if len(args) > 0 {
		pending = args[0]
	}

	for {
		utterance := pending
		pending = ""
		if utterance == "" {
			utterance, err = readTurn(ctx, console)
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		console.ShowThinking(utterance)

		var turn entity.Turn
		if _, loaded := container.Session.Current(); loaded {
			turn = container.Navigator.Respond(ctx, container.Session, utterance)
		} else {
			turn = container.Navigator.Open(ctx, container.Session, utterance)
		}

		if err := console.ShowTurn(turn); err != nil {
			return err
		}
		if turn.Intent.Kind == entity.IntentExit || ctx.Err() != nil {
			return nil
		}
	}
}

// readTurn waits for the next line unless the process is being stopped.
func readTurn(ctx context.Context, console *userinteraction.Console) (string, error) {
	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := console.ReadTurn()
		ch <- line{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		return l.text, l.err
	}
}

func loadConfig(cmd *cobra.Command, e *env.Source) di.Config {
	cfg := di.Config{
		Provider:          e.GetWithDefault("LLM_PROVIDER", di.ProviderOpenRouter),
		APIKey:            e.Get("OPENROUTER_API_KEY"),
		Model:             e.Get("OPENROUTER_MODEL_NAME"),
		BaseURL:           e.Get("OPENROUTER_BASE_URL"),
		CompletionTimeout: e.GetDuration("COMPLETION_TIMEOUT", 8*time.Second),

		BrowserHeadless: e.GetBool("BROWSER_HEADLESS", true),
		PageLoadTimeout: e.GetDuration("PAGE_LOAD_TIMEOUT", 7*time.Second),
		TokenizerWarmup: e.GetDuration("TOKENIZER_WARMUP", 3*time.Second),

		CacheBackend: e.GetWithDefault("CACHE_BACKEND", di.CacheMemory),
		Redis: rediscache.Config{
			Address:  e.GetWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: e.Get("REDIS_PASSWORD"),
			DB:       e.GetInt("REDIS_DB", 0),
			TTL:      e.GetDuration("SESSION_TTL", 2*time.Hour),
		},

		Log: logger.Config{
			Level:  e.GetWithDefault("LOG_LEVEL", "info"),
			Format: e.GetWithDefault("LOG_FORMAT", "console"),
		},
	}

	if cmd.Flags().Changed("headless") {
		cfg.BrowserHeadless = headlessFlag
	}
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if cacheFlag != "" {
		cfg.CacheBackend = cacheFlag
	}
	return cfg
}

func metricsMux(c *di.Container) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Metrics.Handler())
	return mux
}
