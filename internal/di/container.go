package di

import (
	"context"
	"fmt"
	"time"

	"voice-browser/internal/application/port/input"
	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/browser/rod"
	"voice-browser/internal/infrastructure/cache/memory"
	rediscache "voice-browser/internal/infrastructure/cache/redis"
	"voice-browser/internal/infrastructure/llm/langchain"
	"voice-browser/internal/infrastructure/llm/openrouter"
	"voice-browser/internal/infrastructure/logger"
	"voice-browser/internal/infrastructure/metrics"
	"voice-browser/internal/infrastructure/prompts"
	"voice-browser/internal/infrastructure/tokens"
	"voice-browser/internal/usecase/extractor"
	"voice-browser/internal/usecase/inquiry"
	"voice-browser/internal/usecase/intent"
	"voice-browser/internal/usecase/orchestrator"
	"voice-browser/internal/usecase/siteresolver"
	"voice-browser/internal/usecase/summarizer"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderLangChain  = "langchain"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Container holds everything one browsing session needs.
type Container struct {
	SessionID string
	Session   *entity.Session
	Renderer  output.PageRenderer
	Completer output.TextCompleter
	Cache     output.SummaryCache
	Metrics   *metrics.Recorder
	Logger    output.LoggerPort
	Navigator input.Navigator

	redis      *redis.Client
	redisCache *rediscache.Cache
}

type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	CompletionTimeout time.Duration

	BrowserHeadless bool
	PageLoadTimeout time.Duration

	// TokenizerWarmup bounds the startup wait for the BPE ranks; zero skips it.
	TokenizerWarmup time.Duration

	CacheBackend string
	Redis        rediscache.Config

	Log logger.Config
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	completer, err := newCompleter(cfg, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create completer: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	return Assemble(ctx, cfg, browser, completer, log), nil
}

// Assemble wires the use cases around an existing renderer and completer.
// The container owns the renderer from here on.
func Assemble(ctx context.Context, cfg Config, renderer output.PageRenderer, completer output.TextCompleter, log output.LoggerPort) *Container {
	sessionID := uuid.NewString()
	sessionLog := log.WithField("session_id", sessionID)

	c := &Container{
		SessionID: sessionID,
		Session:   entity.NewSession(sessionID),
		Renderer:  renderer,
		Metrics:   metrics.NewRecorder(),
		Logger:    sessionLog,
	}

	c.Completer = metrics.InstrumentCompleter(completer, c.Metrics)
	c.Cache = metrics.InstrumentCache(c.newCache(ctx, cfg), c.Metrics)

	library := prompts.Default()

	sumCfg := summarizer.DefaultConfig()
	infoCfg := inquiry.DefaultConfig()
	if cfg.PageLoadTimeout > 0 {
		sumCfg.PageLoadTimeout = cfg.PageLoadTimeout
		infoCfg.PageLoadTimeout = cfg.PageLoadTimeout
	}

	truncator := tokens.NewTruncator(tokens.DefaultEncoding)
	if cfg.TokenizerWarmup > 0 {
		warmCtx, cancel := context.WithTimeout(ctx, cfg.TokenizerWarmup)
		if !truncator.Warm(warmCtx) {
			sessionLog.Warn("Tokenizer not ready, counting characters until it loads", "waited", cfg.TokenizerWarmup)
		}
		cancel()
	}

	ext := extractor.New(renderer, extractor.DefaultConfig(), sessionLog.WithField("component", "extractor"))
	sum := summarizer.New(renderer, ext, c.Completer, c.Cache, library, sumCfg, sessionLog.WithField("component", "summarizer"))

	// the orchestrator tags its own lines with session_id
	c.Navigator = orchestrator.New(orchestrator.Deps{
		Summarizer: sum,
		Info:       inquiry.New(renderer, c.Completer, truncator, library, infoCfg, sessionLog.WithField("component", "inquiry")),
		Sites:      siteresolver.New(c.Completer, sum, library, sessionLog.WithField("component", "siteresolver")),
		Intents:    intent.NewResolver(c.Completer, library, sessionLog.WithField("component", "intent")),
		Completer:  c.Completer,
		Prompts:    library,
		Metrics:    c.Metrics,
		Logger:     log,
	}, orchestrator.DefaultConfig())

	sessionLog.Info("Session container ready", "cache", cfg.CacheBackend, "provider", cfg.Provider)
	return c
}

func newCompleter(cfg Config, log output.LoggerPort) (output.TextCompleter, error) {
	switch cfg.Provider {
	case "", ProviderOpenRouter:
		orCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			orCfg.BaseURL = cfg.BaseURL
		}
		if cfg.CompletionTimeout > 0 {
			orCfg.Timeout = cfg.CompletionTimeout
		}
		orCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(orCfg), nil
	case ProviderLangChain:
		adapter, err := langchain.New(langchain.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.CompletionTimeout,
		})
		if err != nil {
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// newCache falls back to memory when Redis is unreachable.
func (c *Container) newCache(ctx context.Context, cfg Config) output.SummaryCache {
	if cfg.CacheBackend != CacheRedis {
		return memory.New()
	}

	client := rediscache.NewClient(cfg.Redis)
	cache := rediscache.New(client, c.SessionID, cfg.Redis.TTL, c.Logger)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		c.Logger.Warn("Redis unavailable, using in-memory cache", "addr", cfg.Redis.Address, "error", err)
		_ = client.Close()
		return memory.New()
	}

	c.redis = client
	c.redisCache = cache
	return cache
}

// Close releases the renderer and drops this session's cached summaries.
func (c *Container) Close() {
	if c.Renderer != nil {
		c.Renderer.Close()
	}
	if c.redisCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.redisCache.Clear(ctx); err != nil {
			c.Logger.Warn("Failed to clear session cache", "error", err)
		}
		cancel()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
