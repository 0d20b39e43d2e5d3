package di

import (
	"context"
	"strings"
	"testing"
	"time"

	"voice-browser/internal/infrastructure/cache/memory"
	rediscache "voice-browser/internal/infrastructure/cache/redis"
	"voice-browser/internal/infrastructure/logger"
	"voice-browser/internal/infrastructure/logger/loggertest"
	"voice-browser/internal/usecase/fakes"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeURL = "https://example.com"

func homeRenderer() *fakes.Renderer {
	return fakes.NewRenderer().AddPage(homeURL, &fakes.Page{
		Title: "Home",
		Elements: map[string][]*fakes.Element{
			"nav a[href]": {fakes.Link("About", "/about")},
			"main":        {fakes.Block("<main>" + strings.Repeat("Example content for the home page. ", 5) + "</main>")},
		},
	})
}

func TestAssemble_MemoryBackend(t *testing.T) {
	r := homeRenderer()
	c := Assemble(context.Background(), Config{CacheBackend: CacheMemory}, r, &fakes.Completer{Default: "A home page."}, loggertest.New(t))

	_, err := uuid.Parse(c.SessionID)
	require.NoError(t, err)
	assert.Equal(t, c.SessionID, c.Session.ID)

	turn := c.Navigator.Respond(context.Background(), c.Session, homeURL)
	assert.True(t, strings.HasPrefix(turn.Response, "A home page."))
	c.Navigator.Respond(context.Background(), c.Session, homeURL)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.CompletionCalls.WithLabelValues("ok")))

	c.Close()
	assert.True(t, r.Closed())
}

func TestAssemble_TokenizerWarmupIsBounded(t *testing.T) {
	cfg := Config{CacheBackend: CacheMemory, TokenizerWarmup: 50 * time.Millisecond}

	start := time.Now()
	c := Assemble(context.Background(), cfg, homeRenderer(), &fakes.Completer{}, loggertest.New(t))
	defer c.Close()

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotNil(t, c.Navigator)
}

func TestAssemble_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{
		CacheBackend: CacheRedis,
		Redis:        rediscache.Config{Address: mr.Addr(), TTL: time.Hour},
	}
	c := Assemble(context.Background(), cfg, homeRenderer(), &fakes.Completer{Default: "A home page."}, loggertest.New(t))
	require.NotNil(t, c.redisCache)

	c.Navigator.Respond(context.Background(), c.Session, homeURL)
	assert.Len(t, mr.Keys(), 1)
	assert.Contains(t, mr.Keys()[0], c.SessionID)

	c.Close()
	assert.Empty(t, mr.Keys())
}

func TestAssemble_RedisDownFallsBackToMemory(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := Config{CacheBackend: CacheRedis, Redis: rediscache.Config{Address: addr}}
	c := Assemble(context.Background(), cfg, homeRenderer(), &fakes.Completer{}, loggertest.New(t))
	defer c.Close()

	assert.Nil(t, c.redisCache)
	_, isMemory := c.newCache(context.Background(), Config{}).(*memory.Cache)
	assert.True(t, isMemory)
}

func TestNewCompleter(t *testing.T) {
	log := logger.NewNoOpLogger()

	c, err := newCompleter(Config{Provider: ProviderOpenRouter, APIKey: "k", Model: "m"}, log)
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = newCompleter(Config{Provider: ProviderLangChain, APIKey: "k", Model: "m"}, log)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = newCompleter(Config{Provider: "carrier-pigeon"}, log)
	assert.Error(t, err)
}
