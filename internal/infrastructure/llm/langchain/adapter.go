package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-browser/internal/application/port/output"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrEmptyCompletion = errors.New("completion returned no text")

var _ output.TextCompleter = (*Adapter)(nil)

// Adapter serves completions through any langchaingo model.
type Adapter struct {
	model       llms.Model
	timeout     time.Duration
	temperature float64
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

func New(cfg Config) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain model: %w", err)
	}
	return NewWithModel(model, cfg), nil
}

func NewWithModel(model llms.Model, cfg Config) *Adapter {
	return &Adapter{
		model:       model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}
}

func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithTemperature(a.temperature))
	if err != nil {
		return "", fmt.Errorf("langchain completion failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
