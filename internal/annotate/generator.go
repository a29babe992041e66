package annotate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/decknotes/internal/ai"
	"github.com/local/decknotes/internal/metrics"
)

// Options bound the generation call and its retry policy.
type Options struct {
	Model           string
	MaxOutputTokens int
	ReasoningEffort string
	Verbosity       string
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
}

func (o *Options) defaults() {
	if o.Model == "" {
		o.Model = "gpt-5"
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = 2000
	}
	if o.ReasoningEffort == "" {
		o.ReasoningEffort = "low"
	}
	if o.Verbosity == "" {
		o.Verbosity = "medium"
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 20 * time.Second
	}
}

// Generator produces normalized annotation text for one slide.
type Generator struct {
	client ai.Client
	opts   Options
	sleep  func(time.Duration)
}

func NewGenerator(client ai.Client, opts Options) *Generator {
	opts.defaults()
	return &Generator{client: client, opts: opts, sleep: time.Sleep}
}

// Generate builds the prompt for one page and calls the text-generation
// service, retrying any failure with exponential backoff and jitter.
// Exhausting all attempts returns the last error; the caller treats that as
// fatal for the run.
func (g *Generator) Generate(ctx context.Context, courseName, slideText string, page int) (string, error) {
	req := ai.Request{
		Model:           g.opts.Model,
		SystemPrompt:    systemPrompt,
		UserPrompt:      BuildUserPrompt(courseName, slideText, page),
		MaxOutputTokens: g.opts.MaxOutputTokens,
		ReasoningEffort: g.opts.ReasoningEffort,
		Verbosity:       g.opts.Verbosity,
	}

	var lastErr error
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		start := time.Now()
		resp, err := g.client.Do(ctx, req)
		metrics.ObserveGeneration(g.client.Name(), g.opts.Model, result(err), time.Since(start))
		if err == nil {
			return Normalize(resp.Text), nil
		}
		lastErr = err
		log.Warn().Err(err).
			Int("page", page).
			Int("attempt", attempt).
			Int("max_attempts", g.opts.MaxAttempts).
			Msg("annotation generation failed")
		if attempt == g.opts.MaxAttempts {
			break
		}
		metrics.IncGenerationRetry()
		delay := g.backoff(attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		g.sleep(delay)
	}
	return "", fmt.Errorf("annotation generation for page %d failed after %d attempts: %w", page, g.opts.MaxAttempts, lastErr)
}

// backoff returns the delay before the next attempt: exponential growth
// capped at MaxBackoff, plus up to one second of jitter.
func (g *Generator) backoff(attempt int) time.Duration {
	d := g.opts.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= g.opts.MaxBackoff {
			d = g.opts.MaxBackoff
			break
		}
	}
	return d + time.Duration(rand.Int63n(int64(time.Second)))
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if ai.IsRateLimited(err) {
		return "rate_limited"
	}
	return "error"
}
