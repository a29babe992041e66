package annotate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/local/decknotes/internal/ai"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	calls    int
	text     string
}

func (f *flakyClient) Name() string { return "fake" }

func (f *flakyClient) Do(ctx context.Context, req ai.Request) (ai.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return ai.Response{}, errors.New("upstream hiccup")
	}
	return ai.Response{Text: f.text}, nil
}

func newTestGenerator(c ai.Client) *Generator {
	g := NewGenerator(c, Options{InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
	g.sleep = func(time.Duration) {}
	return g
}

func TestGenerateSucceedsOnLastAttempt(t *testing.T) {
	c := &flakyClient{failures: 4, text: "Explanation: ok"}
	g := newTestGenerator(c)

	text, err := g.Generate(context.Background(), "RL", "slide text", 1)
	require.NoError(t, err)
	require.Equal(t, 5, c.calls)
	require.Contains(t, text, "**Explanation:**")
}

func TestGenerateExhaustsRetries(t *testing.T) {
	c := &flakyClient{failures: 5, text: "never"}
	g := newTestGenerator(c)

	_, err := g.Generate(context.Background(), "RL", "slide text", 3)
	require.Error(t, err)
	require.Equal(t, 5, c.calls)
	require.Contains(t, err.Error(), "page 3")
	require.Contains(t, err.Error(), "after 5 attempts")
}

func TestGenerateNormalizesOutput(t *testing.T) {
	c := &flakyClient{text: "Explanation: uses\u00a0NBSP.\nIntuition: fine."}
	g := newTestGenerator(c)

	text, err := g.Generate(context.Background(), "RL", "slide", 1)
	require.NoError(t, err)
	require.NotContains(t, text, "\u00a0")
	require.Contains(t, text, "**Intuition:**")
}

func TestGenerateHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &flakyClient{failures: 10}
	g := newTestGenerator(c)

	_, err := g.Generate(ctx, "RL", "slide", 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	g := NewGenerator(&flakyClient{}, Options{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second})
	for attempt, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second, 4: 4 * time.Second} {
		d := g.backoff(attempt)
		require.GreaterOrEqual(t, d, want)
		require.Less(t, d, want+time.Second)
	}
}
