package ai

import (
    "context"
    "errors"
)

// Request carries one annotation generation request.
type Request struct {
    Model           string
    SystemPrompt    string
    UserPrompt      string
    MaxOutputTokens int
    ReasoningEffort string
    Verbosity       string
}

type Response struct {
    Text      string
    TokensIn  int
    TokensOut int
}

// Client is the remote text-generation service. Injected into the
// generator so tests can substitute a fake.
type Client interface {
    Name() string
    Do(ctx context.Context, req Request) (Response, error)
}

var ErrRateLimited = errors.New("rate_limited")

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
