package ai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "os"
    "strings"
)

const responsesURL = "https://api.openai.com/v1/responses"

type OpenAIClient struct {
    http   *http.Client
    apiKey string
}

func NewOpenAIClient() *OpenAIClient {
    return &OpenAIClient{http: &http.Client{}, apiKey: os.Getenv("OPENAI_API_KEY")}
}

func (c *OpenAIClient) Name() string { return "openai" }

type responsesInput struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

type responsesReq struct {
    Model           string            `json:"model"`
    Input           []responsesInput  `json:"input"`
    Reasoning       map[string]string `json:"reasoning,omitempty"`
    Text            map[string]string `json:"text,omitempty"`
    MaxOutputTokens int               `json:"max_output_tokens,omitempty"`
}

type responsesResp struct {
    Output []struct {
        Type    string `json:"type"`
        Content []struct {
            Type string `json:"type"`
            Text string `json:"text"`
        } `json:"content"`
    } `json:"output"`
    Usage struct {
        InputTokens  int `json:"input_tokens"`
        OutputTokens int `json:"output_tokens"`
    } `json:"usage"`
}

func (c *OpenAIClient) Do(ctx context.Context, req Request) (Response, error) {
    if c.apiKey == "" {
        return Response{}, errors.New("missing OPENAI_API_KEY")
    }

    payload := responsesReq{
        Model: req.Model,
        Input: []responsesInput{
            {Role: "system", Content: req.SystemPrompt},
            {Role: "user", Content: req.UserPrompt},
        },
        MaxOutputTokens: req.MaxOutputTokens,
    }
    if req.ReasoningEffort != "" {
        payload.Reasoning = map[string]string{"effort": req.ReasoningEffort}
    }
    if req.Verbosity != "" {
        payload.Text = map[string]string{"verbosity": req.Verbosity}
    }

    body, _ := json.Marshal(payload)
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, responsesURL, bytes.NewReader(body))
    if err != nil {
        return Response{}, err
    }
    httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
    httpReq.Header.Set("Content-Type", "application/json")

    resp, err := c.http.Do(httpReq)
    if err != nil {
        return Response{}, err
    }
    defer resp.Body.Close()

    if resp.StatusCode == http.StatusTooManyRequests {
        return Response{}, ErrRateLimited
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return Response{}, fmt.Errorf("openai status %d", resp.StatusCode)
    }

    var r responsesResp
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        return Response{}, err
    }

    var sb strings.Builder
    for _, out := range r.Output {
        if out.Type != "message" {
            continue
        }
        for _, part := range out.Content {
            if part.Type == "output_text" {
                sb.WriteString(part.Text)
            }
        }
    }
    text := strings.TrimSpace(sb.String())
    if text == "" {
        return Response{}, errors.New("empty output")
    }

    return Response{
        Text:      text,
        TokensIn:  r.Usage.InputTokens,
        TokensOut: r.Usage.OutputTokens,
    }, nil
}
