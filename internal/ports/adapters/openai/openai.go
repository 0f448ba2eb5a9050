// Package openai adapts the OpenAI chat-completions API (or any
// compatible gateway) to the ports.Completer interface.
package openai

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"golang.org/x/time/rate"

	"github.com/iamwhitegod/arena/internal/ports"
)

const (
	defaultModel   = "gpt-4o"
	requestTimeout = 90 * time.Second
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// Limiter paces outbound requests. Nil disables pacing.
	Limiter *rate.Limiter

	Retry RetryPolicy
}

type Adapter struct {
	client  oa.Client
	model   string
	limiter *rate.Limiter
	retry   RetryPolicy
}

func New(cfg Config) *Adapter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		client:  oa.NewClient(opts...),
		model:   model,
		limiter: cfg.Limiter,
		retry:   cfg.Retry,
	}
}

// Complete sends one chat request and returns the raw response content.
// Rate-limit errors are retried with exponential backoff; any other error
// is final for this unit of work.
func (a *Adapter) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.completeOnce(ctx, req)
	})
}

func (a *Adapter) completeOnce(ctx context.Context, req ports.CompletionRequest) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	params := oa.ChatCompletionNewParams{
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(req.System),
			oa.UserMessage(req.User),
		},
		Model:       a.model,
		Temperature: oa.Float(req.Temperature),
		ResponseFormat: oa.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	resp, err := a.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ports.ParseError{Msg: "response has no choices"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &ports.ParseError{Msg: "response content is empty"}
	}
	return content, nil
}

var retryAfterRE = regexp.MustCompile(`try again in (\d+\.?\d*)s`)

// classify maps transport errors to the pipeline's error taxonomy. The SDK
// surfaces rate limits as plain errors, so we match on the status code and
// the canonical error string the way the gateway reports them.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate_limit_exceeded") {
		return &ports.RateLimitError{RetryAfter: parseRetryAfter(msg), Err: err}
	}
	return err
}

// parseRetryAfter pulls the server-suggested wait out of a rate-limit
// message, adding a one-second buffer. Returns zero when absent.
func parseRetryAfter(msg string) time.Duration {
	m := retryAfterRE.FindStringSubmatch(msg)
	if len(m) != 2 {
		return 0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration((secs+1)*float64(time.Second))
}

var _ ports.Completer = (*Adapter)(nil)
