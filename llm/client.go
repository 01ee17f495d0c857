package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/m3rciful/puzzlebot/core/logger"
)

// FallbackAnswer replaces the advisory answer text when the provider omits
// the delimiter. The session still proceeds with the generated puzzle text.
const FallbackAnswer = "No answer found"

// answerDelimiter separates puzzle text from the answer in generation
// responses, and prefixes verdicts for correct answers.
const answerDelimiter = "$"

const systemPrompt = "You are an assistant that creates and solves puzzles. " +
	"Never use markdown in your replies."

// Client implements PuzzleGenerator, HintGenerator, and AnswerVerifier on top
// of an OpenAI-compatible chat completion API.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	maxRetries  uint64
}

var (
	_ PuzzleGenerator = (*Client)(nil)
	_ HintGenerator   = (*Client)(nil)
	_ AnswerVerifier  = (*Client)(nil)
)

// NewClient builds a Client from normalized configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries:  uint64(cfg.MaxRetries),
	}, nil
}

// GeneratePuzzle asks the provider for a puzzle and its answer, separated by
// the delimiter. A missing delimiter yields the partial Puzzle together with
// a GenerationError so the caller can substitute FallbackAnswer.
func (c *Client) GeneratePuzzle(ctx context.Context, category, difficulty, userContext string) (Puzzle, error) {
	prompt := fmt.Sprintf(
		"Create a unique %q puzzle with difficulty level %q.\n\n"+
			"Context: %s\n"+
			"Reply with the puzzle text and the correct answer with a short "+
			"explanation, separated by a single %s character, so the reply "+
			"splits into exactly two parts.",
		category, difficulty, userContext, answerDelimiter,
	)

	raw, err := c.chat(ctx, "generate_puzzle", prompt)
	if err != nil {
		return Puzzle{}, err
	}

	text, answer, found := strings.Cut(raw, answerDelimiter)
	p := Puzzle{
		Text:       strings.TrimSpace(text),
		AnswerHint: strings.TrimSpace(answer),
	}
	if p.Text == "" {
		return Puzzle{}, &GenerationError{Raw: raw, Err: errors.New("empty puzzle text")}
	}
	if !found || p.AnswerHint == "" {
		return p, &GenerationError{Raw: raw, Err: errors.New("answer delimiter not found")}
	}
	return p, nil
}

// GenerateHint asks the provider for one short hint that nudges without
// revealing the answer.
func (c *Client) GenerateHint(ctx context.Context, puzzleText, userContext string) (string, error) {
	prompt := fmt.Sprintf(
		"Give one short hint for the following puzzle:\n"+
			"Puzzle: %s\n"+
			"Context: %s\n"+
			"Do not reveal the answer, only nudge towards the approach.",
		puzzleText, userContext,
	)

	hint, err := c.chat(ctx, "generate_hint", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(hint), nil
}

// VerifyAnswer asks the provider to judge the user's answer. Correct verdicts
// arrive prefixed with the delimiter, which is stripped from the explanation.
func (c *Client) VerifyAnswer(ctx context.Context, puzzleText, userAnswer, userContext string) (Verdict, error) {
	prompt := fmt.Sprintf(
		"Check the user's answer to the following puzzle:\n"+
			"Puzzle: %s\n"+
			"User answer: %s\n"+
			"Context: %s\n"+
			"Say whether the answer is correct and explain why. If it is "+
			"wrong, explain why without revealing the correct answer. If it "+
			"is definitely correct, prefix your whole reply with a single %s "+
			"character. Your reply is sent to the user directly, so address "+
			"them personally.",
		puzzleText, userAnswer, userContext, answerDelimiter,
	)

	raw, err := c.chat(ctx, "verify_answer", prompt)
	if err != nil {
		return Verdict{}, err
	}

	reply := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(reply, answerDelimiter); ok {
		return Verdict{Correct: true, Explanation: strings.TrimSpace(rest)}, nil
	}
	return Verdict{Correct: false, Explanation: reply}, nil
}

func (c *Client) chat(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	start := time.Now()
	var content string
	attempt := 0

	operation := func() error {
		attempt++
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			logger.Debug(ctx, "llm", "chat.retry",
				slog.String("op", op),
				slog.Int("attempts", attempt),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("no choices in response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		logger.Error(ctx, "llm", "chat.fail",
			slog.String("op", op),
			slog.String("status", "fail"),
			slog.Int("attempts", attempt),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return "", &UnavailableError{Op: op, Err: err}
	}

	logger.Debug(ctx, "llm", "chat.ok",
		slog.String("op", op),
		slog.String("status", "ok"),
		slog.Int("attempts", attempt),
		slog.Duration("duration", logger.Took(start)),
	)
	return content, nil
}

// retryable reports whether the provider error is worth another attempt:
// rate limits, server-side failures, and transport errors are; any other API
// rejection is permanent.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
