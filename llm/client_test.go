package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves OpenAI-style chat completions with canned replies.
type fakeProvider struct {
	srv   *httptest.Server
	reply atomic.Value
	fail  atomic.Int32
	calls atomic.Int32
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}
	p.reply.Store("")
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p.calls.Add(1)
		if p.fail.Load() > 0 {
			p.fail.Add(-1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := map[string]any{
			"id":    "chatcmpl-test",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": p.reply.Load()}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        p.srv.URL + "/v1",
		TimeoutSeconds: 5,
		MaxRetries:     2,
	})
	require.NoError(t, err)
	return c
}

func TestGeneratePuzzleSplitsOnDelimiter(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("What has keys but no locks? $ A piano, because its keys make music.")

	puzzle, err := p.client(t).GeneratePuzzle(context.Background(), "riddles", "easy", "")
	require.NoError(t, err)
	assert.Equal(t, "What has keys but no locks?", puzzle.Text)
	assert.Equal(t, "A piano, because its keys make music.", puzzle.AnswerHint)
}

func TestGeneratePuzzleMissingDelimiter(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("What has keys but no locks?")

	puzzle, err := p.client(t).GeneratePuzzle(context.Background(), "riddles", "easy", "")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "What has keys but no locks?", puzzle.Text)
	assert.Empty(t, puzzle.AnswerHint)
}

func TestGeneratePuzzleEmptyResponse(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("  $  ")

	puzzle, err := p.client(t).GeneratePuzzle(context.Background(), "logic", "hard", "")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Empty(t, puzzle.Text)
}

func TestVerifyAnswerCorrectPrefix(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("$ Well done, a piano is exactly right.")

	verdict, err := p.client(t).VerifyAnswer(context.Background(), "puzzle", "a piano", "")
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	assert.Equal(t, "Well done, a piano is exactly right.", verdict.Explanation)
}

func TestVerifyAnswerWrong(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("Not quite, think about instruments.")

	verdict, err := p.client(t).VerifyAnswer(context.Background(), "puzzle", "a map", "")
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.Equal(t, "Not quite, think about instruments.", verdict.Explanation)
}

func TestGenerateHintTrimmed(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("  Think about music.  ")

	hint, err := p.client(t).GenerateHint(context.Background(), "puzzle", "")
	require.NoError(t, err)
	assert.Equal(t, "Think about music.", hint)
}

func TestChatRetriesServerErrors(t *testing.T) {
	p := newFakeProvider(t)
	p.reply.Store("recovered $ answer")
	p.fail.Store(2)

	puzzle, err := p.client(t).GeneratePuzzle(context.Background(), "math", "medium", "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", puzzle.Text)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestChatExhaustedRetries(t *testing.T) {
	p := newFakeProvider(t)
	p.fail.Store(10)

	_, err := p.client(t).GeneratePuzzle(context.Background(), "math", "medium", "")
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "llm_unavailable", unavailable.Code())
}

func TestChatCancelledContext(t *testing.T) {
	p := newFakeProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.client(t).GenerateHint(ctx, "puzzle", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	// No request may reach the provider once the context is dead.
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 60, cfg.TimeoutSeconds)

	var empty Config
	assert.Error(t, empty.Normalize())
}
