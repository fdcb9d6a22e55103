package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/markdown"
)

type scriptedProvider struct {
	name      string
	available bool
	summary   string
	err       error
	gotReq    llm.ChatRequest
	calls     int
}

func (p *scriptedProvider) Name() string    { return p.name }
func (p *scriptedProvider) Available() bool { return p.available }

func (p *scriptedProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	p.calls++
	p.gotReq = req
	if p.err != nil {
		return "", p.err
	}
	return p.summary, nil
}

func docText() string {
	return strings.Repeat("The study measured enzyme activity across temperature ranges. ", 10)
}

func TestSummarizeRejectsShortText(t *testing.T) {
	s := New(llm.NewRegistry(nil), nil)
	_, err := s.Summarize(context.Background(), "too short", "gemini", Options{})
	require.ErrorIs(t, err, ErrTextTooShort)

	// Whitespace does not count toward the minimum.
	_, err = s.Summarize(context.Background(), strings.Repeat(" ", 200)+"x", "gemini", Options{})
	require.ErrorIs(t, err, ErrTextTooShort)
}

func TestSummarizeRejectsBadOptions(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, available: true, summary: "ok"}
	s := New(llm.NewRegistry(nil, p), nil)

	_, err := s.Summarize(context.Background(), docText(), "gemini", Options{Length: "gigantic"})
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = s.Summarize(context.Background(), docText(), "gemini", Options{Focus: "gossip"})
	require.ErrorIs(t, err, ErrInvalidOptions)
	assert.Zero(t, p.calls)
}

func TestSummarizeRequestedModel(t *testing.T) {
	gemini := &scriptedProvider{name: llm.ProviderGemini, available: true, summary: "from gemini"}
	claude := &scriptedProvider{name: llm.ProviderClaude, available: true, summary: "A fine summary of the study."}
	s := New(llm.NewRegistry(nil, gemini, claude), nil)

	result, err := s.Summarize(context.Background(), docText(), "claude", Options{})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderClaude, result.Model)
	assert.Equal(t, "A fine summary of the study.", result.Summary)
	assert.GreaterOrEqual(t, result.ProcessingTime.Nanoseconds(), int64(0))
	assert.Zero(t, gemini.calls)

	assert.Equal(t, summaryMaxTokens, claude.gotReq.MaxTokens)
	require.Len(t, claude.gotReq.Messages, 1)
	prompt := claude.gotReq.Messages[0].Content
	assert.Contains(t, prompt, "moderate length")
	assert.Contains(t, prompt, "all key aspects")
	assert.Contains(t, prompt, "DOCUMENT TEXT:")
	assert.Contains(t, prompt, "enzyme activity")
}

func TestSummarizeFallsBackAcrossProviders(t *testing.T) {
	gemini := &scriptedProvider{name: llm.ProviderGemini, available: true, err: errors.New("overloaded")}
	openai := &scriptedProvider{name: llm.ProviderOpenAI, available: true, summary: "openai summary text"}
	s := New(llm.NewRegistry(nil, gemini, openai), nil)

	result, err := s.Summarize(context.Background(), docText(), "", Options{})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, result.Model)
	assert.Equal(t, 1, gemini.calls)
}

func TestSummarizeAllProvidersFail(t *testing.T) {
	boom := errors.New("down")
	gemini := &scriptedProvider{name: llm.ProviderGemini, available: true, err: boom}
	s := New(llm.NewRegistry(nil, gemini), nil)

	_, err := s.Summarize(context.Background(), docText(), "", Options{})
	var allFailed *llm.AllProvidersError
	require.ErrorAs(t, err, &allFailed)
	assert.ErrorIs(t, err, boom)
}

func TestSummarizeNoProviders(t *testing.T) {
	s := New(llm.NewRegistry(nil), nil)
	_, err := s.Summarize(context.Background(), docText(), "gemini", Options{})
	var allFailed *llm.AllProvidersError
	require.ErrorAs(t, err, &allFailed)
}

func TestSummarizeTruncatesLongDocuments(t *testing.T) {
	head := strings.Repeat("A", 20000)
	tail := strings.Repeat("Z", 20000)
	p := &scriptedProvider{name: llm.ProviderGemini, available: true, summary: "summary of a long document"}
	s := New(llm.NewRegistry(nil, p), nil)

	_, err := s.Summarize(context.Background(), head+tail, "gemini", Options{})
	require.NoError(t, err)

	prompt := p.gotReq.Messages[0].Content
	assert.Contains(t, prompt, "Content truncated due to length")
	// Head keeps roughly a third of the budget, tail the rest.
	assert.Contains(t, prompt, strings.Repeat("A", int(maxTextChars*headShare)))
	assert.Contains(t, prompt, tail)
	assert.NotContains(t, prompt, strings.Repeat("A", 12000))
}

func TestSummarizeTruncationKeepsRuneBoundaries(t *testing.T) {
	// Both cut points land inside a 3-byte rune; the truncation must move
	// them to rune boundaries instead of splitting the character.
	text := "a" + strings.Repeat("你", 12000)
	p := &scriptedProvider{name: llm.ProviderGemini, available: true, summary: "ok"}
	s := New(llm.NewRegistry(nil, p), nil)

	_, err := s.Summarize(context.Background(), text, "gemini", Options{})
	require.NoError(t, err)

	prompt := p.gotReq.Messages[0].Content
	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, "Content truncated due to length")
}

func TestSummarizeCleansOutput(t *testing.T) {
	p := &scriptedProvider{
		name:      llm.ProviderGemini,
		available: true,
		summary:   "#Overview\nThe study used ** novel ** {methods}.",
	}
	s := New(llm.NewRegistry(nil, p), nil)

	result, err := s.Summarize(context.Background(), docText(), "gemini", Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "# Overview")
	assert.Contains(t, result.Summary, "**novel**")
	assert.NotContains(t, result.Summary, "{")
}

func TestSummarizeBulletStylePrompt(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, available: true, summary: "ok summary"}
	s := New(llm.NewRegistry(nil, p), nil)

	_, err := s.Summarize(context.Background(), docText(), "gemini", Options{
		Length: LengthShort,
		Style:  markdown.StyleBullet,
		Focus:  FocusResults,
	})
	require.NoError(t, err)

	prompt := p.gotReq.Messages[0].Content
	assert.Contains(t, prompt, "bullet point")
	assert.Contains(t, prompt, "concise (approximately 150-250 words)")
	assert.Contains(t, prompt, "outcomes, achievements, findings")
}
