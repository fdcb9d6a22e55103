// Package summarizer produces AI-generated document summaries with
// configurable length, style, and focus.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/markdown"
)

var (
	// ErrTextTooShort indicates input below the minimum summarizable
	// length.
	ErrTextTooShort = errors.New("text is too short for summarization")
	// ErrInvalidOptions indicates an unrecognized option value.
	ErrInvalidOptions = errors.New("invalid summarization options")
)

const (
	// minTextLength is the smallest input worth summarizing.
	minTextLength = 50
	// maxTextChars bounds the document text sent to a provider. Longer
	// documents keep a leading slice and a trailing slice with an elision
	// marker between them.
	maxTextChars = 32000
	// headShare is the fraction of the budget given to the document head.
	headShare = 0.33

	elisionMarker = "\n\n[...Content truncated due to length...]\n\n"

	summaryTemperature = 0.3
	summaryMaxTokens   = 2500
)

// Length controls how long the summary should be.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Focus controls which aspect of the document the summary emphasizes.
type Focus string

const (
	FocusComprehensive Focus = "comprehensive"
	FocusMethods       Focus = "methods"
	FocusResults       Focus = "results"
	FocusConclusions   Focus = "conclusions"
)

// Options shape the generated summary. Zero values mean medium length,
// paragraph style, comprehensive focus.
type Options struct {
	Length Length         `json:"length"`
	Style  markdown.Style `json:"style"`
	Focus  Focus          `json:"focus"`
}

// ApplyDefaults fills unset fields.
func (o *Options) ApplyDefaults() {
	if o.Length == "" {
		o.Length = LengthMedium
	}
	if o.Style == "" {
		o.Style = markdown.StyleParagraph
	}
	if o.Focus == "" {
		o.Focus = FocusComprehensive
	}
}

// Validate checks option values.
func (o *Options) Validate() error {
	switch o.Length {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return fmt.Errorf("%w: length %q", ErrInvalidOptions, o.Length)
	}
	switch o.Style {
	case markdown.StyleParagraph, markdown.StyleBullet:
	default:
		return fmt.Errorf("%w: style %q", ErrInvalidOptions, o.Style)
	}
	switch o.Focus {
	case FocusComprehensive, FocusMethods, FocusResults, FocusConclusions:
	default:
		return fmt.Errorf("%w: focus %q", ErrInvalidOptions, o.Focus)
	}
	return nil
}

// Result is a generated summary with its provenance.
type Result struct {
	Summary        string        `json:"summary"`
	Model          string        `json:"model"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Summarizer generates document summaries through the provider registry.
type Summarizer struct {
	registry *llm.Registry
	logger   *zap.Logger
}

// New builds a Summarizer.
func New(registry *llm.Registry, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{registry: registry, logger: logger}
}

// Summarize generates a summary of text with the named model. An empty
// model walks the provider priority order instead. The raw model output is
// normalized with the markdown cleaner before it is returned.
func (s *Summarizer) Summarize(ctx context.Context, text, model string, opts Options) (*Result, error) {
	if len(strings.TrimSpace(text)) < minTextLength {
		return nil, ErrTextTooShort
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if len(text) > maxTextChars {
		s.logger.Warn("document exceeds summarization budget, truncating",
			zap.Int("chars", len(text)),
			zap.Int("budget", maxTextChars))
		text = truncate(text)
	}

	providers := s.registry.PreferenceOrder(strings.ToLower(model))
	if len(providers) == 0 {
		return nil, &llm.AllProvidersError{}
	}

	prompt := buildPrompt(text, opts)
	start := time.Now()
	var lastErr error
	attempted := make([]string, 0, len(providers))
	for _, p := range providers {
		attempted = append(attempted, p.Name())
		raw, err := p.Chat(ctx, llm.ChatRequest{
			System:      "You are an expert document summarizer.",
			Messages:    []llm.Turn{{Role: llm.RoleUser, Content: prompt}},
			Temperature: summaryTemperature,
			MaxTokens:   summaryMaxTokens,
		})
		if err != nil {
			lastErr = err
			s.logger.Warn("summarization provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		elapsed := time.Since(start)
		s.logger.Info("summary generated",
			zap.String("provider", p.Name()),
			zap.Duration("elapsed", elapsed))
		return &Result{
			Summary:        markdown.Clean(raw, opts.Style),
			Model:          p.Name(),
			ProcessingTime: elapsed,
		}, nil
	}
	return nil, &llm.AllProvidersError{Attempted: attempted, Last: lastErr}
}

// truncate keeps a leading and a trailing slice of an oversized document
// separated by an elision marker. Both cuts land on rune boundaries so a
// multi-byte character is never split.
func truncate(text string) string {
	head := int(maxTextChars * headShare)
	for head > 0 && !utf8.RuneStart(text[head]) {
		head--
	}
	tail := len(text) - (maxTextChars - int(maxTextChars*headShare))
	for tail < len(text) && !utf8.RuneStart(text[tail]) {
		tail++
	}
	return text[:head] + elisionMarker + text[tail:]
}

func buildPrompt(text string, opts Options) string {
	lengthDesc := map[Length]string{
		LengthShort:  "concise (approximately 150-250 words)",
		LengthMedium: "moderate length (approximately 400-600 words)",
		LengthLong:   "detailed and extensive (approximately 1000-1500 words)",
	}[opts.Length]

	styleDesc := "well-structured paragraphs with clear transitions and sections"
	styleInstructions := `- Use well-structured paragraphs with clear topic sentences
- Group related information in the same paragraph
- Use headers to separate major sections (# for main sections, ## for subsections)`
	if opts.Style == markdown.StyleBullet {
		styleDesc = "organized bullet points with clear sections and subsections"
		styleInstructions = `- Format each main point as a bullet point starting with '- '
- Keep each bullet point concise and focused
- Use headers to organize sections (# for main sections, ## for subsections), followed by bullet points
- Make sure each bullet point appears on a new line`
	}

	focusDesc := map[Focus]string{
		FocusComprehensive: "all key aspects and important details of the document",
		FocusMethods:       "processes, procedures, methods, or technical details",
		FocusResults:       "outcomes, achievements, findings, or key points",
		FocusConclusions:   "conclusions, implications, or final takeaways",
	}[opts.Focus]

	var sb strings.Builder
	sb.WriteString("Create a high-quality ")
	sb.WriteString(lengthDesc)
	sb.WriteString(" summary of the following document. The document could be any type: research paper, article, certificate, report, presentation, or other text.\n\n")
	sb.WriteString("SUMMARY REQUIREMENTS:\n")
	sb.WriteString("- Use " + styleDesc + " for the summary format\n")
	sb.WriteString("- Focus primarily on " + focusDesc + "\n")
	sb.WriteString("- Preserve key statistics, findings, and citations\n")
	sb.WriteString("- Include a brief executive summary at the beginning\n")
	sb.WriteString(styleInstructions)
	sb.WriteString("\n\nFORMATTING REQUIREMENTS:\n")
	sb.WriteString("- Ensure proper spacing in Markdown formatting (e.g., '# Title' not '#Title')\n")
	sb.WriteString("- Use proper formatting for emphasis: **bold** and *italic*\n")
	sb.WriteString("- Ensure bullet points have a space after the marker (e.g., '- Item' not '-Item')\n")
	sb.WriteString("\nDOCUMENT TEXT:\n")
	sb.WriteString(text)
	return sb.String()
}
