package llm

import (
	"context"
	"fmt"
	"strings"
)

// Answer-generation defaults. Answers stay short and grounded, so the
// temperature is low and the token budget modest.
const (
	answerTemperature = 0.3
	answerMaxTokens   = 800
)

const answerSystemPrompt = `You are a helpful assistant that answers questions about documents.
Answer using only the information in the provided document context.
If the context does not contain the answer, say that the document does not cover it.
Do not invent facts that are not supported by the context.`

// GenerateAnswer asks a provider to answer a question grounded in document
// context. History carries prior conversation turns, oldest first, and may be
// nil. The document context is injected into the final user turn so every
// vendor sees it regardless of how it handles system instructions.
func GenerateAnswer(ctx context.Context, p Provider, question, docContext string, history []Turn) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", ErrGenerationFailed)
	}

	messages := make([]Turn, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Turn{
		Role:    RoleUser,
		Content: fmt.Sprintf("Document context:\n%s\n\nQuestion: %s", docContext, question),
	})

	return p.Chat(ctx, ChatRequest{
		System:      answerSystemPrompt,
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
}
