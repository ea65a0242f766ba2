package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

const summarizerSystemPrompt = "You are an expert at summarizing educational material. " +
	"Produce a dense, factual summary that preserves names, dates, definitions, and key " +
	"relationships, because the summary will be used to generate quiz questions. " +
	"Write the summary in the language requested by the user."

// Summarizer condenses extracted document text into a summary.
type Summarizer struct {
	client *openai.Client
	model  string
}

// NewSummarizer creates the summarization adapter.
func NewSummarizer(cfg Config) (*Summarizer, error) {
	cfg = cfg.withDefaults()
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Summarizer{client: client, model: cfg.SummaryModel}, nil
}

// Summarize produces a summary of text in the given language. style
// hints at the register ("educational", "concise").
func (s *Summarizer) Summarize(ctx context.Context, text, style, language string) (*pipeline.SummaryResult, error) {
	prompt := fmt.Sprintf(
		"Summarize the following material in a %s style, in the language with ISO code %q. "+
			"Return ONLY the summary text, no preamble.\n\n%s",
		style, language, text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("summarize: no choices in response")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	return &pipeline.SummaryResult{
		Summary:   summary,
		WordCount: len(strings.Fields(summary)),
	}, nil
}
