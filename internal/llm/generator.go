package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

const generatorSystemPrompt = "You are an expert quiz question generator for teachers. " +
	"Generate high-quality multiple choice questions with exactly 4 options each, " +
	"in the language requested by the user."

const submitQuestionsTool = "submit_questions"

// Generator produces multiple choice questions from a summary.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates the question generation adapter.
func NewGenerator(cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: cfg.QuestionModel}, nil
}

// Generate asks the model for params.NumQuestions questions about the
// summary. The returned count is best-effort: malformed questions are
// dropped rather than failing the batch.
func (g *Generator) Generate(ctx context.Context, summary string, params pipeline.GenerationParams) ([]pipeline.Question, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(summary, params)},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        submitQuestionsTool,
					Description: "Submit the generated quiz questions",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"questions": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"question": map[string]any{
											"type":        "string",
											"description": "The question text",
										},
										"options": map[string]any{
											"type":        "array",
											"items":       map[string]any{"type": "string"},
											"description": "Exactly 4 answer options",
										},
										"correctAnswer": map[string]any{
											"type":        "integer",
											"description": "0-based index of the correct option",
										},
										"explanation": map[string]any{
											"type":        "string",
											"description": "Brief explanation of the correct answer",
										},
									},
									"required": []string{"question", "options", "correctAnswer"},
								},
							},
						},
						"required": []string{"questions"},
					},
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: submitQuestionsTool},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate questions: no choices in response")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("generate questions: no tool call in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != submitQuestionsTool {
		return nil, fmt.Errorf("generate questions: unexpected tool call %q", toolCall.Function.Name)
	}

	var args struct {
		Questions []pipeline.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("generate questions: parse tool arguments: %w", err)
	}

	questions := make([]pipeline.Question, 0, len(args.Questions))
	for _, q := range args.Questions {
		// An out-of-range correctAnswer is kept: the scorer treats it
		// as unscoreable. Structurally broken questions are dropped.
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) != 4 {
			continue
		}
		if q.Difficulty == "" {
			q.Difficulty = params.Difficulty
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func buildPrompt(summary string, params pipeline.GenerationParams) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate %d multiple choice questions in the language with ISO code %q.\n",
		params.NumQuestions, params.Language)
	fmt.Fprintf(&sb, "Difficulty: %s. Question style: %s.\n", params.Difficulty, params.QuestionType)
	if params.Topic != "" {
		fmt.Fprintf(&sb, "Focus on the topic: %s.\n", params.Topic)
	}

	sb.WriteString("\nBase every question strictly on this summary:\n\n")
	sb.WriteString(summary)

	sb.WriteString("\n\nRequirements:\n")
	sb.WriteString("- Each question must have exactly 4 options\n")
	sb.WriteString("- Incorrect options must be plausible but clearly wrong\n")
	sb.WriteString("- Questions should test understanding, not just recall\n")
	sb.WriteString("- Use the submit_questions tool to return the questions\n")

	return sb.String()
}
