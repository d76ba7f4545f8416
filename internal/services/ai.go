package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/stepflow-api/internal/constants"
	"github.com/yukikurage/stepflow-api/internal/models"
)

// SuggestedStep is a proposed step that has not been persisted
type SuggestedStep struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subtasks    []string `json:"subtasks"`
}

// StepPlanner proposes the next steps for a project
type StepPlanner interface {
	SuggestSteps(ctx context.Context, project *models.Project, existing []models.Step) ([]SuggestedStep, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestSteps asks the model for steps that continue the project's existing plan
func (s *AIService) SuggestSteps(ctx context.Context, project *models.Project, existing []models.Step) ([]SuggestedStep, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPlanPrompt(project, existing),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestedSteps(resp.Choices[0].Message.Content)
}

func buildPlanPrompt(project *models.Project, existing []models.Step) string {
	var current strings.Builder
	for _, step := range existing {
		fmt.Fprintf(&current, "%d. %s\n", step.Order+1, step.Title)
	}
	if current.Len() == 0 {
		current.WriteString("(none yet)\n")
	}

	return fmt.Sprintf(`You are a project planning assistant. Propose the next steps for the project below.

Project: %s
Description: %s

Existing steps, in order:
%s
Return a JSON array of at most %d objects in this format:
[
  {
    "title": "short step title",
    "description": "what finishing this step means",
    "subtasks": ["concrete subtask", "..."]
  }
]

Rules:
- Do not repeat existing steps
- Order the array in the sequence the steps should be done
- Return [] if the plan is already complete
- Return only JSON, with no explanation`, project.Name, project.Description, current.String(), constants.MaxAISuggestedSteps)
}

// parseSuggestedSteps decodes the model output, tolerating a markdown code fence,
// and drops entries without a title.
func parseSuggestedSteps(content string) ([]SuggestedStep, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var raw []SuggestedStep
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	steps := make([]SuggestedStep, 0, len(raw))
	for _, step := range raw {
		step.Title = strings.TrimSpace(step.Title)
		if step.Title == "" {
			continue
		}
		subtasks := step.Subtasks[:0]
		for _, st := range step.Subtasks {
			if st = strings.TrimSpace(st); st != "" {
				subtasks = append(subtasks, st)
			}
		}
		step.Subtasks = subtasks
		steps = append(steps, step)
		if len(steps) == constants.MaxAISuggestedSteps {
			break
		}
	}
	return steps, nil
}
