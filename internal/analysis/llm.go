package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tridxis/price-agent/internal/provider"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// LLMIntentModel ranks the candidate labels with a chat completion instead
// of the zero-shot model. The completion must return strict JSON; anything
// else fails the capability.
type LLMIntentModel struct {
	client LLMClient
	model  string
}

func NewLLMIntentModel(client LLMClient, model string) *LLMIntentModel {
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &LLMIntentModel{client: client, model: model}
}

func (m *LLMIntentModel) RankIntents(ctx context.Context, text string, candidates []string) ([]provider.LabelScore, error) {
	if m == nil || m.client == nil {
		return nil, fmt.Errorf("llm intent model is not configured")
	}

	systemPrompt := "You classify crypto trading questions. Score how well EACH candidate label matches the text on a 0..1 scale. Return ONLY a JSON array of objects {\"label\": string, \"score\": number}, one per candidate, sorted by score descending. No markdown."
	userPrompt := fmt.Sprintf("Candidates: %s\nText: %s", strings.Join(candidates, ", "), text)

	completion, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rank intents: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty intent completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)

	var parsed []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse intent json: %w", err)
	}

	allowed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		allowed[c] = true
	}

	seen := make(map[string]bool, len(parsed))
	ranked := make([]provider.LabelScore, 0, len(parsed))
	for _, row := range parsed {
		label := strings.ToLower(strings.TrimSpace(row.Label))
		if !allowed[label] || seen[label] {
			continue
		}
		seen[label] = true
		ranked = append(ranked, provider.LabelScore{Label: label, Score: clamp(row.Score, 0, 1)})
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no candidate labels in intent completion")
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}
