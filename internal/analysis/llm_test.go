package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
)

type stubLLMClient struct {
	content string
	err     error
	params  openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

var testCandidates = []string{"price_query", "long_signal", "short_signal"}

func TestLLMIntentModelRanks(t *testing.T) {
	llm := &stubLLMClient{
		content: `[{"label":"long_signal","score":0.8},{"label":"price_query","score":0.6},{"label":"short_signal","score":0.1}]`,
	}
	model := NewLLMIntentModel(llm, "gpt-4o-mini")

	ranked, err := model.RankIntents(context.Background(), "should I long btc", testCandidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked labels, got %d", len(ranked))
	}
	if ranked[0].Label != "long_signal" || ranked[0].Score != 0.8 {
		t.Fatalf("unexpected top rank: %+v", ranked[0])
	}
	if llm.params.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", llm.params.Model)
	}
}

func TestLLMIntentModelTrimsCodeFence(t *testing.T) {
	llm := &stubLLMClient{
		content: "```json\n[{\"label\":\"price_query\",\"score\":0.9}]\n```",
	}
	model := NewLLMIntentModel(llm, "")

	ranked, err := model.RankIntents(context.Background(), "how much is btc", testCandidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Label != "price_query" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
}

func TestLLMIntentModelFiltersAndSorts(t *testing.T) {
	llm := &stubLLMClient{
		content: `[
			{"label":"weather_query","score":0.99},
			{"label":"Price_Query","score":0.4},
			{"label":"long_signal","score":1.7},
			{"label":"long_signal","score":0.2}
		]`,
	}
	model := NewLLMIntentModel(llm, "gpt-4o-mini")

	ranked, err := model.RankIntents(context.Background(), "text", testCandidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked labels after filtering, got %d", len(ranked))
	}
	if ranked[0].Label != "long_signal" || ranked[0].Score != 1.0 {
		t.Fatalf("expected clamped long_signal first, got %+v", ranked[0])
	}
	if ranked[1].Label != "price_query" || ranked[1].Score != 0.4 {
		t.Fatalf("expected normalized price_query second, got %+v", ranked[1])
	}
}

func TestLLMIntentModelNoValidLabels(t *testing.T) {
	llm := &stubLLMClient{content: `[{"label":"unknown","score":0.5}]`}
	model := NewLLMIntentModel(llm, "gpt-4o-mini")

	if _, err := model.RankIntents(context.Background(), "text", testCandidates); err == nil {
		t.Fatal("expected error when no candidate labels are returned")
	}
}

func TestLLMIntentModelBadJSON(t *testing.T) {
	llm := &stubLLMClient{content: "the intent is probably long_signal"}
	model := NewLLMIntentModel(llm, "gpt-4o-mini")

	if _, err := model.RankIntents(context.Background(), "text", testCandidates); err == nil {
		t.Fatal("expected error for non-JSON completion")
	}
}

func TestLLMIntentModelAPIError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("api down")}
	model := NewLLMIntentModel(llm, "gpt-4o-mini")

	if _, err := model.RankIntents(context.Background(), "text", testCandidates); err == nil {
		t.Fatal("expected error from client failure")
	}
}

func TestTrimCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n[]\n```": "[]",
		"```\n[]\n```":     "[]",
		"[]":               "[]",
		"  [1]  ":          "[1]",
	}
	for in, expected := range tests {
		if got := trimCodeFence(in); got != expected {
			t.Fatalf("%q expected %q, got %q", in, expected, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(1.5, 0, 1) != 1 || clamp(-0.2, 0, 1) != 0 || clamp(0.5, 0, 1) != 0.5 {
		t.Fatal("unexpected clamp behaviour")
	}
}
