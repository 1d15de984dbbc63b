package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const hfBaseURL = "https://api-inference.huggingface.co"

// LabelScore is one ranked classification result.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TokenEntity is one aggregated span from the token classifier.
type TokenEntity struct {
	Group string  `json:"entity_group"`
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// HuggingFaceProvider calls hosted inference endpoints for the three
// capabilities: sentiment classification, zero-shot intent ranking and
// token classification. Each call is a single POST; cold models are
// waited for instead of retried.
type HuggingFaceProvider struct {
	client  *http.Client
	baseURL string
	token   string
	tracer  trace.Tracer
	limiter *RateLimiter

	sentimentModel string
	intentModel    string
	nerModel       string
}

type HuggingFaceConfig struct {
	BaseURL        string
	Token          string
	SentimentModel string
	IntentModel    string
	NERModel       string
	MaxRPS         int
}

func NewHuggingFaceProvider(tracer trace.Tracer, cfg HuggingFaceConfig) *HuggingFaceProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = hfBaseURL
	}
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = "ProsusAI/finbert"
	}
	if cfg.IntentModel == "" {
		cfg.IntentModel = "facebook/bart-large-mnli"
	}
	if cfg.NERModel == "" {
		cfg.NERModel = "Jean-Baptiste/camembert-ner-with-dates"
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 8
	}

	return &HuggingFaceProvider{
		client:         &http.Client{Timeout: 60 * time.Second},
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		tracer:         tracer,
		limiter:        NewRateLimiter(cfg.MaxRPS),
		sentimentModel: cfg.SentimentModel,
		intentModel:    cfg.IntentModel,
		nerModel:       cfg.NERModel,
	}
}

type inferenceRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

func waitForModel() map[string]interface{} {
	return map[string]interface{}{"wait_for_model": true}
}

// ClassifySentiment returns the top sentiment label for text.
func (p *HuggingFaceProvider) ClassifySentiment(ctx context.Context, text string) (LabelScore, error) {
	_, span := p.tracer.Start(ctx, "huggingface.classify-sentiment")
	defer span.End()

	body, err := p.doRequest(ctx, p.sentimentModel, inferenceRequest{Inputs: text, Options: waitForModel()})
	if err != nil {
		return LabelScore{}, fmt.Errorf("classify sentiment: %w", err)
	}

	// Response shape: [[{"label": "positive", "score": 0.98}, ...]]
	var raw [][]LabelScore
	if err := json.Unmarshal(body, &raw); err != nil {
		return LabelScore{}, fmt.Errorf("parse sentiment response: %w", err)
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return LabelScore{}, fmt.Errorf("sentiment model returned no labels")
	}

	top := raw[0][0]
	for _, ls := range raw[0][1:] {
		if ls.Score > top.Score {
			top = ls
		}
	}
	return top, nil
}

// RankIntents scores text against the candidate labels and returns the
// ranking in descending score order, as produced by the model.
func (p *HuggingFaceProvider) RankIntents(ctx context.Context, text string, candidates []string) ([]LabelScore, error) {
	_, span := p.tracer.Start(ctx, "huggingface.rank-intents")
	defer span.End()

	req := inferenceRequest{
		Inputs: text,
		Parameters: map[string]interface{}{
			"candidate_labels": candidates,
			"multi_label":      true,
		},
		Options: waitForModel(),
	}
	body, err := p.doRequest(ctx, p.intentModel, req)
	if err != nil {
		return nil, fmt.Errorf("rank intents: %w", err)
	}

	// Response shape: {"sequence": "...", "labels": [...], "scores": [...]}
	var raw struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse intent response: %w", err)
	}
	if len(raw.Labels) != len(raw.Scores) {
		return nil, fmt.Errorf("intent response label/score mismatch: %d vs %d", len(raw.Labels), len(raw.Scores))
	}

	ranked := make([]LabelScore, 0, len(raw.Labels))
	for i, label := range raw.Labels {
		ranked = append(ranked, LabelScore{Label: label, Score: raw.Scores[i]})
	}
	return ranked, nil
}

// TagEntities returns aggregated entity spans for text.
func (p *HuggingFaceProvider) TagEntities(ctx context.Context, text string) ([]TokenEntity, error) {
	_, span := p.tracer.Start(ctx, "huggingface.tag-entities")
	defer span.End()

	req := inferenceRequest{
		Inputs:     text,
		Parameters: map[string]interface{}{"aggregation_strategy": "simple"},
		Options:    waitForModel(),
	}
	body, err := p.doRequest(ctx, p.nerModel, req)
	if err != nil {
		return nil, fmt.Errorf("tag entities: %w", err)
	}

	// Response shape: [{"entity_group": "ORG", "word": "$BTC", "score": 0.91, "start": 0, "end": 4}]
	var raw []TokenEntity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse entity response: %w", err)
	}
	return raw, nil
}

func (p *HuggingFaceProvider) doRequest(ctx context.Context, model string, payload inferenceRequest) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s", p.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
