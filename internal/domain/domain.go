package domain

import "time"

// RankedLabel is one (label, score) pair from a ranked classifier output.
type RankedLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Intent holds the top-ranked intent plus up to two runners-up.
type Intent struct {
	Primary    string        `json:"primary"`
	Confidence float64       `json:"confidence"`
	Secondary  []RankedLabel `json:"secondary"`
}

type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entity is a tagged span after category remapping and value cleanup.
type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the consolidated result returned to callers.
type Analysis struct {
	Intent    Intent    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Entities  []Entity  `json:"entities"`
}

// AnalysisRecord is the persisted form of one analyzed text.
type AnalysisRecord struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	Result    Analysis  `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
