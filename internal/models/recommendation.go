package models

import "time"

// Strategy names a recommendation strategy.
type Strategy string

const (
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyHybrid        Strategy = "hybrid"
	StrategyPopularity    Strategy = "popularity"
	StrategyPersonalized  Strategy = "personalized"
)

// ParseStrategy validates a strategy name. An empty name selects hybrid.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyHybrid, nil
	case StrategyContent, StrategyCollaborative, StrategyHybrid, StrategyPopularity, StrategyPersonalized:
		return Strategy(s), nil
	}
	return "", &ValidationError{Field: "strategy", Message: "unknown strategy " + s}
}

// RecommendationRequest holds the parameters of a recommendation query.
type RecommendationRequest struct {
	UserID   int
	MovieID  int
	Limit    int
	Strategy Strategy
}

// MovieRecommendation is a recommended movie with its listing details.
type MovieRecommendation struct {
	MovieListItem
	Score *int `json:"score,omitempty"`
}

// RecommendationResponse wraps the recommendation list.
type RecommendationResponse struct {
	UserID          int                   `json:"user_id"`
	Strategy        Strategy              `json:"strategy"`
	SnapshotVersion int64                 `json:"snapshot_version"`
	Recommendations []MovieRecommendation `json:"recommendations"`
	GeneratedAt     string                `json:"generated_at"`
}

// SnapshotInfo describes the recommendation snapshot currently in use.
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Version     int64     `json:"version"`
	BuiltAt     time.Time `json:"built_at"`
	Users       int       `json:"users"`
	Movies      int       `json:"movies"`
	RatingCount int       `json:"rating_count"`
}
