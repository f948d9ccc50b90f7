package service

import (
	"context"
	"errors"
	"log/slog"

	"movie-recommendation-service/internal/config"
	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/recommender"
)

// Candidate is a recommended movie. Score is set only by strategies that
// compute one.
type Candidate struct {
	MovieID int
	Score   *int
}

// Strategy produces recommendation candidates for a request.
type Strategy interface {
	Kind() models.Strategy
	Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error)
}

// StatsSource returns per-movie interaction counts.
type StatsSource interface {
	MovieStats(ctx context.Context) (map[int]models.MovieStats, error)
}

// strategyDeps is what every strategy draws from.
type strategyDeps struct {
	snapshots    *SnapshotStore
	interactions InteractionStore
	prefs        PreferenceStore
	stats        StatsSource
	cfg          config.RecommenderConfig
}

func candidates(ids []int) []Candidate {
	out := make([]Candidate, len(ids))
	for i, id := range ids {
		out[i] = Candidate{MovieID: id}
	}
	return out
}

func topN(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}

// NewStrategies returns every strategy keyed by kind.
func NewStrategies(
	snapshots *SnapshotStore,
	interactions InteractionStore,
	prefs PreferenceStore,
	stats StatsSource,
	cfg config.RecommenderConfig,
) map[models.Strategy]Strategy {
	d := &strategyDeps{
		snapshots:    snapshots,
		interactions: interactions,
		prefs:        prefs,
		stats:        stats,
		cfg:          cfg,
	}
	popularity := &popularityStrategy{d}
	list := []Strategy{
		&contentStrategy{d},
		&collaborativeStrategy{d},
		&hybridStrategy{strategyDeps: d, fallback: popularity},
		popularity,
		&personalizedStrategy{d},
	}

	out := make(map[models.Strategy]Strategy, len(list))
	for _, s := range list {
		out[s.Kind()] = s
	}
	return out
}

type contentStrategy struct{ *strategyDeps }

func (s *contentStrategy) Kind() models.Strategy { return models.StrategyContent }

func (s *contentStrategy) Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error) {
	if req.MovieID <= 0 {
		return nil, &models.ValidationError{Field: "movie_id", Message: "required for the content strategy"}
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := recommender.RecommendContentBased(req.MovieID, snap.Content, topN(req.Limit, s.cfg.ContentTopN))
	if err != nil {
		return nil, err
	}
	return candidates(ids), nil
}

type collaborativeStrategy struct{ *strategyDeps }

func (s *collaborativeStrategy) Kind() models.Strategy { return models.StrategyCollaborative }

func (s *collaborativeStrategy) Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := recommender.RecommendUserBased(req.UserID, snap.Matrix, snap.Model, s.cfg.KNNNeighbors, topN(req.Limit, s.cfg.DefaultLimit))
	if err != nil {
		return nil, err
	}
	return candidates(ids), nil
}

// hybridStrategy combines content and collaborative signals. With a movie
// it merges peer-based and content neighbors of that movie. Without one it
// expands the user's liked movies, and users without likes get the most
// liked movies of their preferred genres or of the whole catalog.
type hybridStrategy struct {
	*strategyDeps
	fallback *popularityStrategy
}

func (s *hybridStrategy) Kind() models.Strategy { return models.StrategyHybrid }

func (s *hybridStrategy) Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}

	if req.MovieID > 0 {
		ids, err := recommender.RecommendHybrid(req.UserID, req.MovieID, snap.Matrix, snap.Model, snap.Content, s.cfg.PeerTopN)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			return candidates(ids), nil
		}
		return s.fallback.Recommend(ctx, req)
	}

	ui, err := s.interactions.UserInteractions(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	liked := ui.LikedMovieIDs()
	if len(liked) == 0 {
		return s.fallback.forGenres(ctx, snap, req)
	}

	ids, err := recommender.RecommendFromLikes(
		req.UserID, liked, snap.Matrix, snap.Model, snap.Content,
		s.cfg.ContentTopN, s.cfg.KNNNeighbors, s.cfg.DefaultLimit,
	)
	if err != nil {
		if errors.Is(err, models.ErrInconsistentIndex) {
			return nil, err
		}
		slog.Warn("hybrid recommendation failed, using popularity", "user_id", req.UserID, "error", err)
		ids = nil
	}
	if len(ids) == 0 {
		return s.fallback.Recommend(ctx, req)
	}
	return candidates(ids), nil
}

type popularityStrategy struct{ *strategyDeps }

func (s *popularityStrategy) Kind() models.Strategy { return models.StrategyPopularity }

func (s *popularityStrategy) Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.mostLiked(ctx, snap, nil)
}

// forGenres returns the most liked movies of the user's preferred genres,
// or of the whole catalog when the user has none.
func (s *popularityStrategy) forGenres(ctx context.Context, snap *Snapshot, req models.RecommendationRequest) ([]Candidate, error) {
	prefs, err := s.prefs.ListPreferences(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	genres := make(map[int]bool, len(prefs))
	for _, p := range prefs {
		genres[p.GenreID] = true
	}
	if len(genres) > 0 {
		out, err := s.mostLiked(ctx, snap, genres)
		if err != nil || len(out) > 0 {
			return out, err
		}
	}
	return s.mostLiked(ctx, snap, nil)
}

func (s *popularityStrategy) mostLiked(ctx context.Context, snap *Snapshot, genres map[int]bool) ([]Candidate, error) {
	stats, err := s.stats.MovieStats(ctx)
	if err != nil {
		return nil, err
	}
	likes := make(map[int]int, len(stats))
	for id, st := range stats {
		likes[id] = st.LikesCount
	}
	return candidates(recommender.MostLiked(snap.Catalog, likes, genres, s.cfg.PopularLimit)), nil
}

type personalizedStrategy struct{ *strategyDeps }

func (s *personalizedStrategy) Kind() models.Strategy { return models.StrategyPersonalized }

func (s *personalizedStrategy) Recommend(ctx context.Context, req models.RecommendationRequest) ([]Candidate, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.ListPreferences(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	ui, err := s.interactions.UserInteractions(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	ranked := recommender.RankPersonalized(
		snap.Catalog,
		recommender.SignalsFrom(ui),
		recommender.BuildGenreSets(prefs, ui.Favorites, snap.Catalog),
	)
	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		score := r.Score
		out[i] = Candidate{MovieID: r.MovieID, Score: &score}
	}
	return out, nil
}
