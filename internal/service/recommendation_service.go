package service

import (
	"context"
	"time"

	"movie-recommendation-service/internal/config"
	"movie-recommendation-service/internal/metrics"
	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/recommender"
)

// MovieReader loads movies and their aggregate counts.
type MovieReader interface {
	MoviesByIDs(ctx context.Context, ids []int) ([]models.Movie, error)
	MovieStats(ctx context.Context) (map[int]models.MovieStats, error)
	RankedForUser(ctx context.Context, userID, limit int) ([]models.MovieListItem, error)
}

// InteractionReader returns a user's interactions.
type InteractionReader interface {
	UserInteractions(ctx context.Context, userID int) (*models.UserInteractions, error)
}

type RecommendationService struct {
	users        UserLookup
	movies       MovieReader
	interactions InteractionReader
	strategies   map[models.Strategy]Strategy
	snapshots    *SnapshotStore
	cache        *ResponseCache
	cfg          config.RecommenderConfig
}

func NewRecommendationService(
	users UserLookup,
	movies MovieReader,
	interactions InteractionReader,
	strategies map[models.Strategy]Strategy,
	snapshots *SnapshotStore,
	cache *ResponseCache,
	cfg config.RecommenderConfig,
) *RecommendationService {
	return &RecommendationService{
		users:        users,
		movies:       movies,
		interactions: interactions,
		strategies:   strategies,
		snapshots:    snapshots,
		cache:        cache,
		cfg:          cfg,
	}
}

// limit resolves the requested result size. Zero selects the default.
func (s *RecommendationService) limit(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, &models.ValidationError{Field: "limit", Message: "must not be negative"}
	case requested == 0:
		return s.cfg.DefaultLimit, nil
	case requested > s.cfg.MaxLimit:
		return s.cfg.MaxLimit, nil
	}
	return requested, nil
}

// Recommend runs the requested strategy for a user and returns the hydrated
// movies in strategy order.
func (s *RecommendationService) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	start := time.Now()
	if req.Strategy == "" {
		req.Strategy = models.StrategyHybrid
	}
	strategy, ok := s.strategies[req.Strategy]
	if !ok {
		return nil, &models.ValidationError{Field: "strategy", Message: "unknown strategy " + string(req.Strategy)}
	}
	limit, err := s.limit(req.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		metrics.ObserveRecommendation(string(req.Strategy), "error", start)
		return nil, err
	}

	// Check Redis cache first; entries of older snapshots are never read
	cacheKey := recommendationKey(req.UserID, snap.Version, req.Strategy, req.MovieID, limit)
	var cached models.RecommendationResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		metrics.ObserveRecommendation(string(req.Strategy), "cached", start)
		return &cached, nil
	}

	resp, err := s.recommend(ctx, strategy, req, limit, snap.Version)
	if err != nil {
		metrics.ObserveRecommendation(string(req.Strategy), "error", start)
		return nil, err
	}
	metrics.ObserveRecommendation(string(req.Strategy), "ok", start)

	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

func (s *RecommendationService) recommend(ctx context.Context, strategy Strategy, req models.RecommendationRequest, limit int, version int64) (*models.RecommendationResponse, error) {
	found, err := strategy.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(found) > limit {
		found = found[:limit]
	}

	items, err := s.hydrate(ctx, req.UserID, found)
	if err != nil {
		return nil, err
	}

	return &models.RecommendationResponse{
		UserID:          req.UserID,
		Strategy:        strategy.Kind(),
		SnapshotVersion: version,
		Recommendations: items,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// hydrate loads the listing details of each candidate, keeping candidate
// order. Candidates whose movie no longer exists are dropped.
func (s *RecommendationService) hydrate(ctx context.Context, userID int, found []Candidate) ([]models.MovieRecommendation, error) {
	out := []models.MovieRecommendation{}
	if len(found) == 0 {
		return out, nil
	}

	ids := make([]int, len(found))
	for i, c := range found {
		ids[i] = c.MovieID
	}
	movies, err := s.movies.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.movies.MovieStats(ctx)
	if err != nil {
		return nil, err
	}
	ui, err := s.interactions.UserInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}
	for _, c := range found {
		m, ok := byID[c.MovieID]
		if !ok {
			continue
		}
		item := models.NewMovieListItem(m, stats[m.ID])
		item.UserInteractions = ui.Flags(m.ID)
		out = append(out, models.MovieRecommendation{MovieListItem: item, Score: c.Score})
	}
	return out, nil
}

// Similar returns the movies whose genres are closest to the given movie.
func (s *RecommendationService) Similar(ctx context.Context, movieID, limit int) ([]models.MovieListItem, error) {
	n, err := s.limit(limit)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := recommender.RecommendContentBased(movieID, snap.Content, n)
	if err != nil {
		return nil, err
	}

	movies, err := s.movies.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.movies.MovieStats(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}

	items := make([]models.MovieListItem, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			items = append(items, models.NewMovieListItem(m, stats[id]))
		}
	}
	return items, nil
}

// Ranked lists unwatched, undisliked movies in the user's favorite genres in
// database order.
func (s *RecommendationService) Ranked(ctx context.Context, userID, limit int) ([]models.MovieListItem, error) {
	n, err := s.limit(limit)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	items, err := s.movies.RankedForUser(ctx, userID, n)
	if err != nil {
		return nil, err
	}
	ui, err := s.interactions.UserInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].UserInteractions = ui.Flags(items[i].ID)
	}
	return items, nil
}

// SnapshotInfo describes the snapshot currently serving recommendations.
func (s *RecommendationService) SnapshotInfo(ctx context.Context) (*models.SnapshotInfo, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	info := snap.Info()
	return &info, nil
}
