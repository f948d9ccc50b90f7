package service

import (
	"context"
	"log/slog"

	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/validation"
)

// InteractionStore persists user interactions with movies.
type InteractionStore interface {
	UpsertRating(ctx context.Context, userID int, req models.RateRequest) (*models.Rating, bool, error)
	SetLike(ctx context.Context, userID, movieID int, action models.LikeAction) (*models.LikeDislike, error)
	AddFavorite(ctx context.Context, userID, movieID int) (*models.FavoriteMovie, bool, error)
	MarkWatched(ctx context.Context, userID, movieID int) (*models.WatchedMovie, error)
	UserInteractions(ctx context.Context, userID int) (*models.UserInteractions, error)
}

// GenreLookup returns the genres of a movie.
type GenreLookup interface {
	GenreIDsForMovie(ctx context.Context, movieID int) ([]int, error)
}

// Ledger weights applied by interaction events.
const (
	ratingFavoriteThreshold = 4.0
	ratingAvoidThreshold    = 2.0
	eventWeight             = 1
)

// InteractionService records ratings, likes, favorites and views, and feeds
// each event into the preference ledger.
type InteractionService struct {
	store     InteractionStore
	genres    GenreLookup
	prefs     *PreferenceService
	snapshots *SnapshotStore
	cache     *ResponseCache
}

func NewInteractionService(
	store InteractionStore,
	genres GenreLookup,
	prefs *PreferenceService,
	snapshots *SnapshotStore,
	cache *ResponseCache,
) *InteractionService {
	return &InteractionService{
		store:     store,
		genres:    genres,
		prefs:     prefs,
		snapshots: snapshots,
		cache:     cache,
	}
}

// Rate creates or updates a rating. Ratings of 4 and above favor the
// movie's genres, ratings of 2 and below push them toward avoid.
func (s *InteractionService) Rate(ctx context.Context, userID int, req models.RateRequest) (*models.RatingResult, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}

	rating, created, err := s.store.UpsertRating(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.snapshots.NoteRatingWrite()

	switch {
	case rating.Value >= ratingFavoriteThreshold:
		s.applyToGenres(ctx, "rating", userID, req.MovieID, models.PreferenceFavorite)
	case rating.Value <= ratingAvoidThreshold:
		s.applyToGenres(ctx, "rating", userID, req.MovieID, models.PreferenceAvoid)
	}
	s.cache.InvalidateUser(ctx, userID)

	return &models.RatingResult{Rating: rating, Created: created}, nil
}

// Like records a like, dislike or the removal of either.
func (s *InteractionService) Like(ctx context.Context, userID int, req models.LikeRequest) (*models.LikeDislike, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}

	ld, err := s.store.SetLike(ctx, userID, req.MovieID, req.Action)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case models.ActionLike:
		s.applyToGenres(ctx, "like", userID, req.MovieID, models.PreferenceFavorite)
	case models.ActionDislike:
		s.applyToGenres(ctx, "dislike", userID, req.MovieID, models.PreferenceAvoid)
	}
	s.cache.InvalidateUser(ctx, userID)

	return ld, nil
}

// Favorite adds a movie to the user's favorites. Only a new favorite moves
// the ledger.
func (s *InteractionService) Favorite(ctx context.Context, userID int, req models.MovieRequest) (*models.FavoriteResult, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}

	fav, created, err := s.store.AddFavorite(ctx, userID, req.MovieID)
	if err != nil {
		return nil, err
	}
	if created {
		s.applyToGenres(ctx, "favorite", userID, req.MovieID, models.PreferenceFavorite)
		s.cache.InvalidateUser(ctx, userID)
	}

	return &models.FavoriteResult{Favorite: fav, AlreadyFavorited: !created}, nil
}

// Watch records a viewing. Every viewing favors the movie's genres.
func (s *InteractionService) Watch(ctx context.Context, userID int, req models.MovieRequest) (*models.WatchedMovie, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}

	w, err := s.store.MarkWatched(ctx, userID, req.MovieID)
	if err != nil {
		return nil, err
	}
	s.applyToGenres(ctx, "watched", userID, req.MovieID, models.PreferenceFavorite)
	s.cache.InvalidateUser(ctx, userID)

	return w, nil
}

// applyToGenres adjusts the ledger for every genre of a movie. The event
// itself is already stored, so failures are logged rather than returned.
func (s *InteractionService) applyToGenres(ctx context.Context, source string, userID, movieID int, action models.PreferenceType) {
	genreIDs, err := s.genres.GenreIDsForMovie(ctx, movieID)
	if err != nil {
		slog.Error("failed to load movie genres for preference update",
			"user_id", userID, "movie_id", movieID, "error", err)
		return
	}
	if len(genreIDs) == 0 {
		return
	}
	if _, err := s.prefs.adjust(ctx, source, userID, genreIDs, action, eventWeight); err != nil {
		slog.Warn("preference update partially failed",
			"user_id", userID, "movie_id", movieID, "source", source, "error", err)
	}
}
