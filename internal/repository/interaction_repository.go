package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"movie-recommendation-service/internal/models"
)

// InteractionRepository persists ratings, likes, favorites and watch counts.
type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// UpsertRating creates or replaces the rating of a user for a movie.
// created reports whether a new row was inserted.
func (r *InteractionRepository) UpsertRating(ctx context.Context, userID int, req models.RateRequest) (*models.Rating, bool, error) {
	var (
		rating  models.Rating
		created bool
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating, review)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			review = EXCLUDED.review
		RETURNING id, user_id, movie_id, rating, review, created_at, (xmax = 0)
	`, userID, req.MovieID, req.Rating, req.Review).Scan(
		&rating.ID, &rating.UserID, &rating.MovieID,
		&rating.Value, &rating.Review, &rating.CreatedAt, &created,
	)
	if err != nil {
		return nil, false, translate(err, "upsert rating")
	}
	return &rating, created, nil
}

// SetLike records the like/dislike state of a user for a movie.
func (r *InteractionRepository) SetLike(ctx context.Context, userID, movieID int, action models.LikeAction) (*models.LikeDislike, error) {
	var ld models.LikeDislike
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO like_dislikes (user_id, movie_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			action = EXCLUDED.action,
			created_at = NOW()
		RETURNING id, user_id, movie_id, action, created_at
	`, userID, movieID, action).Scan(&ld.ID, &ld.UserID, &ld.MovieID, &ld.Action, &ld.CreatedAt)
	if err != nil {
		return nil, translate(err, "set like")
	}
	return &ld, nil
}

// AddFavorite marks a movie as favorite. Adding an existing favorite
// returns the stored row with created set to false.
func (r *InteractionRepository) AddFavorite(ctx context.Context, userID, movieID int) (*models.FavoriteMovie, bool, error) {
	var fav models.FavoriteMovie
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO favorite_movies (user_id, movie_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
		RETURNING id, user_id, movie_id, added_at
	`, userID, movieID).Scan(&fav.ID, &fav.UserID, &fav.MovieID, &fav.AddedAt)
	if err == nil {
		return &fav, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, translate(err, "add favorite")
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT id, user_id, movie_id, added_at
		FROM favorite_movies WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID).Scan(&fav.ID, &fav.UserID, &fav.MovieID, &fav.AddedAt)
	if err != nil {
		return nil, false, translate(err, "get favorite")
	}
	return &fav, false, nil
}

// MarkWatched records a viewing. The first one creates the row with a count
// of 1, later ones increment it.
func (r *InteractionRepository) MarkWatched(ctx context.Context, userID, movieID int) (*models.WatchedMovie, error) {
	var w models.WatchedMovie
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO watched_movies (user_id, movie_id, watch_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			watch_count = watched_movies.watch_count + 1
		RETURNING id, user_id, movie_id, watch_count
	`, userID, movieID).Scan(&w.ID, &w.UserID, &w.MovieID, &w.WatchCount)
	if err != nil {
		return nil, translate(err, "mark watched")
	}
	return &w, nil
}

// UserInteractions loads every like, favorite and watch count of a user.
func (r *InteractionRepository) UserInteractions(ctx context.Context, userID int) (*models.UserInteractions, error) {
	ui := &models.UserInteractions{
		Likes:     make(map[int]models.LikeAction),
		Favorites: make(map[int]bool),
		Watched:   make(map[int]int),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT movie_id, action FROM like_dislikes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	for rows.Next() {
		var (
			movieID int
			action  models.LikeAction
		)
		if err := rows.Scan(&movieID, &action); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan like: %w", err)
		}
		ui.Likes[movieID] = action
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT movie_id FROM favorite_movies WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	for rows.Next() {
		var movieID int
		if err := rows.Scan(&movieID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ui.Favorites[movieID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT movie_id, watch_count FROM watched_movies WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watched: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movieID, count int
		if err := rows.Scan(&movieID, &count); err != nil {
			return nil, fmt.Errorf("scan watched: %w", err)
		}
		ui.Watched[movieID] = count
	}
	return ui, rows.Err()
}

// AllRatings returns every rating, used to build the interaction matrix.
func (r *InteractionRepository) AllRatings(ctx context.Context) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, movie_id, rating, review, created_at
		FROM ratings
		ORDER BY user_id, movie_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.MovieID, &rt.Value, &rt.Review, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
