package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"movie-recommendation-service/internal/models"
)

// statsQuery yields one row of interaction counts per movie.
const statsQuery = `
	SELECT m.id AS movie_id,
		(SELECT COUNT(*) FROM like_dislikes ld WHERE ld.movie_id = m.id AND ld.action = 'like') AS likes,
		(SELECT COUNT(*) FROM like_dislikes ld WHERE ld.movie_id = m.id AND ld.action = 'dislike') AS dislikes,
		(SELECT COUNT(*) FROM favorite_movies f WHERE f.movie_id = m.id) AS favorites,
		(SELECT COUNT(*) FROM watched_movies w WHERE w.movie_id = m.id) AS watched,
		(SELECT AVG(r.rating)::float8 FROM ratings r WHERE r.movie_id = m.id) AS avg_rating
	FROM movies m`

// MovieRepository handles database operations for movies and genres.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ListGenres returns all genres ordered by name.
func (r *MovieRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, description FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CreateGenre inserts a genre. Duplicate names are rejected.
func (r *MovieRepository) CreateGenre(ctx context.Context, g models.Genre) (*models.Genre, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO genres (name, slug, description) VALUES ($1, $2, $3)
		RETURNING id
	`, g.Name, g.Slug, g.Description).Scan(&g.ID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("genre %q", g.Name))
	}
	return &g, nil
}

// CreateMovie inserts a movie and links it to its genres in one
// transaction. An unknown genre ID yields ErrNotFound.
func (r *MovieRepository) CreateMovie(ctx context.Context, m models.Movie, genreIDs []int) (*models.Movie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO movies (title, slug, description, release_date, duration, image_url)
		VALUES ($1, $2, $3, $4::date, $5, $6)
		RETURNING id, created_at
	`, m.Title, m.Slug, m.Description, m.ReleaseDate, m.Duration, m.ImageURL).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("movie %q", m.Title))
	}

	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO movie_genres (movie_id, genre_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, m.ID, genreID); err != nil {
			return nil, translate(err, fmt.Sprintf("genre %d", genreID))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movie: %w", err)
	}

	genres, err := r.loadGenres(ctx, []int{m.ID})
	if err != nil {
		return nil, err
	}
	m.Genres = genres[m.ID]
	return &m, nil
}

// GetMovie returns a movie with its genres.
func (r *MovieRepository) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	movies, err := r.MoviesByIDs(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, models.NotFoundf("movie %d", id)
	}
	return &movies[0], nil
}

// ListMovies returns every movie with its genres, ordered by ID.
func (r *MovieRepository) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return r.queryMovies(ctx, `
		SELECT id, title, slug, description, TO_CHAR(release_date, 'YYYY-MM-DD'), duration, image_url, created_at
		FROM movies
		ORDER BY id
	`)
}

// MoviesByIDs returns the movies with the given IDs, ordered by ID.
func (r *MovieRepository) MoviesByIDs(ctx context.Context, ids []int) ([]models.Movie, error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}
	return r.queryMovies(ctx, `
		SELECT id, title, slug, description, TO_CHAR(release_date, 'YYYY-MM-DD'), duration, image_url, created_at
		FROM movies
		WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
}

func (r *MovieRepository) queryMovies(ctx context.Context, query string, args ...any) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	var ids []int
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.Description, &m.ReleaseDate, &m.Duration, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return movies, nil
	}

	genres, err := r.loadGenres(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		movies[i].Genres = genres[movies[i].ID]
		if movies[i].Genres == nil {
			movies[i].Genres = []models.Genre{}
		}
	}
	return movies, nil
}

// loadGenres returns the genres of each movie, ordered by genre ID.
func (r *MovieRepository) loadGenres(ctx context.Context, movieIDs []int) (map[int][]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mg.movie_id, g.id, g.name, g.slug, g.description
		FROM movie_genres mg
		JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id = ANY($1)
		ORDER BY mg.movie_id, g.id
	`, pq.Array(movieIDs))
	if err != nil {
		return nil, fmt.Errorf("query movie genres: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]models.Genre)
	for rows.Next() {
		var (
			movieID int
			g       models.Genre
		)
		if err := rows.Scan(&movieID, &g.ID, &g.Name, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("scan movie genre: %w", err)
		}
		out[movieID] = append(out[movieID], g)
	}
	return out, rows.Err()
}

// GenreIDsForMovie returns the genre IDs of a movie.
func (r *MovieRepository) GenreIDsForMovie(ctx context.Context, movieID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT genre_id FROM movie_genres WHERE movie_id = $1 ORDER BY genre_id
	`, movieID)
	if err != nil {
		return nil, fmt.Errorf("query genre ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan genre id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MovieStats returns the interaction counts of every movie.
func (r *MovieRepository) MovieStats(ctx context.Context) (map[int]models.MovieStats, error) {
	rows, err := r.db.QueryContext(ctx, statsQuery)
	if err != nil {
		return nil, fmt.Errorf("query movie stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int]models.MovieStats)
	for rows.Next() {
		s, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		stats[s.MovieID] = s
	}
	return stats, rows.Err()
}

func scanStats(rows *sql.Rows) (models.MovieStats, error) {
	var (
		s   models.MovieStats
		avg sql.NullFloat64
	)
	if err := rows.Scan(&s.MovieID, &s.LikesCount, &s.DislikesCount, &s.FavoriteCount, &s.WatchedCount, &avg); err != nil {
		return s, fmt.Errorf("scan movie stats: %w", err)
	}
	if avg.Valid {
		s.AvgRating = &avg.Float64
	}
	return s, nil
}

// RankedForUser lists movies in the user's favorite genres that the user
// has neither watched nor disliked, ordered by average rating (unrated
// last), watch count, like count and ID.
func (r *MovieRepository) RankedForUser(ctx context.Context, userID, limit int) ([]models.MovieListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.title, m.description, TO_CHAR(m.release_date, 'YYYY-MM-DD'), m.duration, m.image_url,
			s.likes, s.dislikes, s.favorites, s.watched, s.avg_rating
		FROM movies m
		JOIN (`+statsQuery+`) s ON s.movie_id = m.id
		WHERE EXISTS (
			SELECT 1 FROM movie_genres mg
			JOIN preferences p ON p.genre_id = mg.genre_id
			WHERE mg.movie_id = m.id AND p.user_id = $1 AND p.preference_type = 'favorite'
		)
		AND NOT EXISTS (SELECT 1 FROM watched_movies w WHERE w.movie_id = m.id AND w.user_id = $1)
		AND NOT EXISTS (
			SELECT 1 FROM like_dislikes ld
			WHERE ld.movie_id = m.id AND ld.user_id = $1 AND ld.action = 'dislike'
		)
		ORDER BY s.avg_rating DESC NULLS LAST, s.watched DESC, s.likes DESC, m.id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ranked movies: %w", err)
	}
	defer rows.Close()

	items := []models.MovieListItem{}
	var ids []int
	for rows.Next() {
		var (
			item models.MovieListItem
			avg  sql.NullFloat64
		)
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.ReleaseDate, &item.Duration, &item.ImageURL,
			&item.LikesCount, &item.DislikesCount, &item.FavoriteCount, &item.WatchedCount, &avg,
		); err != nil {
			return nil, fmt.Errorf("scan ranked movie: %w", err)
		}
		if avg.Valid {
			item.Rating = &avg.Float64
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return items, nil
	}

	genres, err := r.loadGenres(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		m := models.Movie{Genres: genres[items[i].ID]}
		items[i].Genres = m.GenreNames()
	}
	return items, nil
}

// Dashboard aggregates catalog-wide statistics.
func (r *MovieRepository) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d := &models.Dashboard{
		Ratings:           []models.GenreRating{},
		GenreDistribution: []models.GenreCount{},
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&d.MovieCount); err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	genres, err := r.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	d.Genres = genres

	rows, err := r.db.QueryContext(ctx, `
		SELECT g.name, AVG(rt.rating)::float8
		FROM ratings rt
		JOIN movie_genres mg ON mg.movie_id = rt.movie_id
		JOIN genres g ON g.id = mg.genre_id
		GROUP BY g.name
		ORDER BY g.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query genre ratings: %w", err)
	}
	for rows.Next() {
		var gr models.GenreRating
		if err := rows.Scan(&gr.Genre, &gr.AvgRating); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan genre rating: %w", err)
		}
		d.Ratings = append(d.Ratings, gr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM like_dislikes WHERE action = 'like'),
			(SELECT COUNT(*) FROM like_dislikes WHERE action = 'dislike'),
			(SELECT COUNT(*) FROM favorite_movies),
			(SELECT COUNT(*) FROM watched_movies)
	`).Scan(&d.Interactions.Likes, &d.Interactions.Dislikes, &d.Interactions.Favorites, &d.Interactions.Watched)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT g.name, COUNT(mg.movie_id)
		FROM genres g
		JOIN movie_genres mg ON mg.genre_id = g.id
		GROUP BY g.name
		ORDER BY g.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query genre distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var gc models.GenreCount
		if err := rows.Scan(&gc.Name, &gc.Value); err != nil {
			return nil, fmt.Errorf("scan genre count: %w", err)
		}
		d.GenreDistribution = append(d.GenreDistribution, gc)
	}
	return d, rows.Err()
}
