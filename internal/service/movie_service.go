package service

import (
	"context"
	"strings"
	"unicode"

	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/validation"
)

// MovieStore persists genres and movies.
type MovieStore interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, g models.Genre) (*models.Genre, error)
	CreateMovie(ctx context.Context, m models.Movie, genreIDs []int) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
	MovieStats(ctx context.Context) (map[int]models.MovieStats, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

type MovieService struct {
	store        MovieStore
	users        UserLookup
	interactions InteractionReader
	snapshots    *SnapshotStore
	cache        *ResponseCache
}

func NewMovieService(
	store MovieStore,
	users UserLookup,
	interactions InteractionReader,
	snapshots *SnapshotStore,
	cache *ResponseCache,
) *MovieService {
	return &MovieService{
		store:        store,
		users:        users,
		interactions: interactions,
		snapshots:    snapshots,
		cache:        cache,
	}
}

func (s *MovieService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.store.ListGenres(ctx)
}

func (s *MovieService) CreateGenre(ctx context.Context, req models.CreateGenreRequest) (*models.Genre, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	g, err := s.store.CreateGenre(ctx, models.Genre{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx)
	return g, nil
}

// CreateMovie stores a movie linked to at least one genre.
func (s *MovieService) CreateMovie(ctx context.Context, req models.CreateMovieRequest) (*models.Movie, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	m, err := s.store.CreateMovie(ctx, models.Movie{
		Title:       req.Title,
		Slug:        Slugify(req.Title),
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Duration:    req.Duration,
		ImageURL:    req.ImageURL,
	}, req.GenreIDs)
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx)
	return m, nil
}

func (s *MovieService) catalogChanged(ctx context.Context) {
	s.snapshots.Invalidate()
	s.cache.InvalidateAll(ctx)
}

// ListMovies lists every movie with its interaction counts. A non-zero
// userID adds that user's flags to each movie.
func (s *MovieService) ListMovies(ctx context.Context, userID int) ([]models.MovieListItem, error) {
	var ui *models.UserInteractions
	if userID != 0 {
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			return nil, err
		}
		var err error
		if ui, err = s.interactions.UserInteractions(ctx, userID); err != nil {
			return nil, err
		}
	}

	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.MovieStats(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.MovieListItem, 0, len(movies))
	for i := range movies {
		item := models.NewMovieListItem(&movies[i], stats[movies[i].ID])
		if ui != nil {
			item.UserInteractions = ui.Flags(movies[i].ID)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *MovieService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	return s.store.Dashboard(ctx)
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		case r == '\'':
		default:
			hyphen = true
		}
	}
	return b.String()
}
