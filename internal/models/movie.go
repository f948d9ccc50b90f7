package models

import "time"

// Genre represents a movie genre.
type Genre struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Movie represents a movie stored in our database.
type Movie struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ReleaseDate string    `json:"release_date"`
	Duration    int       `json:"duration"`
	ImageURL    string    `json:"image_url"`
	Genres      []Genre   `json:"genres"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenreIDs returns the IDs of the movie's genres.
func (m *Movie) GenreIDs() []int {
	ids := make([]int, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// GenreNames returns the names of the movie's genres.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MovieStats holds aggregate interaction counts for a movie.
type MovieStats struct {
	MovieID       int      `json:"movie_id"`
	LikesCount    int      `json:"likes_count"`
	DislikesCount int      `json:"dislikes_count"`
	FavoriteCount int      `json:"favorite_count"`
	WatchedCount  int      `json:"watched_count"`
	AvgRating     *float64 `json:"rating"`
}

// UserMovieFlags describes how a single user interacted with a movie.
type UserMovieFlags struct {
	Liked     LikeAction `json:"liked"`
	Favorited bool       `json:"favorited"`
	Watched   int        `json:"watched"`
}

// MovieListItem is the response shape for movie listings and recommendations.
type MovieListItem struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	ReleaseDate      string          `json:"release_date"`
	Duration         int             `json:"duration"`
	ImageURL         string          `json:"image_url"`
	Genres           []string        `json:"genres"`
	LikesCount       int             `json:"likes_count"`
	DislikesCount    int             `json:"dislikes_count"`
	FavoriteCount    int             `json:"favorite_count"`
	WatchedCount     int             `json:"watched_count"`
	Rating           *float64        `json:"rating"`
	UserInteractions *UserMovieFlags `json:"user_interactions,omitempty"`
}

// NewMovieListItem combines a movie with its aggregate counts.
func NewMovieListItem(m *Movie, stats MovieStats) MovieListItem {
	return MovieListItem{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		ReleaseDate:   m.ReleaseDate,
		Duration:      m.Duration,
		ImageURL:      m.ImageURL,
		Genres:        m.GenreNames(),
		LikesCount:    stats.LikesCount,
		DislikesCount: stats.DislikesCount,
		FavoriteCount: stats.FavoriteCount,
		WatchedCount:  stats.WatchedCount,
		Rating:        stats.AvgRating,
	}
}

// CreateGenreRequest is the request body for creating a genre.
type CreateGenreRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// CreateMovieRequest is the request body for creating a movie.
type CreateMovieRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	ReleaseDate string `json:"release_date" validate:"required,datetime=2006-01-02"`
	Duration    int    `json:"duration" validate:"min=1"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	GenreIDs    []int  `json:"genres" validate:"required,min=1,dive,min=1"`
}

// GenreRating is the average rating of movies in a genre.
type GenreRating struct {
	Genre     string  `json:"genre"`
	AvgRating float64 `json:"avgRating"`
}

// GenreCount is the number of movies in a genre.
type GenreCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// InteractionTotals counts interactions across all users and movies.
type InteractionTotals struct {
	Likes     int `json:"likes"`
	Dislikes  int `json:"dislikes"`
	Favorites int `json:"favorites"`
	Watched   int `json:"watched"`
}

// Dashboard is the consolidated statistics response.
type Dashboard struct {
	MovieCount        int               `json:"movie_count"`
	Genres            []Genre           `json:"genres"`
	Ratings           []GenreRating     `json:"ratings"`
	Interactions      InteractionTotals `json:"interactions"`
	GenreDistribution []GenreCount      `json:"genreDistribution"`
}
