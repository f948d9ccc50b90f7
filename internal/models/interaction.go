package models

import (
	"sort"
	"time"
)

// LikeAction is the state of a user's like/dislike on a movie.
type LikeAction string

const (
	ActionLike    LikeAction = "like"
	ActionDislike LikeAction = "dislike"
	ActionNone    LikeAction = "none"
)

// Rating bounds.
const (
	MinRating  = 1.0
	MaxRating  = 5.0
	RatingStep = 0.5
)

// Rating is a user's score for a movie.
type Rating struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Value     float64   `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// RateRequest is the request body for creating or updating a rating.
type RateRequest struct {
	MovieID int     `json:"movie_id" validate:"required,min=1"`
	Rating  float64 `json:"rating" validate:"rating_step"`
	Review  string  `json:"review" validate:"max=5000"`
}

// LikeDislike is a user's like/dislike action on a movie.
type LikeDislike struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	MovieID   int        `json:"movie_id"`
	Action    LikeAction `json:"action"`
	CreatedAt time.Time  `json:"created_at"`
}

// LikeRequest is the request body for a like/dislike action.
type LikeRequest struct {
	MovieID int        `json:"movie_id" validate:"required,min=1"`
	Action  LikeAction `json:"action" validate:"required,oneof=like dislike none"`
}

// FavoriteMovie marks a movie as one of a user's favorites.
type FavoriteMovie struct {
	ID      int       `json:"id"`
	UserID  int       `json:"user_id"`
	MovieID int       `json:"movie_id"`
	AddedAt time.Time `json:"added_at"`
}

// WatchedMovie counts how many times a user watched a movie.
type WatchedMovie struct {
	ID         int `json:"id"`
	UserID     int `json:"user_id"`
	MovieID    int `json:"movie_id"`
	WatchCount int `json:"watch_count"`
}

// MovieRequest is the request body for favorite and watched actions.
type MovieRequest struct {
	MovieID int `json:"movie_id" validate:"required,min=1"`
}

// RatingResult reports the outcome of a rating submission.
type RatingResult struct {
	Rating  *Rating `json:"rating"`
	Created bool    `json:"created"`
}

// FavoriteResult reports the outcome of a favorite action.
type FavoriteResult struct {
	Favorite         *FavoriteMovie `json:"favorite"`
	AlreadyFavorited bool           `json:"already_favorited"`
}

// UserInteractions is the set of a user's interactions, keyed by movie ID.
type UserInteractions struct {
	Likes     map[int]LikeAction
	Favorites map[int]bool
	Watched   map[int]int
}

// LikedMovieIDs returns the IDs of movies the user liked.
func (u *UserInteractions) LikedMovieIDs() []int {
	var ids []int
	for id, a := range u.Likes {
		if a == ActionLike {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Flags returns the interaction flags for one movie.
func (u *UserInteractions) Flags(movieID int) *UserMovieFlags {
	liked, ok := u.Likes[movieID]
	if !ok {
		liked = ActionNone
	}
	return &UserMovieFlags{
		Liked:     liked,
		Favorited: u.Favorites[movieID],
		Watched:   u.Watched[movieID],
	}
}
