package recommender

import (
	"sort"

	"movie-recommendation-service/internal/models"
)

// UserSignals are a user's per-movie interactions relevant to scoring.
type UserSignals struct {
	Liked    map[int]bool
	Disliked map[int]bool
	Watched  map[int]bool
}

// SignalsFrom extracts scoring signals from a user's interactions.
func SignalsFrom(ui *models.UserInteractions) UserSignals {
	s := UserSignals{
		Liked:    make(map[int]bool),
		Disliked: make(map[int]bool),
		Watched:  make(map[int]bool),
	}
	if ui == nil {
		return s
	}
	for id, a := range ui.Likes {
		switch a {
		case models.ActionLike:
			s.Liked[id] = true
		case models.ActionDislike:
			s.Disliked[id] = true
		}
	}
	for id, n := range ui.Watched {
		if n > 0 {
			s.Watched[id] = true
		}
	}
	return s
}

// GenreSets holds the genres a user prefers: the favorite set, keyed by
// genre ID with its priority, and the secondary set of genres that are
// preferred without being favorites.
type GenreSets struct {
	Favorite  map[int]int
	Secondary map[int]bool
}

// BuildGenreSets puts every favorite preference into the favorite set. The
// genres of the user's favorited movies form the secondary set, minus the
// favorite and avoided genres.
func BuildGenreSets(prefs []models.Preference, favoriteMovies map[int]bool, catalog []CatalogEntry) GenreSets {
	sets := GenreSets{Favorite: make(map[int]int), Secondary: make(map[int]bool)}
	avoided := make(map[int]bool)
	for _, p := range prefs {
		switch p.PreferenceType {
		case models.PreferenceFavorite:
			sets.Favorite[p.GenreID] = p.Priority
		case models.PreferenceAvoid:
			avoided[p.GenreID] = true
		}
	}

	for _, e := range catalog {
		if !favoriteMovies[e.MovieID] {
			continue
		}
		for _, g := range e.GenreIDs {
			if _, fav := sets.Favorite[g]; fav || avoided[g] {
				continue
			}
			sets.Secondary[g] = true
		}
	}
	return sets
}

// ScoreMovie scores a movie for a user:
//
//	Σ genres: +2*priority if favorite, +1 if secondary
//	+3 if liked, -3 if disliked
func ScoreMovie(e CatalogEntry, s UserSignals, favorite map[int]int, secondary map[int]bool) int {
	score := 0
	for _, g := range e.GenreIDs {
		if p, ok := favorite[g]; ok {
			score += 2 * p
		}
		if secondary[g] {
			score++
		}
	}
	if s.Liked[e.MovieID] {
		score += 3
	}
	if s.Disliked[e.MovieID] {
		score -= 3
	}
	return score
}

// ScoredMovie is a movie with its personalized score.
type ScoredMovie struct {
	MovieID int
	Score   int
}

// RankPersonalized scores every catalog movie the user has neither watched
// nor disliked, highest score first and then by movie ID.
func RankPersonalized(catalog []CatalogEntry, s UserSignals, sets GenreSets) []ScoredMovie {
	ranked := make([]ScoredMovie, 0, len(catalog))
	for _, e := range catalog {
		if s.Watched[e.MovieID] || s.Disliked[e.MovieID] {
			continue
		}
		ranked = append(ranked, ScoredMovie{
			MovieID: e.MovieID,
			Score:   ScoreMovie(e, s, sets.Favorite, sets.Secondary),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].MovieID < ranked[j].MovieID
	})
	return ranked
}

// MostLiked returns up to n catalog movies ordered by like count, then by
// movie ID. When genres is non-empty only movies in one of those genres are
// considered.
func MostLiked(catalog []CatalogEntry, likes map[int]int, genres map[int]bool, n int) []int {
	candidates := make([]int, 0, len(catalog))
	for _, e := range catalog {
		if len(genres) > 0 && !inAny(e.GenreIDs, genres) {
			continue
		}
		candidates = append(candidates, e.MovieID)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if likes[a] != likes[b] {
			return likes[a] > likes[b]
		}
		return a < b
	})
	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func inAny(ids []int, set map[int]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
