package recommender

import (
	"sort"
	"strings"

	"movie-recommendation-service/internal/models"
)

// CatalogEntry is the part of a movie the content filter needs.
type CatalogEntry struct {
	MovieID  int
	Title    string
	Genres   []string
	GenreIDs []int
}

// Document returns the text the entry is vectorized from.
func (e CatalogEntry) Document() string {
	return strings.Join(e.Genres, ", ")
}

// NewCatalog converts movies into catalog entries, keeping their order.
func NewCatalog(movies []models.Movie) []CatalogEntry {
	catalog := make([]CatalogEntry, len(movies))
	for i := range movies {
		catalog[i] = CatalogEntry{
			MovieID:  movies[i].ID,
			Title:    movies[i].Title,
			Genres:   movies[i].GenreNames(),
			GenreIDs: movies[i].GenreIDs(),
		}
	}
	return catalog
}

// ContentIndex holds the pairwise genre similarity of a catalog.
type ContentIndex struct {
	catalog []CatalogEntry
	pos     map[int]int
	sim     [][]float64
}

// BuildContentIndex vectorizes the catalog and precomputes similarities.
func BuildContentIndex(catalog []CatalogEntry) *ContentIndex {
	docs := make([]string, len(catalog))
	pos := make(map[int]int, len(catalog))
	for i, e := range catalog {
		docs[i] = e.Document()
		pos[e.MovieID] = i
	}
	vectors := tfidf(docs)
	return &ContentIndex{
		catalog: catalog,
		pos:     pos,
		sim:     cosineSimilarityMatrix(vectors),
	}
}

// Len returns the number of indexed movies.
func (ci *ContentIndex) Len() int { return len(ci.catalog) }

// Entry returns the catalog entry of a movie.
func (ci *ContentIndex) Entry(movieID int) (CatalogEntry, bool) {
	i, ok := ci.pos[movieID]
	if !ok {
		return CatalogEntry{}, false
	}
	return ci.catalog[i], true
}

// RecommendContentBased returns the topN movies most similar to movieID,
// most similar first. Ties keep catalog order and the movie itself is never
// returned.
func RecommendContentBased(movieID int, ci *ContentIndex, topN int) ([]int, error) {
	if ci == nil {
		return nil, models.NotFoundf("movie %d", movieID)
	}
	i, ok := ci.pos[movieID]
	if !ok {
		return nil, models.NotFoundf("movie %d", movieID)
	}

	order := make([]int, 0, len(ci.catalog)-1)
	for j := range ci.catalog {
		if j != i {
			order = append(order, j)
		}
	}
	row := ci.sim[i]
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	topN = min(max(topN, 0), len(order))
	ids := make([]int, topN)
	for k := 0; k < topN; k++ {
		ids[k] = ci.catalog[order[k]].MovieID
	}
	return ids, nil
}
