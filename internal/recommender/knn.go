package recommender

import (
	"math"
	"sort"

	"movie-recommendation-service/internal/models"
)

// KNNModel is a brute-force cosine nearest-neighbor index over the rows of
// a Matrix.
type KNNModel struct {
	matrix *Matrix
	k      int
	norms  []float64
}

// FitKNN fits a model on m. k is the default neighbor count for queries.
func FitKNN(m *Matrix, k int) *KNNModel {
	norms := make([]float64, len(m.values))
	for i, row := range m.values {
		var sum float64
		for _, v := range row {
			sum += v * v
		}
		norms[i] = math.Sqrt(sum)
	}
	return &KNNModel{matrix: m, k: k, norms: norms}
}

type neighbor struct {
	row      int
	distance float64
}

// distance returns the cosine distance between two rows. A zero row is at
// distance 1 from every row.
func (km *KNNModel) distance(a, b int) float64 {
	if km.norms[a] == 0 || km.norms[b] == 0 {
		return 1
	}
	ra, rb := km.matrix.values[a], km.matrix.values[b]
	var dot float64
	for i := range ra {
		dot += ra[i] * rb[i]
	}
	return 1 - dot/(km.norms[a]*km.norms[b])
}

// Neighbors returns the n rows closest to row, self included, nearest
// first. Ties break by row index.
func (km *KNNModel) Neighbors(row, n int) []int {
	all := make([]neighbor, len(km.norms))
	for i := range km.norms {
		d := km.distance(row, i)
		if i == row {
			d = 0
		}
		all[i] = neighbor{row: i, distance: d}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		// self first among exact ties
		if all[i].row == row || all[j].row == row {
			return all[i].row == row
		}
		return all[i].row < all[j].row
	})

	if n > len(all) {
		n = len(all)
	}
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		rows[i] = all[i].row
	}
	return rows
}

func (km *KNNModel) check(m *Matrix) error {
	if km == nil || m == nil || km.matrix != m {
		return models.ErrInconsistentIndex
	}
	return nil
}

// RecommendUserBased recommends movies rated by the k nearest users (self
// excluded) that userID has not rated, ordered by movie ID and capped at n.
// Unknown users get an empty list.
func RecommendUserBased(userID int, m *Matrix, model *KNNModel, k, n int) ([]int, error) {
	if err := model.check(m); err != nil {
		return nil, err
	}
	row, ok := m.RowOf(userID)
	if !ok {
		return []int{}, nil
	}
	if k <= 0 {
		k = model.k
	}

	own := make(map[int]bool)
	for _, id := range m.RatedMovies(row) {
		own[id] = true
	}

	seen := make(map[int]bool)
	for _, nb := range model.Neighbors(row, k+1) {
		if nb == row {
			continue
		}
		for _, id := range m.RatedMovies(nb) {
			if !own[id] {
				seen[id] = true
			}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}

// RecommendCollaborative returns the movies rated by the topN nearest
// users, the user included, deduplicated and ordered by movie ID.
func RecommendCollaborative(userID int, m *Matrix, model *KNNModel, topN int) ([]int, error) {
	if err := model.check(m); err != nil {
		return nil, err
	}
	row, ok := m.RowOf(userID)
	if !ok {
		return []int{}, nil
	}

	seen := make(map[int]bool)
	for _, nb := range model.Neighbors(row, topN) {
		for _, id := range m.RatedMovies(nb) {
			seen[id] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
