// Package recommender holds the recommendation algorithms: the user×movie
// interaction matrix, the cosine KNN collaborative filter, the TF-IDF
// content filter, the hybrid combiner and the personalized scorer.
//
// Everything here is pure and safe for concurrent reads once built.
package recommender

import (
	"sort"

	"movie-recommendation-service/internal/models"
)

// Matrix is a dense user×movie rating matrix. Rows are users sorted by ID,
// columns are movies sorted by ID. Absent cells hold 0 and are marked false
// in the rated mask.
type Matrix struct {
	userIDs  []int
	movieIDs []int
	userRow  map[int]int
	movieCol map[int]int
	values   [][]float64
	rated    [][]bool
}

// BuildInteractionMatrix pivots ratings into a Matrix. Several ratings for
// the same (user, movie) cell are averaged.
func BuildInteractionMatrix(ratings []models.Rating) *Matrix {
	userSet := make(map[int]struct{})
	movieSet := make(map[int]struct{})
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		movieSet[r.MovieID] = struct{}{}
	}

	m := &Matrix{
		userIDs:  sortedKeys(userSet),
		movieIDs: sortedKeys(movieSet),
	}
	m.userRow = indexOf(m.userIDs)
	m.movieCol = indexOf(m.movieIDs)

	m.values = make([][]float64, len(m.userIDs))
	m.rated = make([][]bool, len(m.userIDs))
	counts := make([][]int, len(m.userIDs))
	for i := range m.userIDs {
		m.values[i] = make([]float64, len(m.movieIDs))
		m.rated[i] = make([]bool, len(m.movieIDs))
		counts[i] = make([]int, len(m.movieIDs))
	}

	for _, r := range ratings {
		row, col := m.userRow[r.UserID], m.movieCol[r.MovieID]
		m.values[row][col] += r.Value
		m.rated[row][col] = true
		counts[row][col]++
	}
	for i := range m.values {
		for j, c := range counts[i] {
			if c > 1 {
				m.values[i][j] /= float64(c)
			}
		}
	}
	return m
}

// Users returns the user IDs in row order.
func (m *Matrix) Users() []int { return m.userIDs }

// Movies returns the movie IDs in column order.
func (m *Matrix) Movies() []int { return m.movieIDs }

// RowOf returns the row index of a user.
func (m *Matrix) RowOf(userID int) (int, bool) {
	row, ok := m.userRow[userID]
	return row, ok
}

// Value returns the rating of a cell and whether the user rated the movie.
func (m *Matrix) Value(userID, movieID int) (float64, bool) {
	row, ok := m.userRow[userID]
	if !ok {
		return 0, false
	}
	col, ok := m.movieCol[movieID]
	if !ok {
		return 0, false
	}
	return m.values[row][col], m.rated[row][col]
}

// RatedMovies returns the IDs of the movies rated in a row, ascending.
func (m *Matrix) RatedMovies(row int) []int {
	var ids []int
	for col, ok := range m.rated[row] {
		if ok {
			ids = append(ids, m.movieIDs[col])
		}
	}
	return ids
}

// Len returns the number of users and movies.
func (m *Matrix) Len() (users, movies int) {
	return len(m.userIDs), len(m.movieIDs)
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func indexOf(ids []int) map[int]int {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
