package recommender

import "sort"

// RecommendHybrid merges the peer-based collaborative and content-based
// recommendations for a user and a movie. The result holds each movie once,
// ordered by ID.
func RecommendHybrid(userID, movieID int, m *Matrix, model *KNNModel, ci *ContentIndex, topN int) ([]int, error) {
	collab, err := RecommendCollaborative(userID, m, model, topN)
	if err != nil {
		return nil, err
	}
	content, err := RecommendContentBased(movieID, ci, topN)
	if err != nil {
		return nil, err
	}
	return Union(collab, content), nil
}

// RecommendFromLikes unions the content neighbors of every liked movie with
// the user-based KNN candidates. Liked movies missing from the content index
// are skipped.
func RecommendFromLikes(userID int, liked []int, m *Matrix, model *KNNModel, ci *ContentIndex, contentTopN, k, n int) ([]int, error) {
	lists := make([][]int, 0, len(liked)+1)
	for _, movieID := range liked {
		ids, err := RecommendContentBased(movieID, ci, contentTopN)
		if err != nil {
			continue
		}
		lists = append(lists, ids)
	}

	users, err := RecommendUserBased(userID, m, model, k, n)
	if err != nil {
		return nil, err
	}
	lists = append(lists, users)
	return Union(lists...), nil
}

// Union returns the distinct IDs of all lists in ascending order.
func Union(lists ...[]int) []int {
	seen := make(map[int]bool)
	out := []int{}
	for _, l := range lists {
		for _, id := range l {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Ints(out)
	return out
}
