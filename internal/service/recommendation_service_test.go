package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"movie-recommendation-service/internal/models"
)

// recommendationFixture: users 1..4, five movies over four genres. Users 1
// and 2 rated, user 1 likes movie 3, user 2 likes movies 2 and 3, user 4 has
// no history.
func recommendationFixture() *testServices {
	f := newFakeStore()
	for id := 1; id <= 4; id++ {
		f.addUser(id)
	}
	f.addMovie(1, "Alpha", 1)
	f.addMovie(2, "Beta", 1, 2)
	f.addMovie(3, "Gamma", 2)
	f.addMovie(4, "Delta", 3)
	f.addMovie(5, "Epsilon", 3, 4)

	f.ratings[[2]int{1, 1}] = 5
	f.ratings[[2]int{1, 2}] = 4
	f.ratings[[2]int{2, 1}] = 5
	f.ratings[[2]int{2, 3}] = 4

	f.likes[[2]int{1, 3}] = models.ActionLike
	f.likes[[2]int{2, 2}] = models.ActionLike
	f.likes[[2]int{2, 3}] = models.ActionLike
	return newTestServices(f)
}

func ids(recs []models.MovieRecommendation) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestRecommendationService_Strategies(t *testing.T) {
	tests := []struct {
		name string
		req  models.RecommendationRequest
		want []int
	}{
		{
			name: "cold start hybrid falls back to popularity",
			req:  models.RecommendationRequest{UserID: 4},
			want: []int{3, 2, 1, 4, 5},
		},
		{
			name: "popularity",
			req:  models.RecommendationRequest{UserID: 4, Strategy: models.StrategyPopularity, Limit: 2},
			want: []int{3, 2},
		},
		{
			name: "hybrid from likes",
			req:  models.RecommendationRequest{UserID: 1, Strategy: models.StrategyHybrid},
			want: []int{1, 2, 3, 4},
		},
		{
			name: "content neighbors",
			req:  models.RecommendationRequest{UserID: 1, MovieID: 2, Strategy: models.StrategyContent, Limit: 2},
			want: []int{1, 3},
		},
		{
			name: "collaborative",
			req:  models.RecommendationRequest{UserID: 1, Strategy: models.StrategyCollaborative},
			want: []int{3},
		},
		{
			name: "collaborative cold start",
			req:  models.RecommendationRequest{UserID: 4, Strategy: models.StrategyCollaborative},
			want: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := recommendationFixture()
			resp, err := ts.recs.Recommend(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if got := ids(resp.Recommendations); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recommend() = %v, want %v", got, tt.want)
			}
			if resp.SnapshotVersion != 1 {
				t.Errorf("SnapshotVersion = %d, want 1", resp.SnapshotVersion)
			}
			if resp.GeneratedAt == "" {
				t.Error("GeneratedAt not set")
			}
		})
	}
}

func TestRecommendationService_Personalized(t *testing.T) {
	ctx := context.Background()
	ts := recommendationFixture()
	if _, err := ts.prefs.Adjust(ctx, 4, []int{3}, models.PreferenceFavorite, 2); err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}

	resp, err := ts.recs.Recommend(ctx, models.RecommendationRequest{UserID: 4, Strategy: models.StrategyPersonalized})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got, want := ids(resp.Recommendations), []int{4, 5, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
	first := resp.Recommendations[0]
	if first.Score == nil || *first.Score != 4 {
		t.Errorf("first score = %v, want 4", first.Score)
	}
	if resp.Strategy != models.StrategyPersonalized {
		t.Errorf("Strategy = %q", resp.Strategy)
	}
}

func TestRecommendationService_PersonalizedSecondaryGenres(t *testing.T) {
	ctx := context.Background()
	ts := recommendationFixture()
	ts.store.favorites[[2]int{4, 3}] = true
	if _, err := ts.prefs.Adjust(ctx, 4, []int{3}, models.PreferenceFavorite, 2); err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}

	resp, err := ts.recs.Recommend(ctx, models.RecommendationRequest{UserID: 4, Strategy: models.StrategyPersonalized})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// genre 2 comes from favorited movie 3 and adds one point to movies 2 and 3
	if got, want := ids(resp.Recommendations), []int{4, 5, 2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
	scores := map[int]int{}
	for _, r := range resp.Recommendations {
		scores[r.ID] = *r.Score
	}
	if want := map[int]int{4: 4, 5: 4, 2: 1, 3: 1, 1: 0}; !reflect.DeepEqual(scores, want) {
		t.Errorf("scores = %v, want %v", scores, want)
	}
}

func TestRecommendationService_HydratesUserFlags(t *testing.T) {
	ts := recommendationFixture()
	resp, err := ts.recs.Recommend(context.Background(), models.RecommendationRequest{UserID: 1, Strategy: models.StrategyPopularity})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	top := resp.Recommendations[0]
	if top.ID != 3 || top.LikesCount != 2 {
		t.Fatalf("top = movie %d with %d likes, want movie 3 with 2", top.ID, top.LikesCount)
	}
	if top.UserInteractions == nil || top.UserInteractions.Liked != models.ActionLike {
		t.Errorf("user flags = %+v, want liked", top.UserInteractions)
	}
	if top.Score != nil {
		t.Error("popularity should not set a score")
	}
	if !reflect.DeepEqual(top.Genres, []string{"Comedy"}) {
		t.Errorf("genres = %v", top.Genres)
	}
}

func TestRecommendationService_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  models.RecommendationRequest
		want error
	}{
		{"unknown user", models.RecommendationRequest{UserID: 99}, models.ErrNotFound},
		{"unknown movie", models.RecommendationRequest{UserID: 1, MovieID: 99}, models.ErrNotFound},
		{"unknown strategy", models.RecommendationRequest{UserID: 1, Strategy: "random"}, models.ErrValidation},
		{"negative limit", models.RecommendationRequest{UserID: 1, Limit: -1}, models.ErrValidation},
		{"content without movie", models.RecommendationRequest{UserID: 1, Strategy: models.StrategyContent}, models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := recommendationFixture()
			_, err := ts.recs.Recommend(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Recommend() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecommendationService_LimitCappedAtMax(t *testing.T) {
	ts := recommendationFixture()
	got, err := ts.recs.limit(500)
	if err != nil {
		t.Fatalf("limit() error = %v", err)
	}
	if got != 50 {
		t.Errorf("limit(500) = %d, want 50", got)
	}
}

func TestRecommendationService_Similar(t *testing.T) {
	ctx := context.Background()
	ts := recommendationFixture()

	items, err := ts.recs.Similar(ctx, 3, 1)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Errorf("Similar(3) = %+v, want movie 2", items)
	}

	if _, err := ts.recs.Similar(ctx, 99, 0); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Similar(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRecommendationService_Ranked(t *testing.T) {
	ctx := context.Background()
	ts := recommendationFixture()

	items, err := ts.recs.Ranked(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Ranked() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Ranked() returned %d items, want 2", len(items))
	}
	for _, item := range items {
		if item.UserInteractions == nil {
			t.Errorf("movie %d has no user flags", item.ID)
		}
	}

	if _, err := ts.recs.Ranked(ctx, 99, 0); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Ranked(unknown user) error = %v, want ErrNotFound", err)
	}
}

func TestRecommendationService_SnapshotInfo(t *testing.T) {
	ts := recommendationFixture()
	info, err := ts.recs.SnapshotInfo(context.Background())
	if err != nil {
		t.Fatalf("SnapshotInfo() error = %v", err)
	}
	if info.Version != 1 || info.Users != 2 || info.Movies != 3 || info.RatingCount != 4 {
		t.Errorf("SnapshotInfo() = %+v", info)
	}
	if info.ID == "" {
		t.Error("snapshot ID not set")
	}
}
