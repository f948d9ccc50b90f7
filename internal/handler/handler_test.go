package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

// fakeServices implements every service interface with canned results.
type fakeServices struct {
	err error

	gotRec    models.RecommendationRequest
	gotUserID int

	ratingCreated    bool
	alreadyFavorited bool
	adjusted         []models.Preference
}

func (f *fakeServices) CreateUser(_ context.Context, req models.CreateUserRequest) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 1, Username: req.Username, Email: req.Email}, nil
}

func (f *fakeServices) GetUser(_ context.Context, id int) (*models.User, error) {
	if id != 1 {
		return nil, models.NotFoundf("user %d", id)
	}
	return &models.User{ID: 1, Username: "ana"}, nil
}

func (f *fakeServices) Adjust(_ context.Context, userID int, genreIDs []int, action models.PreferenceType, weight int) ([]models.Preference, error) {
	return f.adjusted, f.err
}

func (f *fakeServices) List(_ context.Context, userID int) ([]models.Preference, error) {
	return []models.Preference{{UserID: userID, GenreID: 1, Priority: 3}}, f.err
}

func (f *fakeServices) Rate(_ context.Context, userID int, req models.RateRequest) (*models.RatingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.RatingResult{Rating: &models.Rating{UserID: userID, MovieID: req.MovieID, Value: req.Rating}, Created: f.ratingCreated}, nil
}

func (f *fakeServices) Like(_ context.Context, userID int, req models.LikeRequest) (*models.LikeDislike, error) {
	return &models.LikeDislike{UserID: userID, MovieID: req.MovieID, Action: req.Action}, f.err
}

func (f *fakeServices) Favorite(_ context.Context, userID int, req models.MovieRequest) (*models.FavoriteResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.FavoriteResult{Favorite: &models.FavoriteMovie{UserID: userID, MovieID: req.MovieID}, AlreadyFavorited: f.alreadyFavorited}, nil
}

func (f *fakeServices) Watch(_ context.Context, userID int, req models.MovieRequest) (*models.WatchedMovie, error) {
	return &models.WatchedMovie{UserID: userID, MovieID: req.MovieID, WatchCount: 1}, f.err
}

func (f *fakeServices) ListGenres(context.Context) ([]models.Genre, error) {
	return []models.Genre{{ID: 1, Name: "Action"}}, f.err
}

func (f *fakeServices) CreateGenre(_ context.Context, req models.CreateGenreRequest) (*models.Genre, error) {
	return &models.Genre{ID: 1, Name: req.Name}, f.err
}

func (f *fakeServices) ListMovies(_ context.Context, userID int) ([]models.MovieListItem, error) {
	f.gotUserID = userID
	return []models.MovieListItem{{ID: 1, Title: "Heat"}}, f.err
}

func (f *fakeServices) CreateMovie(_ context.Context, req models.CreateMovieRequest) (*models.Movie, error) {
	return &models.Movie{ID: 1, Title: req.Title}, f.err
}

func (f *fakeServices) Dashboard(context.Context) (*models.Dashboard, error) {
	return &models.Dashboard{MovieCount: 1}, f.err
}

func (f *fakeServices) Recommend(_ context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	f.gotRec = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RecommendationResponse{UserID: req.UserID, Strategy: req.Strategy, Recommendations: []models.MovieRecommendation{}}, nil
}

func (f *fakeServices) Similar(_ context.Context, movieID, limit int) ([]models.MovieListItem, error) {
	return []models.MovieListItem{}, f.err
}

func (f *fakeServices) Ranked(_ context.Context, userID, limit int) ([]models.MovieListItem, error) {
	return []models.MovieListItem{}, f.err
}

func (f *fakeServices) SnapshotInfo(context.Context) (*models.SnapshotInfo, error) {
	return &models.SnapshotInfo{Version: 3}, f.err
}

func newTestApp(f *fakeServices) *fiber.App {
	app := fiber.New()
	app.Get("/health", Health)
	RegisterRoutes(app.Group("/api/v1"),
		NewUserHandler(f, f),
		NewInteractionHandler(f),
		NewMovieHandler(f),
		NewRecommendationHandler(f),
	)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	status, body := do(t, newTestApp(&fakeServices{}), http.MethodGet, "/health", "")
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /health = %d %v", status, body)
	}
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name       string
		fake       fakeServices
		method     string
		target     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"get user", fakeServices{}, http.MethodGet, "/api/v1/users/1", "", http.StatusOK, ""},
		{"get unknown user", fakeServices{}, http.MethodGet, "/api/v1/users/7", "", http.StatusNotFound, "user 7: not found"},
		{"get user bad id", fakeServices{}, http.MethodGet, "/api/v1/users/abc", "", http.StatusBadRequest, "invalid user ID"},
		{"create user", fakeServices{}, http.MethodPost, "/api/v1/users", `{"username":"ana","email":"ana@example.com"}`, http.StatusCreated, ""},
		{"create user bad body", fakeServices{}, http.MethodPost, "/api/v1/users", `{"username":`, http.StatusBadRequest, "invalid request body"},
		{
			"create user invalid",
			fakeServices{err: &models.ValidationError{Field: "email", Message: "must be a valid email"}},
			http.MethodPost, "/api/v1/users", `{"username":"ana","email":"x"}`,
			http.StatusBadRequest, "email: must be a valid email",
		},
		{"new rating", fakeServices{ratingCreated: true}, http.MethodPost, "/api/v1/users/1/ratings", `{"movie_id":2,"rating":4.5}`, http.StatusCreated, ""},
		{"updated rating", fakeServices{}, http.MethodPost, "/api/v1/users/1/ratings", `{"movie_id":2,"rating":4.5}`, http.StatusOK, ""},
		{
			"rating unknown movie",
			fakeServices{err: models.NotFoundf("movie %d", 9)},
			http.MethodPost, "/api/v1/users/1/ratings", `{"movie_id":9,"rating":4}`,
			http.StatusNotFound, "movie 9: not found",
		},
		{"new favorite", fakeServices{}, http.MethodPost, "/api/v1/users/1/favorites", `{"movie_id":2}`, http.StatusCreated, ""},
		{"repeat favorite", fakeServices{alreadyFavorited: true}, http.MethodPost, "/api/v1/users/1/favorites", `{"movie_id":2}`, http.StatusOK, ""},
		{"like", fakeServices{}, http.MethodPost, "/api/v1/users/1/likes", `{"movie_id":2,"action":"like"}`, http.StatusOK, ""},
		{"watched", fakeServices{}, http.MethodPost, "/api/v1/users/1/watched", `{"movie_id":2}`, http.StatusOK, ""},
		{"preferences", fakeServices{}, http.MethodGet, "/api/v1/users/1/preferences", "", http.StatusOK, ""},
		{
			"adjust unknown user",
			fakeServices{}, http.MethodPost, "/api/v1/users/5/preferences/adjust",
			`{"genre_ids":[1],"action":"favorite","weight":1}`, http.StatusNotFound, "user 5: not found",
		},
		{
			"adjust all failed",
			fakeServices{err: models.NotFoundf("genre %d", 9)}, http.MethodPost, "/api/v1/users/1/preferences/adjust",
			`{"genre_ids":[9],"action":"favorite","weight":1}`, http.StatusNotFound, "genre 9: not found",
		},
		{
			"adjust partially failed",
			fakeServices{err: errors.New("genre 9: not found"), adjusted: []models.Preference{{GenreID: 1, Priority: 2}}},
			http.MethodPost, "/api/v1/users/1/preferences/adjust",
			`{"genre_ids":[1,9],"action":"favorite","weight":1}`, http.StatusOK, "genre 9: not found",
		},
		{"unknown strategy", fakeServices{}, http.MethodGet, "/api/v1/users/1/recommendations?strategy=random", "", http.StatusBadRequest, "strategy: unknown strategy random"},
		{
			"recommendation failure",
			fakeServices{err: errors.New("connection reset")},
			http.MethodGet, "/api/v1/users/1/recommendations", "",
			http.StatusInternalServerError, "failed to generate recommendations",
		},
		{"ranked", fakeServices{}, http.MethodGet, "/api/v1/users/1/recommendations/ranked?limit=5", "", http.StatusOK, ""},
		{"similar", fakeServices{}, http.MethodGet, "/api/v1/movies/3/similar", "", http.StatusOK, ""},
		{"similar bad id", fakeServices{}, http.MethodGet, "/api/v1/movies/0/similar", "", http.StatusBadRequest, "invalid movie ID"},
		{"snapshot", fakeServices{}, http.MethodGet, "/api/v1/snapshot", "", http.StatusOK, ""},
		{"genres", fakeServices{}, http.MethodGet, "/api/v1/genres", "", http.StatusOK, ""},
		{"create genre", fakeServices{}, http.MethodPost, "/api/v1/genres", `{"name":"Noir"}`, http.StatusCreated, ""},
		{"create movie", fakeServices{}, http.MethodPost, "/api/v1/movies", `{"title":"Heat","release_date":"1995-12-15","duration":170,"genres":[1]}`, http.StatusCreated, ""},
		{"dashboard", fakeServices{}, http.MethodGet, "/api/v1/dashboard", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := tt.fake
			status, body := do(t, newTestApp(&fake), tt.method, tt.target, tt.body)
			if status != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (%v)", tt.method, tt.target, status, tt.wantStatus, body)
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestGetRecommendations_PassesQuery(t *testing.T) {
	fake := &fakeServices{}
	status, body := do(t, newTestApp(fake), http.MethodGet,
		"/api/v1/users/1/recommendations?strategy=content&movie_id=4&limit=7", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d (%v)", status, body)
	}

	want := models.RecommendationRequest{UserID: 1, MovieID: 4, Limit: 7, Strategy: models.StrategyContent}
	if fake.gotRec != want {
		t.Errorf("request = %+v, want %+v", fake.gotRec, want)
	}
	if body["strategy"] != "content" {
		t.Errorf("strategy = %v", body["strategy"])
	}
}

func TestGetRecommendations_DefaultsToHybrid(t *testing.T) {
	fake := &fakeServices{}
	do(t, newTestApp(fake), http.MethodGet, "/api/v1/users/1/recommendations", "")
	if fake.gotRec.Strategy != models.StrategyHybrid || fake.gotRec.Limit != 0 {
		t.Errorf("request = %+v, want hybrid with default limit", fake.gotRec)
	}
}

func TestListMovies_UserFlagsQuery(t *testing.T) {
	fake := &fakeServices{}
	status, body := do(t, newTestApp(fake), http.MethodGet, "/api/v1/movies?user_id=1", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d (%v)", status, body)
	}
	if fake.gotUserID != 1 {
		t.Errorf("user_id = %d, want 1", fake.gotUserID)
	}
	if movies, ok := body["movies"].([]any); !ok || len(movies) != 1 {
		t.Errorf("movies = %v", body["movies"])
	}
}

func TestRegisterSwagger(t *testing.T) {
	app := fiber.New()
	RegisterSwagger(app, []byte("openapi: 3.0.3\n"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.yaml", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(raw) != "openapi: 3.0.3\n" {
		t.Errorf("GET /swagger/doc.yaml = %d %q", resp.StatusCode, raw)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
}
