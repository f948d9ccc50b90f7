package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"movie-recommendation-service/internal/config"
	"movie-recommendation-service/internal/models"
)

// fakeStore is an in-memory stand-in for every repository.
type fakeStore struct {
	mu sync.Mutex

	users     map[int]models.User
	movies    []models.Movie
	ratings   map[[2]int]float64
	likes     map[[2]int]models.LikeAction
	favorites map[[2]int]bool
	watched   map[[2]int]int
	prefs     map[[2]int]*models.Preference

	failGenre     int
	failRatings   bool
	ratingLoads   atomic.Int32
	ratingsGate   chan struct{}
	prefCreations int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[int]models.User{},
		ratings:   map[[2]int]float64{},
		likes:     map[[2]int]models.LikeAction{},
		favorites: map[[2]int]bool{},
		watched:   map[[2]int]int{},
		prefs:     map[[2]int]*models.Preference{},
	}
}

func (f *fakeStore) addUser(id int) {
	f.users[id] = models.User{ID: id, Username: "user"}
}

func (f *fakeStore) addMovie(id int, title string, genreIDs ...int) {
	m := models.Movie{ID: id, Title: title, Genres: []models.Genre{}}
	for _, g := range genreIDs {
		m.Genres = append(m.Genres, models.Genre{ID: g, Name: genreName(g)})
	}
	f.movies = append(f.movies, m)
}

func genreName(id int) string {
	return map[int]string{1: "Action", 2: "Comedy", 3: "Drama", 4: "Horror"}[id]
}

func (f *fakeStore) GetUser(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.NotFoundf("user %d", id)
	}
	return &u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, req models.CreateUserRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: len(f.users) + 1, Username: req.Username, Email: req.Email}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeStore) movie(id int) (*models.Movie, bool) {
	for i := range f.movies {
		if f.movies[i].ID == id {
			return &f.movies[i], true
		}
	}
	return nil, false
}

func (f *fakeStore) ListGenres(context.Context) ([]models.Genre, error) {
	return []models.Genre{{ID: 1, Name: "Action"}, {ID: 2, Name: "Comedy"}}, nil
}

func (f *fakeStore) CreateGenre(_ context.Context, g models.Genre) (*models.Genre, error) {
	g.ID = 99
	return &g, nil
}

func (f *fakeStore) CreateMovie(_ context.Context, m models.Movie, genreIDs []int) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = len(f.movies) + 100
	for _, g := range genreIDs {
		if genreName(g) == "" {
			return nil, models.NotFoundf("genre %d", g)
		}
		m.Genres = append(m.Genres, models.Genre{ID: g, Name: genreName(g)})
	}
	f.movies = append(f.movies, m)
	return &m, nil
}

func (f *fakeStore) ListMovies(context.Context) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Movie(nil), f.movies...), nil
}

func (f *fakeStore) MoviesByIDs(_ context.Context, ids []int) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Movie{}
	for _, id := range ids {
		if m, ok := f.movie(id); ok {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) MovieStats(context.Context) (map[int]models.MovieStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := map[int]models.MovieStats{}
	for k, a := range f.likes {
		s := stats[k[1]]
		s.MovieID = k[1]
		switch a {
		case models.ActionLike:
			s.LikesCount++
		case models.ActionDislike:
			s.DislikesCount++
		}
		stats[k[1]] = s
	}
	return stats, nil
}

func (f *fakeStore) RankedForUser(_ context.Context, userID, limit int) ([]models.MovieListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := []models.MovieListItem{}
	for i := range f.movies {
		if len(items) == limit {
			break
		}
		items = append(items, models.NewMovieListItem(&f.movies[i], models.MovieStats{}))
	}
	return items, nil
}

func (f *fakeStore) Dashboard(context.Context) (*models.Dashboard, error) {
	return &models.Dashboard{MovieCount: len(f.movies)}, nil
}

func (f *fakeStore) GenreIDsForMovie(_ context.Context, movieID int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movie(movieID)
	if !ok {
		return nil, models.NotFoundf("movie %d", movieID)
	}
	return m.GenreIDs(), nil
}

func (f *fakeStore) UpsertRating(_ context.Context, userID int, req models.RateRequest) (*models.Rating, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.movie(req.MovieID); !ok {
		return nil, false, models.NotFoundf("movie %d", req.MovieID)
	}
	key := [2]int{userID, req.MovieID}
	_, existed := f.ratings[key]
	f.ratings[key] = req.Rating
	return &models.Rating{UserID: userID, MovieID: req.MovieID, Value: req.Rating, Review: req.Review}, !existed, nil
}

func (f *fakeStore) SetLike(_ context.Context, userID, movieID int, action models.LikeAction) (*models.LikeDislike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes[[2]int{userID, movieID}] = action
	return &models.LikeDislike{UserID: userID, MovieID: movieID, Action: action}, nil
}

func (f *fakeStore) AddFavorite(_ context.Context, userID, movieID int) (*models.FavoriteMovie, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{userID, movieID}
	existed := f.favorites[key]
	f.favorites[key] = true
	return &models.FavoriteMovie{UserID: userID, MovieID: movieID}, !existed, nil
}

func (f *fakeStore) MarkWatched(_ context.Context, userID, movieID int) (*models.WatchedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{userID, movieID}
	f.watched[key]++
	return &models.WatchedMovie{UserID: userID, MovieID: movieID, WatchCount: f.watched[key]}, nil
}

func (f *fakeStore) UserInteractions(_ context.Context, userID int) (*models.UserInteractions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ui := &models.UserInteractions{
		Likes:     map[int]models.LikeAction{},
		Favorites: map[int]bool{},
		Watched:   map[int]int{},
	}
	for k, a := range f.likes {
		if k[0] == userID {
			ui.Likes[k[1]] = a
		}
	}
	for k := range f.favorites {
		if k[0] == userID {
			ui.Favorites[k[1]] = true
		}
	}
	for k, n := range f.watched {
		if k[0] == userID {
			ui.Watched[k[1]] = n
		}
	}
	return ui, nil
}

func (f *fakeStore) AllRatings(ctx context.Context) ([]models.Rating, error) {
	f.ratingLoads.Add(1)
	if f.ratingsGate != nil {
		select {
		case <-f.ratingsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRatings {
		return nil, errors.New("connection refused")
	}
	out := []models.Rating{}
	for k, v := range f.ratings {
		out = append(out, models.Rating{UserID: k[0], MovieID: k[1], Value: v})
	}
	return out, nil
}

func (f *fakeStore) AdjustPreference(_ context.Context, userID, genreID int, action models.PreferenceType, weight int) (*models.Preference, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if genreID == f.failGenre {
		return nil, false, models.NotFoundf("genre %d", genreID)
	}
	key := [2]int{userID, genreID}
	p, ok := f.prefs[key]
	if !ok {
		np := models.NewPreference(userID, genreID, action, weight)
		f.prefs[key] = &np
		f.prefCreations++
		return &np, true, nil
	}
	models.ApplyAdjustment(p, action, weight)
	out := *p
	return &out, false, nil
}

func (f *fakeStore) ListPreferences(_ context.Context, userID int) ([]models.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Preference{}
	for k, p := range f.prefs {
		if k[0] == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].GenreID < out[j].GenreID
	})
	return out, nil
}

func (f *fakeStore) pref(userID, genreID int) (models.Preference, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[[2]int{userID, genreID}]
	if !ok {
		return models.Preference{}, false
	}
	return *p, true
}

func testRecommenderConfig() config.RecommenderConfig {
	return config.RecommenderConfig{
		KNNNeighbors:   5,
		ModelNeighbors: 3,
		PeerTopN:       3,
		ContentTopN:    3,
		DefaultLimit:   10,
		MaxLimit:       50,
		PopularLimit:   10,
	}
}

// testServices wires every service over one fakeStore.
type testServices struct {
	store        *fakeStore
	snapshots    *SnapshotStore
	prefs        *PreferenceService
	interactions *InteractionService
	recs         *RecommendationService
	movies       *MovieService
}

func newTestServices(f *fakeStore) *testServices {
	cfg := testRecommenderConfig()
	snapshots := NewSnapshotStore(f, f, SnapshotConfig{ModelNeighbors: cfg.ModelNeighbors})
	prefs := NewPreferenceService(f, f)
	strategies := NewStrategies(snapshots, f, f, f, cfg)
	return &testServices{
		store:        f,
		snapshots:    snapshots,
		prefs:        prefs,
		interactions: NewInteractionService(f, f, prefs, snapshots, nil),
		recs:         NewRecommendationService(f, f, f, strategies, snapshots, nil, cfg),
		movies:       NewMovieService(f, f, f, snapshots, nil),
	}
}
