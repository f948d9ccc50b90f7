package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"movie-recommendation-service/internal/metrics"
	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/recommender"
)

// CatalogSource lists every movie with its genres.
type CatalogSource interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
}

// RatingSource lists every rating.
type RatingSource interface {
	AllRatings(ctx context.Context) ([]models.Rating, error)
}

// Snapshot is an immutable, versioned view of the recommendation models.
// The matrix and the KNN model are always built together.
type Snapshot struct {
	ID          uuid.UUID
	Version     int64
	BuiltAt     time.Time
	RatingCount int
	Matrix      *recommender.Matrix
	Model       *recommender.KNNModel
	Content     *recommender.ContentIndex
	Catalog     []recommender.CatalogEntry
}

// Info describes the snapshot for the API.
func (s *Snapshot) Info() models.SnapshotInfo {
	users, movies := s.Matrix.Len()
	return models.SnapshotInfo{
		ID:          s.ID.String(),
		Version:     s.Version,
		BuiltAt:     s.BuiltAt,
		Users:       users,
		Movies:      movies,
		RatingCount: s.RatingCount,
	}
}

// SnapshotConfig controls when a snapshot is rebuilt.
type SnapshotConfig struct {
	ModelNeighbors int
	MaxAge         time.Duration
	RebuildDelta   int
	// BuildTimeout bounds one rebuild. Zero means no bound.
	BuildTimeout time.Duration
}

// SnapshotStore owns the current Snapshot. Readers get the current pointer
// without locking; a rebuild swaps it atomically.
type SnapshotStore struct {
	catalog CatalogSource
	ratings RatingSource
	cfg     SnapshotConfig

	current atomic.Pointer[Snapshot]
	version atomic.Int64
	pending atomic.Int64
	dirty   atomic.Bool
	group   singleflight.Group
	now     func() time.Time
}

func NewSnapshotStore(catalog CatalogSource, ratings RatingSource, cfg SnapshotConfig) *SnapshotStore {
	return &SnapshotStore{
		catalog: catalog,
		ratings: ratings,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Current returns a snapshot fresh enough to serve. It rebuilds when none
// exists, when the current one is older than MaxAge, when RebuildDelta
// rating writes happened since it was built, or when the catalog changed.
// If a rebuild fails the previous snapshot keeps serving.
func (s *SnapshotStore) Current(ctx context.Context) (*Snapshot, error) {
	snap := s.current.Load()
	if snap != nil && !s.stale(snap) {
		return snap, nil
	}

	fresh, err := s.Rebuild(ctx)
	if err != nil {
		if snap != nil {
			slog.Warn("snapshot rebuild failed, serving previous version",
				"version", snap.Version, "error", err)
			return snap, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (s *SnapshotStore) stale(snap *Snapshot) bool {
	if s.dirty.Load() {
		return true
	}
	if s.cfg.MaxAge > 0 && s.now().Sub(snap.BuiltAt) > s.cfg.MaxAge {
		return true
	}
	return s.cfg.RebuildDelta > 0 && s.pending.Load() >= int64(s.cfg.RebuildDelta)
}

// NeedsRefresh reports whether anything changed since the last build or the
// snapshot aged out.
func (s *SnapshotStore) NeedsRefresh() bool {
	snap := s.current.Load()
	return snap == nil || s.pending.Load() > 0 || s.stale(snap)
}

// NoteRatingWrite counts a rating write toward the rebuild delta.
func (s *SnapshotStore) NoteRatingWrite() {
	if s == nil {
		return
	}
	s.pending.Add(1)
}

// Invalidate forces a rebuild on the next read, used when the catalog
// changes.
func (s *SnapshotStore) Invalidate() {
	if s == nil {
		return
	}
	s.dirty.Store(true)
}

// Rebuild builds a new snapshot. Concurrent calls share one build, which
// outlives the caller's cancellation but not BuildTimeout.
func (s *SnapshotStore) Rebuild(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.group.Do("rebuild", func() (any, error) {
		buildCtx := context.WithoutCancel(ctx)
		if s.cfg.BuildTimeout > 0 {
			var cancel context.CancelFunc
			buildCtx, cancel = context.WithTimeout(buildCtx, s.cfg.BuildTimeout)
			defer cancel()
		}
		return s.build(buildCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *SnapshotStore) build(ctx context.Context) (*Snapshot, error) {
	start := s.now()
	pendingAtStart := s.pending.Load()
	s.dirty.Store(false)

	var (
		movies  []models.Movie
		ratings []models.Rating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = s.catalog.ListMovies(gctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ratings, err = s.ratings.AllRatings(gctx)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.dirty.Store(true)
		metrics.SnapshotBuildErrors.Inc()
		return nil, err
	}

	matrix := recommender.BuildInteractionMatrix(ratings)
	catalog := recommender.NewCatalog(movies)
	snap := &Snapshot{
		ID:          uuid.New(),
		Version:     s.version.Add(1),
		BuiltAt:     s.now(),
		RatingCount: len(ratings),
		Matrix:      matrix,
		Model:       recommender.FitKNN(matrix, s.cfg.ModelNeighbors),
		Content:     recommender.BuildContentIndex(catalog),
		Catalog:     catalog,
	}
	s.pending.Add(-pendingAtStart)
	s.current.Store(snap)

	users, cols := matrix.Len()
	took := s.now().Sub(start)
	metrics.RecordSnapshot(snap.Version, users, cols, snap.RatingCount, took)
	slog.Info("recommendation snapshot built",
		"id", snap.ID, "version", snap.Version,
		"users", users, "movies", len(catalog), "ratings", snap.RatingCount,
		"took", took)
	return snap, nil
}
