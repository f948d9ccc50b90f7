package supervisor

import (
	"context"
	"log/slog"
	"time"

	"movie-recommendation-service/internal/service"
)

// SnapshotBuilder is the part of the snapshot store the refresher drives.
type SnapshotBuilder interface {
	NeedsRefresh() bool
	Rebuild(ctx context.Context) (*service.Snapshot, error)
}

// SnapshotRefresher builds the recommendation snapshot on startup and
// rebuilds it on every tick where something changed.
type SnapshotRefresher struct {
	builder  SnapshotBuilder
	interval time.Duration
	name     string
}

func NewSnapshotRefresher(builder SnapshotBuilder, interval time.Duration) *SnapshotRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SnapshotRefresher{
		builder:  builder,
		interval: interval,
		name:     "snapshot-refresher",
	}
}

// Serve implements suture.Service.
func (r *SnapshotRefresher) Serve(ctx context.Context) error {
	slog.Info("snapshot refresher starting", "interval", r.interval)
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot refresher shutting down")
			return ctx.Err()

		case <-ticker.C:
			if r.builder.NeedsRefresh() {
				r.refresh(ctx)
			}
		}
	}
}

// refresh failures are logged; the previous snapshot keeps serving.
func (r *SnapshotRefresher) refresh(ctx context.Context) {
	if _, err := r.builder.Rebuild(ctx); err != nil {
		slog.Warn("snapshot refresh failed", "error", err)
	}
}

func (r *SnapshotRefresher) String() string {
	return r.name
}
