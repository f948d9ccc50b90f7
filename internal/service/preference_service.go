package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"movie-recommendation-service/internal/metrics"
	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/validation"
)

// PreferenceStore persists the genre preference ledger.
type PreferenceStore interface {
	AdjustPreference(ctx context.Context, userID, genreID int, action models.PreferenceType, weight int) (*models.Preference, bool, error)
	ListPreferences(ctx context.Context, userID int) ([]models.Preference, error)
}

// UserLookup resolves users by ID.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// PreferenceService applies incremental genre preference adjustments.
type PreferenceService struct {
	store PreferenceStore
	users UserLookup
}

func NewPreferenceService(store PreferenceStore, users UserLookup) *PreferenceService {
	return &PreferenceService{store: store, users: users}
}

// Adjust moves the user's preference for each genre by weight in the
// direction of action. Genres are adjusted independently: a failure for one
// genre is logged and reported in the joined error while the others still
// apply.
func (s *PreferenceService) Adjust(ctx context.Context, userID int, genreIDs []int, action models.PreferenceType, weight int) ([]models.Preference, error) {
	req := models.AdjustPreferenceRequest{GenreIDs: genreIDs, Action: action, Weight: weight}
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return s.adjust(ctx, "manual", userID, genreIDs, action, weight)
}

func (s *PreferenceService) adjust(
	ctx context.Context,
	source string,
	userID int,
	genreIDs []int,
	action models.PreferenceType,
	weight int,
) ([]models.Preference, error) {
	if action != models.PreferenceFavorite && action != models.PreferenceAvoid {
		return nil, &models.ValidationError{Field: "action", Message: fmt.Sprintf("unknown preference action %q", action)}
	}
	if weight == 0 {
		return nil, &models.ValidationError{Field: "weight", Message: "must not be zero"}
	}

	var (
		updated []models.Preference
		errs    []error
		seen    = make(map[int]bool, len(genreIDs))
	)
	for _, genreID := range genreIDs {
		if seen[genreID] {
			continue
		}
		seen[genreID] = true

		p, created, err := s.store.AdjustPreference(ctx, userID, genreID, action, weight)
		if err != nil {
			metrics.PreferenceAdjustmentErrors.Inc()
			slog.Error("failed to adjust preference",
				"user_id", userID, "genre_id", genreID, "action", action, "error", err)
			errs = append(errs, fmt.Errorf("genre %d: %w", genreID, err))
			continue
		}
		metrics.PreferenceAdjustments.WithLabelValues(string(action), source).Inc()
		slog.Debug("preference adjusted",
			"user_id", userID, "genre_id", genreID, "action", action,
			"priority", p.Priority, "type", p.PreferenceType, "created", created, "source", source)
		updated = append(updated, *p)
	}
	return updated, errors.Join(errs...)
}

// List returns the user's preferences, highest priority first.
func (s *PreferenceService) List(ctx context.Context, userID int) ([]models.Preference, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListPreferences(ctx, userID)
}
