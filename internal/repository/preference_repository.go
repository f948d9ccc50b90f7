package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"movie-recommendation-service/internal/models"
)

// PreferenceRepository stores the per-(user, genre) preference ledger.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// AdjustPreference applies one ledger adjustment inside a transaction. A
// missing row is created from the adjustment; an existing row is locked,
// moved by weight and clamped. created reports which case happened.
func (r *PreferenceRepository) AdjustPreference(
	ctx context.Context,
	userID, genreID int,
	action models.PreferenceType,
	weight int,
) (*models.Preference, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := models.NewPreference(userID, genreID, action, weight)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO preferences (user_id, genre_id, preference_type, priority, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, genre_id) DO NOTHING
		RETURNING id, updated_at
	`, userID, genreID, p.PreferenceType, p.Priority).Scan(&p.ID, &p.UpdatedAt)

	created := err == nil
	switch {
	case created:
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			SELECT id, preference_type, priority
			FROM preferences
			WHERE user_id = $1 AND genre_id = $2
			FOR UPDATE
		`, userID, genreID).Scan(&p.ID, &p.PreferenceType, &p.Priority)
		if err != nil {
			return nil, false, translate(err, "lock preference")
		}

		models.ApplyAdjustment(&p, action, weight)

		err = tx.QueryRowContext(ctx, `
			UPDATE preferences
			SET preference_type = $1, priority = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING updated_at
		`, p.PreferenceType, p.Priority, p.ID).Scan(&p.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("update preference: %w", err)
		}
	default:
		return nil, false, translate(err, fmt.Sprintf("preference for genre %d", genreID))
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit preference: %w", err)
	}
	return &p, created, nil
}

// ListPreferences returns a user's preferences, highest priority first.
func (r *PreferenceRepository) ListPreferences(ctx context.Context, userID int) ([]models.Preference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.genre_id, g.name, p.preference_type, p.priority, p.updated_at
		FROM preferences p
		JOIN genres g ON g.id = p.genre_id
		WHERE p.user_id = $1
		ORDER BY p.priority DESC, p.genre_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.Preference{}
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.ID, &p.UserID, &p.GenreID, &p.GenreName, &p.PreferenceType, &p.Priority, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
