package models

import "time"

// PreferenceType is the direction of a user's affinity for a genre.
type PreferenceType string

const (
	PreferenceFavorite PreferenceType = "favorite"
	PreferenceAvoid    PreferenceType = "avoid"
)

// Priority bounds, inclusive.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Preference is the accumulated genre affinity of a user.
type Preference struct {
	ID             int            `json:"id"`
	UserID         int            `json:"user_id"`
	GenreID        int            `json:"genre_id"`
	GenreName      string         `json:"genre_name,omitempty"`
	PreferenceType PreferenceType `json:"preference_type"`
	Priority       int            `json:"priority"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AdjustPreferenceRequest is the request body for a manual ledger adjustment.
type AdjustPreferenceRequest struct {
	GenreIDs []int          `json:"genre_ids" validate:"required,min=1,dive,min=1"`
	Action   PreferenceType `json:"action" validate:"required,oneof=favorite avoid"`
	Weight   int            `json:"weight" validate:"ne=0"`
}

// ClampPriority bounds p to [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// NewPreference returns the row created by the first signal for a
// (user, genre) pair.
func NewPreference(userID, genreID int, action PreferenceType, weight int) Preference {
	return Preference{
		UserID:         userID,
		GenreID:        genreID,
		PreferenceType: action,
		Priority:       ClampPriority(abs(weight)),
	}
}

// ApplyAdjustment moves an existing preference by weight in the direction
// of action. A favorite adjustment marks the row as favorite; an avoid
// adjustment that reaches the floor marks it as avoid.
func ApplyAdjustment(p *Preference, action PreferenceType, weight int) {
	w := abs(weight)
	switch action {
	case PreferenceFavorite:
		p.Priority = ClampPriority(p.Priority + w)
		p.PreferenceType = PreferenceFavorite
	case PreferenceAvoid:
		p.Priority = ClampPriority(p.Priority - w)
		if p.Priority == MinPriority {
			p.PreferenceType = PreferenceAvoid
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
