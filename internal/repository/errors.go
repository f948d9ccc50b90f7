package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"movie-recommendation-service/internal/models"
)

// Postgres error codes we translate.
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// translate maps driver errors onto the domain error taxonomy: missing rows
// and foreign-key violations become ErrNotFound, unique violations become
// validation errors.
func translate(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: referenced row does not exist (%s): %w", what, pqErr.Constraint, models.ErrNotFound)
		case pqUniqueViolation:
			return &models.ValidationError{Message: fmt.Sprintf("%s: already exists", what)}
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
