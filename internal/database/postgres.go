package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"movie-recommendation-service/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Migrations are idempotent and run in order on every start.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(100) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL,
		slug VARCHAR(120) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(300) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		release_date DATE NOT NULL,
		duration INTEGER NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		rating NUMERIC(2,1) NOT NULL CHECK (rating >= 1.0 AND rating <= 5.0),
		review TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS like_dislikes (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		action VARCHAR(10) NOT NULL CHECK (action IN ('like', 'dislike', 'none')),
		created_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_movies (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		added_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS watched_movies (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		watch_count INTEGER NOT NULL DEFAULT 1 CHECK (watch_count >= 1),
		UNIQUE(user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		preference_type VARCHAR(10) NOT NULL CHECK (preference_type IN ('favorite', 'avoid')),
		priority INTEGER NOT NULL CHECK (priority BETWEEN 1 AND 5),
		updated_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id, genre_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_movie_id ON ratings(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_like_dislikes_movie_id ON like_dislikes(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_movie_id ON watched_movies(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_preferences_user_id ON preferences(user_id)`,
}

// RunMigrations applies Migrations in order.
func RunMigrations(db *sql.DB) error {
	for _, m := range Migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
