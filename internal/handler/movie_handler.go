package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

type MovieService interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, req models.CreateGenreRequest) (*models.Genre, error)
	ListMovies(ctx context.Context, userID int) ([]models.MovieListItem, error)
	CreateMovie(ctx context.Context, req models.CreateMovieRequest) (*models.Movie, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// MovieHandler handles HTTP requests for the catalog.
type MovieHandler struct {
	svc MovieService
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc MovieService) *MovieHandler {
	return &MovieHandler{svc: svc}
}

func (h *MovieHandler) ListGenres(c fiber.Ctx) error {
	genres, err := h.svc.ListGenres(c.Context())
	if err != nil {
		return respondError(c, err, "failed to retrieve genres")
	}
	return c.JSON(fiber.Map{"genres": genres})
}

func (h *MovieHandler) CreateGenre(c fiber.Ctx) error {
	var req models.CreateGenreRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	g, err := h.svc.CreateGenre(c.Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create genre")
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

// ListMovies returns every movie with its interaction counts. The optional
// user_id query parameter adds that user's flags.
func (h *MovieHandler) ListMovies(c fiber.Ctx) error {
	userID := fiber.Query(c, "user_id", 0)
	if userID < 0 {
		return badRequest(c, "invalid user ID")
	}

	movies, err := h.svc.ListMovies(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to retrieve movies", "user_id", userID)
	}
	return c.JSON(fiber.Map{"movies": movies})
}

func (h *MovieHandler) CreateMovie(c fiber.Ctx) error {
	var req models.CreateMovieRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := h.svc.CreateMovie(c.Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create movie", "title", req.Title)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// Dashboard returns catalog-wide statistics.
func (h *MovieHandler) Dashboard(c fiber.Ctx) error {
	d, err := h.svc.Dashboard(c.Context())
	if err != nil {
		return respondError(c, err, "failed to build dashboard")
	}
	return c.JSON(d)
}
