package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

type InteractionService interface {
	Rate(ctx context.Context, userID int, req models.RateRequest) (*models.RatingResult, error)
	Like(ctx context.Context, userID int, req models.LikeRequest) (*models.LikeDislike, error)
	Favorite(ctx context.Context, userID int, req models.MovieRequest) (*models.FavoriteResult, error)
	Watch(ctx context.Context, userID int, req models.MovieRequest) (*models.WatchedMovie, error)
}

type InteractionHandler struct {
	svc InteractionService
}

func NewInteractionHandler(svc InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

// Rate creates or updates the user's rating of a movie.
func (h *InteractionHandler) Rate(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}
	var req models.RateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Rate(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to save rating", "user_id", id, "movie_id", req.MovieID)
	}

	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(res)
}

func (h *InteractionHandler) Like(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}
	var req models.LikeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ld, err := h.svc.Like(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to save like", "user_id", id, "movie_id", req.MovieID)
	}
	return c.JSON(ld)
}

// Favorite adds a movie to the user's favorites. Adding it again is not an
// error.
func (h *InteractionHandler) Favorite(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}
	var req models.MovieRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Favorite(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to save favorite", "user_id", id, "movie_id", req.MovieID)
	}

	status := fiber.StatusCreated
	if res.AlreadyFavorited {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(res)
}

func (h *InteractionHandler) Watch(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}
	var req models.MovieRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.svc.Watch(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to save watched movie", "user_id", id, "movie_id", req.MovieID)
	}
	return c.JSON(w)
}
