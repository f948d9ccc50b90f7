package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

type RecommendationService interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error)
	Similar(ctx context.Context, movieID, limit int) ([]models.MovieListItem, error)
	Ranked(ctx context.Context, userID, limit int) ([]models.MovieListItem, error)
	SnapshotInfo(ctx context.Context) (*models.SnapshotInfo, error)
}

type RecommendationHandler struct {
	svc RecommendationService
}

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// GetRecommendations godoc
// GET /api/v1/users/:id/recommendations?strategy=&movie_id=&limit=
func (h *RecommendationHandler) GetRecommendations(c fiber.Ctx) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}

	strategy, err := models.ParseStrategy(c.Query("strategy"))
	if err != nil {
		return respondError(c, err, "invalid strategy")
	}

	req := models.RecommendationRequest{
		UserID:   userID,
		MovieID:  fiber.Query(c, "movie_id", 0),
		Limit:    fiber.Query(c, "limit", 0),
		Strategy: strategy,
	}
	resp, err := h.svc.Recommend(c.Context(), req)
	if err != nil {
		return respondError(c, err, "failed to generate recommendations",
			"user_id", userID, "strategy", strategy)
	}

	return c.JSON(resp)
}

// GetRanked godoc
// GET /api/v1/users/:id/recommendations/ranked
func (h *RecommendationHandler) GetRanked(c fiber.Ctx) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}

	items, err := h.svc.Ranked(c.Context(), userID, fiber.Query(c, "limit", 0))
	if err != nil {
		return respondError(c, err, "failed to rank movies", "user_id", userID)
	}
	return c.JSON(fiber.Map{"user_id": userID, "recommendations": items})
}

// GetSimilar godoc
// GET /api/v1/movies/:id/similar
func (h *RecommendationHandler) GetSimilar(c fiber.Ctx) error {
	movieID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}

	items, err := h.svc.Similar(c.Context(), movieID, fiber.Query(c, "limit", 0))
	if err != nil {
		return respondError(c, err, "failed to find similar movies", "movie_id", movieID)
	}
	return c.JSON(fiber.Map{"movie_id": movieID, "similar": items})
}

// GetSnapshot godoc
// GET /api/v1/snapshot
func (h *RecommendationHandler) GetSnapshot(c fiber.Ctx) error {
	info, err := h.svc.SnapshotInfo(c.Context())
	if err != nil {
		return respondError(c, err, "failed to load recommendation snapshot")
	}
	return c.JSON(info)
}
