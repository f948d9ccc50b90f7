package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

type UserService interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type PreferenceService interface {
	Adjust(ctx context.Context, userID int, genreIDs []int, action models.PreferenceType, weight int) ([]models.Preference, error)
	List(ctx context.Context, userID int) ([]models.Preference, error)
}

type UserHandler struct {
	users UserService
	prefs PreferenceService
}

func NewUserHandler(users UserService, prefs PreferenceService) *UserHandler {
	return &UserHandler{users: users, prefs: prefs}
}

// CreateUser creates a new user.
func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.users.CreateUser(c.Context(), req)
	if err != nil {
		return respondError(c, err, "failed to create user")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser returns a user by ID.
func (h *UserHandler) GetUser(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}

	user, err := h.users.GetUser(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get user", "user_id", id)
	}

	return c.JSON(user)
}

// ListPreferences returns the user's genre preferences, highest priority
// first.
func (h *UserHandler) ListPreferences(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}

	prefs, err := h.prefs.List(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to list preferences", "user_id", id)
	}

	return c.JSON(fiber.Map{"preferences": prefs})
}

// AdjustPreferences applies a manual ledger adjustment to one or more
// genres. Genres that fail are reported while the rest still apply.
func (h *UserHandler) AdjustPreferences(c fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user ID")
	}

	var req models.AdjustPreferenceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if _, err := h.users.GetUser(c.Context(), id); err != nil {
		return respondError(c, err, "failed to get user", "user_id", id)
	}

	updated, err := h.prefs.Adjust(c.Context(), id, req.GenreIDs, req.Action, req.Weight)
	if err != nil && len(updated) == 0 {
		return respondError(c, err, "failed to adjust preferences", "user_id", id)
	}

	resp := fiber.Map{"preferences": updated}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}
