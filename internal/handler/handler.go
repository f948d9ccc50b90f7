package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-service/internal/models"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-recommendation-service",
	})
}

// respondError maps service errors to HTTP responses. Unexpected errors are
// logged and reported with msg.
func respondError(c fiber.Ctx, err error, msg string, attrs ...any) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ve.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}

	slog.Error(msg, append(attrs, "error", err)...)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// pathID reads a positive integer path parameter.
func pathID(c fiber.Ctx, name string) (int, bool) {
	id := fiber.Params[int](c, name)
	return id, id > 0
}
