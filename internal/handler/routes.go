package handler

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the API on api, normally the /api/v1 group.
func RegisterRoutes(
	api fiber.Router,
	users *UserHandler,
	interactions *InteractionHandler,
	movies *MovieHandler,
	recs *RecommendationHandler,
) {
	api.Post("/users", users.CreateUser)
	api.Get("/users/:id", users.GetUser)
	api.Get("/users/:id/preferences", users.ListPreferences)
	api.Post("/users/:id/preferences/adjust", users.AdjustPreferences)

	api.Post("/users/:id/ratings", interactions.Rate)
	api.Post("/users/:id/likes", interactions.Like)
	api.Post("/users/:id/favorites", interactions.Favorite)
	api.Post("/users/:id/watched", interactions.Watch)

	api.Get("/users/:id/recommendations", recs.GetRecommendations)
	api.Get("/users/:id/recommendations/ranked", recs.GetRanked)
	api.Get("/movies/:id/similar", recs.GetSimilar)
	api.Get("/snapshot", recs.GetSnapshot)

	api.Get("/genres", movies.ListGenres)
	api.Post("/genres", movies.CreateGenre)
	api.Get("/movies", movies.ListMovies)
	api.Post("/movies", movies.CreateMovie)
	api.Get("/dashboard", movies.Dashboard)
}
