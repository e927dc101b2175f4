package recommended

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/recommendations", h.getRecommendations)
}

// getRecommendations exposes the raw upstream payload for a goal.
func (h *Handler) getRecommendations(c *fiber.Ctx) error {
	resp, err := h.service.Recommend(c.UserContext(), c.Query("goal"))
	if err != nil {
		if errors.Is(err, ErrInvalidGoal) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "recommendation service unavailable"})
	}
	return c.JSON(resp)
}
