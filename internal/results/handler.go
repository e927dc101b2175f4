package results

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/handoff", h.publish)
	app.Get("/results/:id", h.getResults)
}

type handoffRequest struct {
	Recommendations string `json:"recommendations" form:"recommendations"`
	OriginalGoal    string `json:"originalGoal" form:"originalGoal"`
}

func (h *Handler) publish(c *fiber.Ctx) error {
	payload := new(handoffRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	// snapshots outlive the request; form values alias fasthttp's buffers
	goal := utils.CopyString(payload.OriginalGoal)
	recs := utils.CopyString(payload.Recommendations)
	id, err := h.service.Publish(c.UserContext(), goal, recs)
	if err != nil {
		if errors.Is(err, ErrInvalidHandoff) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "location": "/results/" + id})
}

// getResults renders the snapshot once; every later request is sent home.
func (h *Handler) getResults(c *fiber.Ctx) error {
	id := c.Params("id")
	view, err := h.service.Consume(c.UserContext(), id)
	if err != nil {
		logging.Warn().Err(err).Str("snapshot_id", id).Msg("no usable results snapshot, redirecting home")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(view)
}
