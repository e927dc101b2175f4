package goal

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/", h.landing)
	app.Post("/api/v1/goal", h.submit)
}

func (h *Handler) landing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"prefix": Prefix, "placeholders": Placeholders})
}

type submitRequest struct {
	Goal string `json:"goal" form:"goal"`
}

func (h *Handler) submit(c *fiber.Ctx) error {
	payload := new(submitRequest)
	if err := c.BodyParser(payload); err != nil {
		logging.Debug().Err(err).Msg("unreadable goal submission")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	g := Normalize(payload.Goal)
	if strings.TrimSpace(g) == "" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	loc := SceneLocation(g)
	c.Location(loc)
	return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{"goal": g, "location": loc})
}
