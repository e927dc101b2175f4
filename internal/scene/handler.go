package scene

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
)

type Handler struct {
	service *Service
	tokens  Tokens
}

func NewHandler(s *Service, tokens Tokens) *Handler {
	return &Handler{service: s, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/scene", h.startScene)
}

// RegisterProtectedRoutes expects a jwt middleware mounted on /api/v1/scene
// with RedirectOnAuthError as its error handler.
func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/scene", h.getScene)
	app.Post("/api/v1/scene/categories/:index", h.selectCategory)
	app.Post("/api/v1/scene/back", h.back)
	app.Post("/api/v1/scene/refresh", h.refresh)
	app.Post("/api/v1/scene/detail", h.openDetail)
	app.Delete("/api/v1/scene/detail", h.closeDetail)
}

func redirectHome(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}

// startScene is the navigation target of the landing view.
func (h *Handler) startScene(c *fiber.Ctx) error {
	// the scene outlives the request, so the goal must not alias fasthttp's buffer
	goal := utils.CopyString(strings.TrimSpace(c.Query("goal")))
	if goal == "" {
		logging.Warn().Msg("scene requested without goal, redirecting home")
		return redirectHome(c)
	}

	sc, err := h.service.Start(c.UserContext(), goal)
	if err != nil {
		logging.Warn().Err(err).Str("goal", goal).Msg("starting scene failed, redirecting home")
		return redirectHome(c)
	}

	token, err := h.tokens.Issue(sc.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"scene": sc.View(),
	})
}

// currentScene resolves the caller's scene. ok is false when a response was already written.
func (h *Handler) currentScene(c *fiber.Ctx) (*Scene, bool, error) {
	id, err := GetSceneIDFromCtx(c)
	if err != nil {
		return nil, false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	sc, err := h.service.Get(id)
	if err != nil {
		logging.Warn().Str("scene_id", id).Msg("scene expired or unknown, redirecting home")
		return nil, false, redirectHome(c)
	}
	// the scene lifetime slides with activity, so the token does too
	if token, err := h.tokens.Issue(sc.ID); err == nil {
		c.Set(TokenHeader, token)
	}
	return sc, true, nil
}

// RedirectOnAuthError sends callers with a missing, invalid or expired scene
// token back to the landing view.
func RedirectOnAuthError(c *fiber.Ctx, err error) error {
	logging.Warn().Err(err).Str("path", c.Path()).Msg("scene token rejected, redirecting home")
	return redirectHome(c)
}

func (h *Handler) getScene(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	return c.JSON(sc.View())
}

func (h *Handler) selectCategory(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category index"})
	}
	view, err := sc.Select(c.UserContext(), index)
	if err != nil {
		return writeSceneError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) back(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	return c.JSON(sc.Back())
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	view, err := sc.Refresh(c.UserContext())
	if err != nil {
		return writeSceneError(c, err)
	}
	return c.JSON(view)
}

type detailRequest struct {
	URL string `json:"url" form:"url"`
}

func (h *Handler) openDetail(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	payload := new(detailRequest)
	if err := c.BodyParser(payload); err != nil || payload.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "url is required"})
	}
	view, err := sc.OpenDetail(payload.URL)
	if err != nil {
		return writeSceneError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) closeDetail(c *fiber.Ctx) error {
	sc, ok, err := h.currentScene(c)
	if !ok {
		return err
	}
	return c.JSON(sc.CloseDetail())
}

func writeSceneError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotSelected), errors.Is(err, ErrRefreshInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
