package product

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/suggested_products", h.getSuggestedProducts)
}

type suggestedProductsResponse struct {
	Index       int             `json:"index"`
	ProductName string          `json:"productName"`
	Products    []SearchProduct `json:"products"`
}

// getSuggestedProducts is the browse target linked from the results list view.
func (h *Handler) getSuggestedProducts(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("productName"))
	if name == "" {
		logging.Warn().Str("path", c.Path()).Msg("browse without productName, redirecting home")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	index := 0
	if v := c.Query("index"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			index = i
		}
	}

	found, err := h.service.Search(c.UserContext(), name, DefaultLimit)
	if err != nil {
		// an empty grid renders as "no products found"
		logging.Warn().Err(err).Str("productName", name).Msg("searching products failed")
		found = []SearchProduct{}
	}
	return c.JSON(suggestedProductsResponse{Index: index, ProductName: name, Products: found})
}
