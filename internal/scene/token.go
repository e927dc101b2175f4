package scene

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const sceneClaim = "scene_id"

// TokenHeader carries a re-issued token on every protected scene response.
const TokenHeader = "X-Scene-Token"

// Tokens signs the bearer tokens that bind a client to its scene.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) Tokens {
	return Tokens{secret: []byte(secret), ttl: ttl}
}

func (t Tokens) Issue(sceneID string) (string, error) {
	claims := jwt.MapClaims{
		sceneClaim: sceneID,
		"exp":      time.Now().Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// GetSceneIDFromCtx reads the scene id from the token the jwt middleware stored in locals.
func GetSceneIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	id, ok := claims[sceneClaim].(string)
	if !ok || id == "" {
		return "", fiber.ErrUnauthorized
	}
	return id, nil
}
