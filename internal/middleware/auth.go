package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/pkg/logger"
	"github.com/billsplit/backend/pkg/utils"
)

const (
	currentUserKey = "currentUser"
	claimsKey      = "tokenClaims"
	userIDKey      = "userID"
)

type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

func CORS(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

// RequireAuth accepts access tokens only.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	return a.authenticate(c, false)
}

// RequireRefresh accepts refresh tokens only.
func (a *AuthMiddleware) RequireRefresh(c *fiber.Ctx) error {
	return a.authenticate(c, true)
}

func (a *AuthMiddleware) authenticate(c *fiber.Ctx, refresh bool) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("jwt_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("jwt_invalid_format", map[string]interface{}{
			"ip":          c.IP(),
			"path":        c.Path(),
			"auth_header": authHeader[:min(len(authHeader), 20)] + "...",
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid authorization format")
	}

	user, claims, err := a.Auth.Authenticate(c.UserContext(), tokenString, refresh)
	if err != nil {
		appErr := apperr.As(err)
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, appErr.Status(), appErr.Message)
	}

	c.Locals(currentUserKey, user)
	c.Locals(claimsKey, claims)
	c.Locals(userIDKey, user.ID.String())
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(currentUserKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetClaims(c *fiber.Ctx) *utils.Claims {
	claims, ok := c.Locals(claimsKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}
