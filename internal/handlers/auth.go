package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/middleware"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/pkg/logger"
	"github.com/billsplit/backend/pkg/utils"
)

type AuthHandler struct {
	responder
	Auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService, debug bool) *AuthHandler {
	return &AuthHandler{responder: responder{debug: debug}, Auth: auth}
}

type registerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	PhoneNumber          string `json:"phone_number" validate:"required,max=15"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type authResponse struct {
	*models.User
	Tokens *utils.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req, "Registration validation failed"); err != nil {
		return h.fail(c, err)
	}

	user, tokens, err := h.Auth.Register(c.UserContext(), services.RegisterInput{
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Password:    req.Password,
	})
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Created(c, "User registered successfully", authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req, "Login validation failed"); err != nil {
		return h.fail(c, err)
	}

	user, tokens, err := h.Auth.Login(c.UserContext(), strings.TrimSpace(req.PhoneNumber), req.Password)
	if err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"ip":   c.IP(),
			"body": logger.GetRequestBodySummary(c),
		})
		return h.fail(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "user_logged_in", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, "Login successful", authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	if err := h.Auth.Logout(c.UserContext(), claims); err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(claims.UserID.String(), "user_logged_out", nil)
	return utils.Success(c, fiber.StatusOK, "Successfully logged out", nil)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	tokens, err := h.Auth.Refresh(c.UserContext(), claims)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Tokens refreshed successfully", fiber.Map{"tokens": tokens})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}
	return utils.Success(c, fiber.StatusOK, "User retrieved successfully", user)
}
