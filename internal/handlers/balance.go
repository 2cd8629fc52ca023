package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/middleware"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/pkg/utils"
)

type BalanceHandler struct {
	responder
	Balances *services.BalanceService
}

func NewBalanceHandler(balances *services.BalanceService, debug bool) *BalanceHandler {
	return &BalanceHandler{responder: responder{debug: debug}, Balances: balances}
}

func (h *BalanceHandler) Group(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	balance, err := h.Balances.Group(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Group balance summary retrieved successfully", balance)
}

func (h *BalanceHandler) Mine(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	balance, err := h.Balances.Mine(c.UserContext(), groupID, currentUser)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Your balance retrieved successfully", balance)
}
