package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/middleware"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/pkg/logger"
	"github.com/billsplit/backend/pkg/utils"
)

type BillsHandler struct {
	responder
	Bills *services.BillService
}

func NewBillsHandler(bills *services.BillService, debug bool) *BillsHandler {
	return &BillsHandler{responder: responder{debug: debug}, Bills: bills}
}

type createBillRequest struct {
	Description *string                    `json:"description" validate:"required,max=255"`
	Amount      *decimal.Decimal           `json:"amount"`
	BillDate    *string                    `json:"bill_date" validate:"required"`
	SplitType   *string                    `json:"split_type" validate:"required,oneof=equal custom"`
	SplitAmong  []string                   `json:"split_among" validate:"required,min=1"`
	CustomSplit map[string]decimal.Decimal `json:"custom_split"`
}

type updateBillRequest struct {
	Description *string                    `json:"description" validate:"omitnil,max=255"`
	Amount      *decimal.Decimal           `json:"amount"`
	BillDate    *string                    `json:"bill_date"`
	SplitType   *string                    `json:"split_type" validate:"omitnil,oneof=equal custom"`
	SplitAmong  []string                   `json:"split_among" validate:"omitempty,min=1"`
	CustomSplit map[string]decimal.Decimal `json:"custom_split"`
}

// billInput converts decoded request fields into service input, reporting
// malformed dates and ids as field errors.
func billInput(description *string, amount *decimal.Decimal, billDate, splitType *string,
	splitAmong []string, customSplit map[string]decimal.Decimal) (services.BillInput, error) {
	in := services.BillInput{Description: description, Amount: amount}
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		in.Description = &trimmed
	}

	if billDate != nil {
		date, err := parseDate(*billDate)
		if err != nil {
			return in, apperr.Field("bill_date", "The bill date is not a valid date.")
		}
		in.BillDate = &date
	}

	if splitType != nil {
		st := models.SplitType(*splitType)
		in.SplitType = &st
	}

	if splitAmong != nil {
		in.SplitAmong = make([]uuid.UUID, 0, len(splitAmong))
		for _, raw := range splitAmong {
			id, err := parseUUID(raw)
			if err != nil {
				return in, apperr.Field("split_among", "The split among field must contain valid user ids.")
			}
			in.SplitAmong = append(in.SplitAmong, id)
		}
	}

	if customSplit != nil {
		in.CustomSplit = make(map[uuid.UUID]decimal.Decimal, len(customSplit))
		for raw, share := range customSplit {
			id, err := parseUUID(raw)
			if err != nil {
				return in, apperr.Field("custom_split", "The custom split keys must be valid user ids.")
			}
			in.CustomSplit[id] = share
		}
	}

	return in, nil
}

func (h *BillsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	var req createBillRequest
	if err := parseBody(c, &req, "Validation failed"); err != nil {
		return h.fail(c, err)
	}
	if req.Amount == nil {
		return h.fail(c, apperr.Field("amount", "The amount field is required."))
	}
	in, err := billInput(req.Description, req.Amount, req.BillDate, req.SplitType, req.SplitAmong, req.CustomSplit)
	if err != nil {
		return h.fail(c, err)
	}

	bill, err := h.Bills.Create(c.UserContext(), groupID, currentUser.ID, in)
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "bill_created", map[string]interface{}{
		"group_id":   groupID.String(),
		"bill_id":    bill.ID.String(),
		"amount":     bill.Amount.StringFixed(2),
		"split_type": string(bill.SplitType),
	})

	return utils.Created(c, "Bill created successfully", bill)
}

func (h *BillsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	bills, err := h.Bills.List(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Bills retrieved successfully", fiber.Map{
		"bills": bills,
		"total": len(bills),
	})
}

func (h *BillsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}
	billID, err := pathID(c.Params("billId"), "Bill not found")
	if err != nil {
		return h.fail(c, err)
	}

	detail, err := h.Bills.Get(c.UserContext(), groupID, billID, currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Bill details retrieved successfully", detail)
}

func (h *BillsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}
	billID, err := pathID(c.Params("billId"), "Bill not found")
	if err != nil {
		return h.fail(c, err)
	}

	var req updateBillRequest
	if err := parseBody(c, &req, "Validation failed"); err != nil {
		return h.fail(c, err)
	}
	in, err := billInput(req.Description, req.Amount, req.BillDate, req.SplitType, req.SplitAmong, req.CustomSplit)
	if err != nil {
		return h.fail(c, err)
	}

	bill, err := h.Bills.Update(c.UserContext(), groupID, billID, currentUser.ID, in)
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "bill_updated", map[string]interface{}{
		"group_id": groupID.String(),
		"bill_id":  bill.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, "Bill updated successfully", bill)
}

func (h *BillsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}
	billID, err := pathID(c.Params("billId"), "Bill not found")
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.Bills.Delete(c.UserContext(), groupID, billID, currentUser.ID); err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "bill_deleted", map[string]interface{}{
		"group_id": groupID.String(),
		"bill_id":  billID.String(),
	})

	return utils.Success(c, fiber.StatusOK, "Bill deleted successfully", nil)
}
