package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/middleware"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/pkg/logger"
	"github.com/billsplit/backend/pkg/utils"
)

type GroupsHandler struct {
	responder
	Groups *services.GroupService
}

func NewGroupsHandler(groups *services.GroupService, debug bool) *GroupsHandler {
	return &GroupsHandler{responder: responder{debug: debug}, Groups: groups}
}

type createGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitnil,max=500"`
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=500"`
}

type addMemberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=15"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	var req createGroupRequest
	if err := parseBody(c, &req, "Validation failed"); err != nil {
		return h.fail(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return h.fail(c, apperr.Validation("Validation failed", map[string][]string{
			"name": {"The name field is required."},
		}))
	}

	group, err := h.Groups.Create(c.UserContext(), currentUser.ID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})

	return utils.Created(c, "Group created successfully", group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groups, err := h.Groups.List(c.UserContext(), currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Groups retrieved successfully", fiber.Map{
		"groups": groups,
		"total":  len(groups),
	})
}

// ListMine returns only the groups the caller created.
func (h *GroupsHandler) ListMine(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groups, err := h.Groups.ListCreated(c.UserContext(), currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Your groups retrieved successfully", fiber.Map{
		"groups": groups,
		"total":  len(groups),
	})
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	group, err := h.Groups.Get(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Group details retrieved successfully", group)
}

func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	var req updateGroupRequest
	if err := parseBody(c, &req, "Validation failed"); err != nil {
		return h.fail(c, err)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return h.fail(c, apperr.Validation("Validation failed", map[string][]string{
				"name": {"The name field is required."},
			}))
		}
		req.Name = &name
	}

	group, err := h.Groups.Update(c.UserContext(), groupID, currentUser.ID, services.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_updated", map[string]interface{}{
		"group_id": group.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, "Group updated successfully", group)
}

func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.Groups.Delete(c.UserContext(), groupID, currentUser.ID); err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_deleted", map[string]interface{}{
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusOK, "Group deleted successfully", nil)
}

func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	var req addMemberRequest
	if err := parseBody(c, &req, "Validation failed"); err != nil {
		return h.fail(c, err)
	}

	user, err := h.Groups.AddMember(c.UserContext(), groupID, currentUser.ID, strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_member_added", map[string]interface{}{
		"group_id":  groupID.String(),
		"member_id": user.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, "Member added to group successfully", fiber.Map{
		"user": user,
	})
}

func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}
	// A malformed member id names nobody; the service reports it as a non-member
	// after the group and caller checks.
	targetID, err := parseUUID(c.Params("memberId"))
	if err != nil {
		targetID = uuid.Nil
	}

	left, err := h.Groups.RemoveMember(c.UserContext(), groupID, currentUser.ID, targetID)
	if err != nil {
		return h.fail(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_member_removed", map[string]interface{}{
		"group_id":  groupID.String(),
		"member_id": targetID.String(),
	})

	message := "Member removed from group successfully"
	if left {
		message = "You have left the group successfully"
	}
	return utils.Success(c, fiber.StatusOK, message, nil)
}

func (h *GroupsHandler) Members(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	groupID, err := pathID(c.Params("id"), "Group not found")
	if err != nil {
		return h.fail(c, err)
	}

	members, err := h.Groups.Members(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "Group members retrieved successfully", fiber.Map{
		"members": members,
		"total":   len(members),
	})
}
