package services

import (
	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/models"
)

// IsMember reports whether userID belongs to the group, either through an
// explicit membership row or by being its creator.
func IsMember(group *models.Group, userID uuid.UUID) bool {
	if group.CreatedByID == userID {
		return true
	}
	for _, m := range group.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsInvolved reports whether userID paid for or shares in the bill.
func IsInvolved(bill *models.Bill, userID uuid.UUID) bool {
	if bill.PaidByID == userID {
		return true
	}
	for _, id := range bill.SplitAmong {
		if id == userID {
			return true
		}
	}
	return false
}

// MemberUsers lists the group's members, creator included, in join order.
// The creator is listed first when no explicit row exists for them.
func MemberUsers(group *models.Group) []models.User {
	users := make([]models.User, 0, len(group.Members)+1)
	seen := make(map[uuid.UUID]bool, len(group.Members)+1)

	hasCreatorRow := false
	for _, m := range group.Members {
		if m.UserID == group.CreatedByID {
			hasCreatorRow = true
			break
		}
	}
	if !hasCreatorRow && group.Creator != nil {
		users = append(users, *group.Creator)
		seen[group.CreatedByID] = true
	}

	for _, m := range group.Members {
		if seen[m.UserID] || m.User == nil {
			continue
		}
		seen[m.UserID] = true
		users = append(users, *m.User)
	}
	return users
}

func requireMember(group *models.Group, userID uuid.UUID, message string) error {
	if !IsMember(group, userID) {
		return apperr.Forbidden(message)
	}
	return nil
}

func requireCreator(group *models.Group, userID uuid.UUID, message string) error {
	if group.CreatedByID != userID {
		return apperr.Forbidden(message)
	}
	return nil
}

func requirePayer(bill *models.Bill, userID uuid.UUID, message string) error {
	if bill.PaidByID != userID {
		return apperr.Forbidden(message)
	}
	return nil
}

// checkRemoval applies the member-removal rules in order: the creator can
// never be removed, then only the creator or the member themself may remove,
// then the target must hold a membership row.
func checkRemoval(group *models.Group, callerID, targetID uuid.UUID) error {
	if targetID == group.CreatedByID {
		return apperr.Conflict("Group creator cannot remove themselves")
	}
	if callerID != group.CreatedByID && callerID != targetID {
		return apperr.Forbidden("You can only remove yourself from the group")
	}
	for _, m := range group.Members {
		if m.UserID == targetID {
			return nil
		}
	}
	return apperr.Conflict("User is not a member of this group")
}
