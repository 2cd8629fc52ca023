package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a set of users sharing bills. The creator counts as a member
// whether or not a GroupMember row exists for them.
type Group struct {
	BaseModel
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description *string       `json:"description" gorm:"type:varchar(500)"`
	CreatedByID uuid.UUID     `json:"created_by" gorm:"type:uuid;not null;index"`
	Creator     *User         `json:"creator,omitempty" gorm:"foreignKey:CreatedByID"`
	Members     []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupMember is an explicit membership row. (GroupID, UserID) is unique.
type GroupMember struct {
	BaseModel
	GroupID  uuid.UUID `json:"group_id" gorm:"type:uuid;not null;uniqueIndex:idx_group_member"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_member"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
