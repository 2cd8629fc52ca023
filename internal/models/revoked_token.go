package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevokedToken records a logged-out token id until the token would have expired anyway.
// It does NOT use BaseModel because rows are never updated.
type RevokedToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	JTI       string    `json:"jti" gorm:"type:varchar(64);not null;uniqueIndex"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (r *RevokedToken) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
