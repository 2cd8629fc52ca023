package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

func (s SplitType) Valid() bool {
	return s == SplitEqual || s == SplitCustom
}

type Bill struct {
	BaseModel
	GroupID     uuid.UUID                     `json:"group_id" gorm:"type:uuid;not null;index"`
	PaidByID    uuid.UUID                     `json:"paid_by" gorm:"type:uuid;not null;index"`
	Payer       *User                         `json:"payer,omitempty" gorm:"foreignKey:PaidByID"`
	Description string                        `json:"description" gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal               `json:"amount" gorm:"type:numeric(10,2);not null"`
	BillDate    time.Time                     `json:"bill_date" gorm:"type:date;not null"`
	SplitType   SplitType                     `json:"split_type" gorm:"type:varchar(10);not null;default:'equal'"`
	SplitAmong  []uuid.UUID                   `json:"split_among" gorm:"type:jsonb;serializer:json"`
	CustomSplit map[uuid.UUID]decimal.Decimal `json:"custom_split,omitempty" gorm:"type:jsonb;serializer:json"`
}
