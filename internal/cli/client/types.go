package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// User mirrors the server's user representation.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// Session is returned by register and login.
type Session struct {
	User
	Tokens TokenPair `json:"tokens"`
}

type GroupMember struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	User     *User     `json:"user,omitempty"`
}

type Group struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	CreatedBy   string        `json:"created_by"`
	Creator     *User         `json:"creator,omitempty"`
	Members     []GroupMember `json:"members,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type GroupList struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

type MemberList struct {
	Members []User `json:"members"`
	Total   int    `json:"total"`
}

type Bill struct {
	ID           string                     `json:"id"`
	GroupID      string                     `json:"group_id"`
	PaidBy       string                     `json:"paid_by"`
	Payer        *User                      `json:"payer,omitempty"`
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	BillDate     time.Time                  `json:"bill_date"`
	SplitType    string                     `json:"split_type"`
	SplitAmong   []string                   `json:"split_among"`
	CustomSplit  map[string]decimal.Decimal `json:"custom_split,omitempty"`
	SplitDetails map[string]decimal.Decimal `json:"split_details,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
}

type BillList struct {
	Bills []Bill `json:"bills"`
	Total int    `json:"total"`
}

// BillRequest is the payload for creating a bill.
type BillRequest struct {
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	BillDate    string                     `json:"bill_date"`
	SplitType   string                     `json:"split_type"`
	SplitAmong  []string                   `json:"split_among"`
	CustomSplit map[string]decimal.Decimal `json:"custom_split,omitempty"`
}

// BillUpdate is the payload for editing a bill. Nil or empty fields keep the
// stored value; the server re-validates the merged bill.
type BillUpdate struct {
	Description *string                    `json:"description,omitempty"`
	Amount      *decimal.Decimal           `json:"amount,omitempty"`
	BillDate    *string                    `json:"bill_date,omitempty"`
	SplitType   *string                    `json:"split_type,omitempty"`
	SplitAmong  []string                   `json:"split_among,omitempty"`
	CustomSplit map[string]decimal.Decimal `json:"custom_split,omitempty"`
}

type MemberBalance struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PhoneNumber string          `json:"phone_number"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	NetBalance  decimal.Decimal `json:"net_balance"`
}

type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GroupBalance struct {
	TotalSpent  decimal.Decimal            `json:"total_spent"`
	NetBalances map[string]decimal.Decimal `json:"net_balances"`
	Members     []MemberBalance            `json:"members"`
	Settlements []Transfer                 `json:"settlements"`
}

type Counterparty struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Amount   decimal.Decimal `json:"amount"`
}

type PersonalBalance struct {
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
	YouOwe     []Counterparty  `json:"you_owe"`
	OwesYou    []Counterparty  `json:"owes_you"`
}
