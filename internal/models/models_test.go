package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestBaseModel_BeforeCreate(t *testing.T) {
	t.Run("generates UUID if not set", func(t *testing.T) {
		model := &BaseModel{}
		if err := model.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate returned error: %v", err)
		}
		if model.ID == uuid.Nil {
			t.Error("expected ID to be generated, got nil UUID")
		}
	})

	t.Run("preserves existing UUID", func(t *testing.T) {
		existingID := uuid.New()
		model := &BaseModel{ID: existingID}
		if err := model.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate returned error: %v", err)
		}
		if model.ID != existingID {
			t.Errorf("expected ID to remain %s, got %s", existingID, model.ID)
		}
	})
}

func TestRevokedToken_BeforeCreate(t *testing.T) {
	token := &RevokedToken{JTI: "abc"}
	if err := token.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if token.ID == uuid.Nil {
		t.Error("expected ID to be generated")
	}
	if token.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSplitType_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value SplitType
		want  bool
	}{
		{"equal", SplitEqual, true},
		{"custom", SplitCustom, true},
		{"empty", "", false},
		{"unknown", "percent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Valid(); got != tt.want {
				t.Errorf("SplitType(%q).Valid() = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGroupMember_TableName(t *testing.T) {
	if (GroupMember{}).TableName() != "group_members" {
		t.Errorf("expected table name 'group_members', got %s", GroupMember{}.TableName())
	}
}
