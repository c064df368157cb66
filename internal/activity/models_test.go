package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allActions = []ActionType{
	ActionUserCreated,
	ActionUserDeleted,
	ActionRoleChange,
	ActionUserBlocked,
	ActionUserUnblocked,
	ActionStatusChange,
	ActionLogin,
	ActionLogout,
	ActionSettingsUpdated,
	ActionSubscriptionCreated,
	ActionSubscriptionCancelled,
	ActionJobExpired,
}

func TestActionTypeKnown(t *testing.T) {
	for _, action := range allActions {
		assert.True(t, action.Known(), "%s should be a known action", action)
	}
	assert.False(t, ActionType("password_reset").Known())
	assert.False(t, ActionType("").Known())
}

func TestActionTypeCategory(t *testing.T) {
	t.Run("every known action has an explicit category", func(t *testing.T) {
		for _, action := range allActions {
			cat := action.Category()
			assert.Contains(t, []Category{CategoryCompliance, CategorySecurity, CategoryOperations}, cat)
		}
	})

	t.Run("security actions cover account access control", func(t *testing.T) {
		assert.Equal(t, CategorySecurity, ActionUserBlocked.Category())
		assert.Equal(t, CategorySecurity, ActionUserUnblocked.Category())
		assert.Equal(t, CategorySecurity, ActionRoleChange.Category())
	})

	t.Run("lifecycle actions are operational", func(t *testing.T) {
		assert.Equal(t, CategoryOperations, ActionStatusChange.Category())
		assert.Equal(t, CategoryOperations, ActionJobExpired.Category())
	})

	t.Run("unknown action defaults to operations", func(t *testing.T) {
		assert.Equal(t, CategoryOperations, ActionType("mystery").Category())
	})
}

func TestActionTypeLabel(t *testing.T) {
	t.Run("every known action has a distinct label", func(t *testing.T) {
		seen := make(map[string]ActionType)
		for _, action := range allActions {
			label := action.Label()
			assert.NotEmpty(t, label)
			assert.NotContains(t, label, "Unrecognized")
			if prev, dup := seen[label]; dup {
				t.Errorf("label %q shared by %s and %s", label, prev, action)
			}
			seen[label] = action
		}
	})

	t.Run("unknown action gets a visible marker", func(t *testing.T) {
		assert.Equal(t, "Unrecognized action (mystery)", ActionType("mystery").Label())
	})
}
