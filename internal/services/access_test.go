package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/stepflow-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	owner := Access{Role: RoleOwner, Permission: models.PermissionModify}
	modifier := Access{Role: RoleMember, Permission: models.PermissionModify}
	viewer := Access{Role: RoleMember, Permission: models.PermissionView}
	none := Access{Role: RoleNone}

	tests := []struct {
		name       string
		policy     bool
		access     Access
		action     Action
		authorized bool
	}{
		{"owner views", false, owner, ActionView, true},
		{"owner edits", false, owner, ActionEditContent, true},
		{"owner manages", false, owner, ActionManageProject, true},
		{"viewer views", false, viewer, ActionView, true},
		{"viewer cannot edit", true, viewer, ActionEditContent, false},
		{"modifier cannot edit by default", false, modifier, ActionEditContent, false},
		{"modifier edits with policy", true, modifier, ActionEditContent, true},
		{"modifier never manages", true, modifier, ActionManageProject, false},
		{"stranger cannot view", false, none, ActionView, false},
		{"stranger cannot edit", true, none, ActionEditContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAccessControl(tt.policy).Authorize(tt.access, tt.action)
			if tt.authorized {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}
