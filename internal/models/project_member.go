package models

import (
	"time"

	"gorm.io/gorm"
)

// Permission is the access level granted to a project member.
type Permission string

const (
	PermissionView   Permission = "view"
	PermissionModify Permission = "modify"
)

// Valid reports whether p is one of the two known permissions.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionModify:
		return true
	default:
		return false
	}
}

// ProjectMember is unique per (ProjectID, UserID) and only created by accepting an invitation.
type ProjectMember struct {
	ID         string     `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID  string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_project_user,priority:1" json:"project_id"`
	UserID     string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_project_user,priority:2;index" json:"user_id"`
	Permission Permission `gorm:"type:varchar(20);not null" json:"permission"`
	AddedAt    time.Time  `gorm:"not null" json:"added_at"`
	AddedBy    string     `gorm:"type:varchar(36);not null" json:"added_by"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
