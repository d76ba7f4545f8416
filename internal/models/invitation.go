package models

import (
	"time"

	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	// InvitationExpired is never written by this service; expiry is derived from ExpiresAt.
	InvitationExpired InvitationStatus = "expired"
)

// Terminal reports whether no further transition is allowed from s.
func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

type Invitation struct {
	ID         string           `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID  string           `gorm:"type:varchar(36);not null;index" json:"project_id"`
	InvitedBy  string           `gorm:"type:varchar(36);not null" json:"invited_by"`
	Permission Permission       `gorm:"type:varchar(20);not null" json:"permission"`
	Token      string           `gorm:"type:varchar(128);uniqueIndex;not null" json:"token"`
	ExpiresAt  time.Time        `gorm:"not null" json:"expires_at"`
	Status     InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AcceptedBy *string          `gorm:"type:varchar(36)" json:"accepted_by,omitempty"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// ExpiredAt reports whether a still-pending invitation is past its expiry at now.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiresAt)
}
