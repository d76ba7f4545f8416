package models

import (
	"time"

	"gorm.io/gorm"
)

// Step is an ordered unit of project work. Order is 0-based and dense within a project.
type Step struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID   string    `gorm:"type:varchar(36);not null;index:idx_steps_project_order,priority:1" json:"project_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Order       int       `gorm:"column:sort_order;not null;index:idx_steps_project_order,priority:2" json:"order"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	IsUnlocked  bool      `gorm:"not null;default:false" json:"is_unlocked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Step) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
