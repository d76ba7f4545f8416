package models

import (
	"time"

	"gorm.io/gorm"
)

type Subtask struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	StepID      string    `gorm:"type:varchar(36);not null;index:idx_subtasks_step_order,priority:1" json:"step_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	Order       int       `gorm:"column:sort_order;not null;index:idx_subtasks_step_order,priority:2" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
