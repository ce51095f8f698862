package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no task exists for the requested id.
var ErrNotFound = errors.New("task not found")

// Task is a single to-do item, optionally tagged with a day of the week.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Description string     `gorm:"not null" json:"description"`
	DayOfWeek   string     `gorm:"index" json:"dayOfWeek"`
	Completed   bool       `gorm:"index;default:false" json:"completed"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}
