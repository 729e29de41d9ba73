package todo

import (
	"time"
)

// Todo is a single task item bound to exactly one owning user.
// CompletedAt holds Unix milliseconds and is non-nil iff Completed is true.
type Todo struct {
	ID          string `gorm:"primaryKey;type:text"`
	OwnerID     string `gorm:"index;not null;type:text"`
	Text        string `gorm:"not null;type:text"`
	Completed   bool   `gorm:"not null;default:false"`
	CompletedAt *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for the Todo entity.
func (Todo) TableName() string {
	return "todos"
}
