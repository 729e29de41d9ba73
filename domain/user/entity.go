package user

import (
	"time"
)

// User represents a registered identity.
type User struct {
	ID           string  `gorm:"primaryKey;type:text"`
	Email        string  `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string  `gorm:"not null;type:text"`
	Tokens       []Token `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Token is an issued bearer credential. A token is valid only while its row
// exists; revocation deletes the row.
type Token struct {
	ID        string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"index;not null;type:text"`
	Scope     string `gorm:"not null;type:text"`
	Value     string `gorm:"index;not null;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Token entity.
func (Token) TableName() string {
	return "tokens"
}
