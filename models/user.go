package models

import "time"

const (
	RoleCreator = "creator"
	RoleTaker   = "taker"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:'taker'"` // creator, taker
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Surveys   []Survey   `json:"surveys,omitempty" gorm:"foreignKey:CreatorID"`
	Responses []Response `json:"responses,omitempty" gorm:"foreignKey:TakerID"`
}
