package models

import "time"

// Ad is a classified listing owned by a user.
type Ad struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:32;not null" json:"title"`
	Price       int       `gorm:"not null" json:"price"`
	Description string    `gorm:"size:64" json:"description"`
	Image       string    `gorm:"size:255" json:"image,omitempty"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
