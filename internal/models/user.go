package models

import "time"

// Role is the authority stored on a Credential.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the identity record. DeletedAt marks a soft-deleted user; it is a
// plain nullable column so that soft-deleted rows stay visible to ordinary queries.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	FirstName string     `gorm:"size:16" json:"first_name"`
	LastName  string     `gorm:"size:16" json:"last_name"`
	Phone     string     `gorm:"size:32" json:"phone"`
	Image     string     `gorm:"size:255" json:"image,omitempty"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Credential shares its primary key with User.
type Credential struct {
	ID           uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:USER" json:"role"`
}
