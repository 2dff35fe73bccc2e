package models

import "time"

// Roles recognised by the claims workflow.
const (
	RoleLecturer    = "lecturer"
	RoleCoordinator = "coordinator"
	RoleManager     = "manager"
)

// User represents an account that can submit or review claims.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	FullName     string    `gorm:"size:100;not null" json:"full_name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanReview reports whether the user may approve or reject claims.
func (u User) CanReview() bool {
	return u.Role == RoleCoordinator || u.Role == RoleManager
}
