package model

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Staff is the read-only directory entry used by assignment pickers. The
// password hash never leaves the server.
type Staff struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}
