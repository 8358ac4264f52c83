package domain

import "time"

// Seniority bounds. Lower numbers are more senior; rank 1 is the administrator tier.
const (
	AdminSeniority    = 1
	MinSeniorityLevel = 1
	MaxSeniorityLevel = 5
)

// User is a staff member who creates, receives and manages tasks.
type User struct {
	ID             int64
	Email          string
	Name           string
	PasswordHash   string
	SeniorityLevel int
	CreatedAt      time.Time

	// Categories is loaded on demand and is nil when not resolved.
	Categories []Category
}

// IsAdmin reports whether the user belongs to the rank-1 tier.
func (u *User) IsAdmin() bool {
	return u != nil && u.SeniorityLevel == AdminSeniority
}

// ValidSeniority reports whether level is within the supported range.
func ValidSeniority(level int) bool {
	return level >= MinSeniorityLevel && level <= MaxSeniorityLevel
}
