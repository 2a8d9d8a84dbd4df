package model

import "time"

// Role names stored in users.role and carried in the JWT role claim.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
	RoleParent  = "PARENT"
)

// User represents an application user record as stored in the `users`
// table.  Students carry a student number; parents are linked to their
// children through the parent_links table.
//
// Fields:
//
//	ID            – primary key identifier of the user.
//	Email         – unique email address.
//	PasswordHash  – bcrypt hashed password.
//	FullName      – display name used in rosters and certificates.
//	Role          – ADMIN, STUDENT or PARENT.
//	StudentNumber – college student number (empty for non-students).
//	IsActive      – whether the account is active.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	StudentNumber string    `json:"student_number,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only
// the SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
