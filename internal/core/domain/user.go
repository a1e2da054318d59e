package domain

import (
	"errors"
	"time"
)

// Role is the closed set of permission tiers a user may hold.
type Role string

const (
	RoleFree  Role = "free_user"
	RolePaid  Role = "paid_user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role name back to the enum. The second return
// value is false for names outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleFree, RolePaid, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidResetToken = errors.New("invalid or expired reset token")
var ErrForbidden = errors.New("access forbidden")

// User is the identity anchor for a marketplace participant. A record may
// originate from the identity provider (ExternalID set), from password
// registration (PasswordHash set), or both.
type User struct {
	ID            string `json:"id" bson:"_id"`
	ExternalID    string `json:"external_id,omitempty" bson:"external_id,omitempty"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	DisplayName   string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	PasswordHash  string `json:"-" bson:"password_hash,omitempty"`
	IsActive      bool   `json:"is_active" bson:"is_active"`
	EmailVerified bool   `json:"email_verified" bson:"email_verified"`
	// LastLoginAt is only touched by the credential-login path, never by
	// provider webhook events.
	LastLoginAt *time.Time `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// RoleAssignment records the fact "this user holds role R". Identity is the
// (UserID, Role) pair; a user may hold several roles at once.
type RoleAssignment struct {
	UserID    string    `bson:"user_id"`
	Role      Role      `bson:"role"`
	GrantedAt time.Time `bson:"granted_at"`
}
