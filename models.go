package backauth

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// UserStatus is the user's account status
type UserStatus = string

const (
	// UserStatusActive may authenticate
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended is temporarily blocked from authenticating
	UserStatusSuspended UserStatus = "suspended"
	// UserStatusDisabled is permanently blocked from authenticating
	UserStatusDisabled UserStatus = "disabled"
)

// DefaultPhoneRegion is the region hint used to parse national phone numbers.
var DefaultPhoneRegion = "SN"

// User is the back-office user profile persisted in the session store and
// exposed by the session manager while authenticated.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          string     `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	Status        UserStatus `bun:"status,notnull,default:'active'" json:"status,omitempty"`
	MarketID      string     `bun:"market_id" json:"market_id,omitempty"`
	CommuneID     string     `bun:"commune_id" json:"commune_id,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// FullName joins the user's names for display purposes.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserRole returns the normalized role for the profile, empty when unknown.
func (u *User) UserRole() UserRole {
	role, _ := ParseRole(u.Role)
	return role
}

// EnsureStatus defaults an unset status to active.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// Validate checks the profile fields before persisting or issuing tokens.
func (u *User) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.FirstName, validation.Required),
		validation.Field(&u.Role, validation.Required, validation.By(validRole)),
		validation.Field(&u.Phone, validation.By(validPhone)),
	)
}

func validRole(value any) error {
	raw, _ := value.(string)
	if _, ok := ParseRole(raw); !ok {
		return fmt.Errorf("unknown role %q", raw)
	}
	return nil
}

func validPhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("invalid phone number %q", raw)
	}
	return nil
}

// statusAuthError maps a non-active account status to a login failure.
func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusSuspended, UserStatusDisabled:
		clone := ErrUserNotActive.Clone()
		if clone == nil {
			return ErrUserNotActive
		}
		clone.Source = ErrUserNotActive
		return clone.WithMetadata(map[string]any{
			"status": status,
		})
	default:
		return nil
	}
}
