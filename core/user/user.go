package user

import "time"

// User identifies the author of an editing session. The engine treats
// it as opaque provenance attached to versions.
type User struct {
	ID        string    `json:"-" diff:"-" db:"id"`
	UUID      string    `json:"uuid,omitempty" diff:"-" db:"uuid"`
	Email     string    `json:"email" diff:"email" db:"email"`
	CreatedAt time.Time `json:"-" diff:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" diff:"-" db:"updated_at"`
}

// Validate validates a user is valid or not
func (u *User) Validate() error {
	if u == nil {
		return ErrNoUserInformation
	}

	if u.UUID == "" && u.Email == "" {
		return InvalidError{UUID: u.UUID, Email: u.Email}
	}

	return nil
}
