package user

import (
	"errors"
	"fmt"
)

var ErrNoUserInformation = errors.New("no user information")

type InvalidError struct {
	UUID  string
	Email string
}

func (e InvalidError) Error() string {
	return fmt.Sprintf("empty field with uuid = %q and email = %q", e.UUID, e.Email)
}
