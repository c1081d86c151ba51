package block

import (
	"errors"
	"fmt"
)

var ErrNilContent = errors.New("block content is nil")

// Violation is a single schema violation addressed by field path,
// e.g. "content.label".
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Reason)
}
