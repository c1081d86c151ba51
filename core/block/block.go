package block

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// FallbackContent is the content of the placeholder block that replaces
// a block whose payload could not be repaired.
const FallbackContent = "Placeholder content (auto-fixed)"

// Block is a single content unit within a page. Its Content shape is
// determined by Type and checked against the schema registry.
type Block struct {
	ID      string                 `json:"_id" diff:"_id"`
	Type    Type                   `json:"type" diff:"type"`
	Content map[string]interface{} `json:"content" diff:"content"`
}

// NewID generates a fresh block identity.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewFallbackBlock returns the placeholder block used when a block's
// content cannot be coerced into a schema-valid shape. It keeps the
// slot occupied so page structure is preserved.
func NewFallbackBlock() Block {
	return Block{
		ID:   NewID(),
		Type: TypeText,
		Content: map[string]interface{}{
			"value": FallbackContent,
		},
	}
}
