package quotes

import (
	"fmt"
	"time"
)

// Clock returns the current instant; swapped in tests.
type Clock func() time.Time

// NumberFor derives the default quote number from the creation instant.
// Quotes created within the same second get the same number and the unique
// index on quote_number rejects the later insert.
func NumberFor(createdAt time.Time) string {
	return fmt.Sprintf("Q-%d", createdAt.Unix())
}
