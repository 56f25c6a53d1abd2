package domain

import "time"

// User is a minimal local mirror of an identity-provider account. Shelfmark
// performs no authentication; user rows exist so that library, shelf, and
// social rows have a referential anchor.
type User struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
}
