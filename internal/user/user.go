package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the unvalidated free-text identity the whole app runs on. A row is
// created lazily the first time a username shows up and is never changed.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
