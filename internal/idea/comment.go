package idea

import (
	"time"

	"github.com/google/uuid"
)

// Comment is append-only; listings are ordered by creation time ascending.
// Username is joined from the author row on reads.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	IdeaID    uuid.UUID `db:"idea_id" json:"ideaId"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
