package idea

import (
	"time"

	"github.com/google/uuid"
)

type Idea struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Aggregate is an idea annotated with its computed vote summary. It is
// derived from vote rows on every read, never stored. ViewerVote is the
// requesting user's own vote, nil when unknown or absent.
type Aggregate struct {
	Idea
	Username   string `db:"username" json:"username"`
	Upvotes    int    `db:"upvotes" json:"upvotes"`
	Downvotes  int    `db:"downvotes" json:"downvotes"`
	Score      int    `db:"score" json:"score"`
	ViewerVote *int   `db:"viewer_vote" json:"viewerVote"`
}
