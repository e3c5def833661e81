package idea

import (
	"time"

	"github.com/google/uuid"
)

const (
	Upvote   = 1
	Downvote = -1

	// VoteClear is the sentinel accepted at the boundary to delete a vote.
	// It is never stored; rows at rest are always +1 or -1.
	VoteClear = 0
)

// ValidVoteValue reports whether v is acceptable input for a vote mutation.
func ValidVoteValue(v int) bool {
	return v == Upvote || v == Downvote || v == VoteClear
}

type Vote struct {
	ID        uuid.UUID `db:"id"`
	IdeaID    uuid.UUID `db:"idea_id"`
	UserID    uuid.UUID `db:"user_id"`
	VoteType  int       `db:"vote_type"`
	CreatedAt time.Time `db:"created_at"`
}
