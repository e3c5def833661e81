package hackathon

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	HackathonID uuid.UUID  `db:"hackathon_id" json:"hackathonId"`
	IdeaID      *uuid.UUID `db:"idea_id" json:"ideaId"`
	CreatedBy   uuid.UUID  `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

type TeamMember struct {
	ID       uuid.UUID `db:"id" json:"-"`
	TeamID   uuid.UUID `db:"team_id" json:"-"`
	UserID   uuid.UUID `db:"user_id" json:"-"`
	Username string    `db:"username" json:"username"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// TeamDetail is a team plus its member usernames in join order.
type TeamDetail struct {
	Team
	Members []TeamMember `json:"members"`
}
