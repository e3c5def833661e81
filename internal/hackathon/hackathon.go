package hackathon

import (
	"time"

	"github.com/google/uuid"
)

// Mode governs how a team acquires its idea and how hackathon membership
// maps to teams: "select" links whatever idea the creator picked, "random"
// draws one from the hackathon's idea pool, "team-random" builds teams from
// the participant pool via the randomizer.
type Mode string

const (
	ModeSelect     Mode = "select"
	ModeRandom     Mode = "random"
	ModeTeamRandom Mode = "team-random"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSelect, ModeRandom, ModeTeamRandom:
		return true
	}
	return false
}

type Hackathon struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description"`
	StartDate       *time.Time `db:"start_date" json:"startDate"`
	EndDate         *time.Time `db:"end_date" json:"endDate"`
	Mode            Mode       `db:"mode" json:"mode"`
	CreatedBy       uuid.UUID  `db:"created_by" json:"createdBy"`
	CreatorUsername string     `db:"creator_username" json:"creatorUsername"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`

	// Counted from association rows on reads, not stored.
	IdeaCount int `db:"idea_count" json:"ideaCount"`
	TeamCount int `db:"team_count" json:"teamCount"`
}

// Participant is a hackathon/user association, relevant in team-random mode.
type Participant struct {
	UserID   uuid.UUID `db:"user_id" json:"-"`
	Username string    `db:"username" json:"username"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}
