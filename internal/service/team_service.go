package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/jmoiron/sqlx"
)

// DefaultTeamSize is used when a randomize request does not name one.
const DefaultTeamSize = 4

// Randomizer supplies the uniform randomness behind random-mode idea
// selection and the participant shuffle. *math/rand.Rand satisfies it;
// tests inject deterministic implementations.
type Randomizer interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type TeamService struct {
	db    *sqlx.DB
	store *store.HackathonStore
	rng   Randomizer
}

func NewTeamService(db *sqlx.DB, store *store.HackathonStore, rng Randomizer) *TeamService {
	return &TeamService{db: db, store: store, rng: rng}
}

// CreateTeam creates a team in its hackathon and enrolls the creator as the
// first member. In random mode, when the caller supplied no idea, one is
// drawn uniformly from the hackathon's idea pool — with replacement, so
// repeat picks across teams are expected. An explicitly supplied idea always
// wins over the draw, and an empty pool just leaves the link null.
func (s *TeamService) CreateTeam(ctx context.Context, name string, hackathonID uuid.UUID, ideaID *uuid.UUID, createdBy uuid.UUID) (*hackathon.Team, error) {
	h, err := s.store.GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	if ideaID == nil && h.Mode == hackathon.ModeRandom {
		pool, err := s.store.ListHackathonIdeaIDs(ctx, hackathonID)
		if err != nil {
			return nil, fmt.Errorf("failed to load idea pool: %w", err)
		}
		if len(pool) > 0 {
			picked := pool[s.rng.Intn(len(pool))]
			ideaID = &picked
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	team := &hackathon.Team{
		ID:          uuid.New(),
		Name:        name,
		HackathonID: hackathonID,
		IdeaID:      ideaID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTeam(ctx, tx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	creator := []hackathon.TeamMember{{
		ID:       uuid.New(),
		TeamID:   team.ID,
		UserID:   createdBy,
		JoinedAt: time.Now().UTC(),
	}}
	if err := s.store.CreateTeamMembers(ctx, tx, creator); err != nil {
		return nil, fmt.Errorf("failed to enroll team creator: %w", err)
	}

	return team, tx.Commit()
}

// AddMember joins a user to a team; re-adding is a silent no-op.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return err
	}
	return s.store.AddTeamMember(ctx, teamID, userID)
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return err
	}
	return s.store.RemoveTeamMember(ctx, teamID, userID)
}

// RandomizeTeams rebuilds a hackathon's teams from its participant pool.
// The pool is shuffled, all existing teams (and their memberships) are
// discarded, and ceil(P/teamSize) teams named "Team 1"…"Team N" are created
// with participants dealt round-robin, so team sizes differ by at most one.
// The delete and the rebuild commit as one transaction: readers never see a
// mix of old and new teams. With no participants it is a no-op.
func (s *TeamService) RandomizeTeams(ctx context.Context, hackathonID uuid.UUID, teamSize int) error {
	if teamSize <= 0 {
		return ErrInvalidTeamSize
	}

	if _, err := s.store.GetHackathon(ctx, hackathonID); err != nil {
		return err
	}

	participants, err := s.store.ListParticipants(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	if len(participants) == 0 {
		return nil
	}

	s.rng.Shuffle(len(participants), func(i, j int) {
		participants[i], participants[j] = participants[j], participants[i]
	})

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteTeamsByHackathon(ctx, tx, hackathonID); err != nil {
		return fmt.Errorf("failed to delete existing teams: %w", err)
	}

	numTeams := (len(participants) + teamSize - 1) / teamSize

	for i := 0; i < numTeams; i++ {
		team := &hackathon.Team{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("Team %d", i+1),
			HackathonID: hackathonID,
			CreatedBy:   participants[0].UserID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.store.CreateTeam(ctx, tx, team); err != nil {
			return fmt.Errorf("failed to create %s: %w", team.Name, err)
		}

		var members []hackathon.TeamMember
		for j := i; j < len(participants); j += numTeams {
			members = append(members, hackathon.TeamMember{
				ID:       uuid.New(),
				TeamID:   team.ID,
				UserID:   participants[j].UserID,
				JoinedAt: time.Now().UTC(),
			})
		}
		if err := s.store.CreateTeamMembers(ctx, tx, members); err != nil {
			return fmt.Errorf("failed to assign members to %s: %w", team.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.TeamsRandomized.Inc()
	return nil
}
