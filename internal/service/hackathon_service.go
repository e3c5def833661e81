package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/hackboard/hackboard/internal/idea"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/jmoiron/sqlx"
)

type HackathonService struct {
	db        *sqlx.DB
	store     *store.HackathonStore
	ideaStore *store.IdeaStore
}

func NewHackathonService(db *sqlx.DB, store *store.HackathonStore, ideaStore *store.IdeaStore) *HackathonService {
	return &HackathonService{db: db, store: store, ideaStore: ideaStore}
}

type HackathonInput struct {
	Name        string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Mode        hackathon.Mode
}

// HackathonData is a hackathon with its associated ideas, teams, and — in
// team-random mode only — the ordered participant list.
type HackathonData struct {
	hackathon.Hackathon
	Ideas        []idea.Aggregate        `json:"ideas"`
	Teams        []hackathon.TeamDetail  `json:"teams"`
	Participants []hackathon.Participant `json:"participants,omitempty"`
}

func (s *HackathonService) CreateHackathon(ctx context.Context, input HackathonInput, createdBy uuid.UUID) (*hackathon.Hackathon, error) {
	if input.Mode == "" {
		input.Mode = hackathon.ModeSelect
	}
	if !input.Mode.Valid() {
		return nil, ErrInvalidMode
	}

	h := &hackathon.Hackathon{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Mode:        input.Mode,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateHackathon(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}
	return s.store.GetHackathon(ctx, h.ID)
}

func (s *HackathonService) UpdateHackathon(ctx context.Context, id uuid.UUID, input HackathonInput) (*hackathon.Hackathon, error) {
	if !input.Mode.Valid() {
		return nil, ErrInvalidMode
	}

	h := &hackathon.Hackathon{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Mode:        input.Mode,
	}
	if err := s.store.UpdateHackathon(ctx, h); err != nil {
		return nil, err
	}
	return s.store.GetHackathon(ctx, id)
}

func (s *HackathonService) ListHackathons(ctx context.Context) ([]hackathon.Hackathon, error) {
	return s.store.ListHackathons(ctx)
}

func (s *HackathonService) GetHackathonData(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*HackathonData, error) {
	h, err := s.store.GetHackathon(ctx, id)
	if err != nil {
		return nil, err
	}

	ideas, err := s.ideaStore.ListIdeaAggregatesByHackathon(ctx, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hackathon ideas: %w", err)
	}

	teams, err := s.store.ListTeamsByHackathon(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	details := make([]hackathon.TeamDetail, 0, len(teams))
	for _, team := range teams {
		members, err := s.store.ListTeamMembers(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get team members: %w", err)
		}
		details = append(details, hackathon.TeamDetail{Team: team, Members: members})
	}

	data := &HackathonData{
		Hackathon: *h,
		Ideas:     ideas,
		Teams:     details,
	}

	if h.Mode == hackathon.ModeTeamRandom {
		participants, err := s.store.ListParticipants(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants: %w", err)
		}
		data.Participants = participants
	}

	return data, nil
}

// AddIdea associates an idea with a hackathon; re-adding is a silent no-op.
func (s *HackathonService) AddIdea(ctx context.Context, hackathonID, ideaID uuid.UUID) error {
	if _, err := s.store.GetHackathon(ctx, hackathonID); err != nil {
		return err
	}
	if _, err := s.ideaStore.GetIdea(ctx, ideaID); err != nil {
		return err
	}
	return s.store.AddHackathonIdea(ctx, hackathonID, ideaID)
}

func (s *HackathonService) RemoveIdea(ctx context.Context, hackathonID, ideaID uuid.UUID) error {
	if _, err := s.store.GetHackathon(ctx, hackathonID); err != nil {
		return err
	}
	return s.store.RemoveHackathonIdea(ctx, hackathonID, ideaID)
}

// AddParticipant enrolls a user into the hackathon's participant pool;
// re-adding is a silent no-op.
func (s *HackathonService) AddParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error {
	if _, err := s.store.GetHackathon(ctx, hackathonID); err != nil {
		return err
	}
	return s.store.AddParticipant(ctx, hackathonID, userID)
}

func (s *HackathonService) RemoveParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error {
	if _, err := s.store.GetHackathon(ctx, hackathonID); err != nil {
		return err
	}
	return s.store.RemoveParticipant(ctx, hackathonID, userID)
}
