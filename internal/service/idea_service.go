package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/idea"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/jmoiron/sqlx"
)

type IdeaService struct {
	db    *sqlx.DB
	store *store.IdeaStore
}

func NewIdeaService(db *sqlx.DB, store *store.IdeaStore) *IdeaService {
	return &IdeaService{db: db, store: store}
}

func (s *IdeaService) CreateIdea(ctx context.Context, title, description string, userID uuid.UUID) (*idea.Aggregate, error) {
	i := &idea.Idea{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateIdea(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	metrics.IdeasCreated.Inc()
	return s.store.GetIdeaAggregate(ctx, i.ID, &userID)
}

func (s *IdeaService) GetIdea(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*idea.Aggregate, error) {
	return s.store.GetIdeaAggregate(ctx, id, viewerID)
}

// ListIdeas returns every idea with its vote summary, best score first,
// newer ideas winning ties.
func (s *IdeaService) ListIdeas(ctx context.Context, viewerID *uuid.UUID) ([]idea.Aggregate, error) {
	return s.store.ListIdeaAggregates(ctx, viewerID)
}

// CastVote applies one vote mutation and returns the idea's freshly
// recomputed aggregate. A value of 1 or -1 replaces any prior vote by the
// user on the idea; 0 clears it (a no-op when there is nothing to clear).
func (s *IdeaService) CastVote(ctx context.Context, ideaID, userID uuid.UUID, value int) (*idea.Aggregate, error) {
	if !idea.ValidVoteValue(value) {
		return nil, ErrInvalidVote
	}

	// Distinguish a missing idea from a storage failure before mutating.
	if _, err := s.store.GetIdea(ctx, ideaID); err != nil {
		return nil, err
	}

	if value == idea.VoteClear {
		if err := s.store.DeleteVote(ctx, ideaID, userID); err != nil {
			return nil, fmt.Errorf("failed to clear vote: %w", err)
		}
	} else {
		v := &idea.Vote{
			ID:        uuid.New(),
			IdeaID:    ideaID,
			UserID:    userID,
			VoteType:  value,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.UpsertVote(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to cast vote: %w", err)
		}
	}

	metrics.VotesCast.Inc()
	return s.store.GetIdeaAggregate(ctx, ideaID, &userID)
}

func (s *IdeaService) AddComment(ctx context.Context, ideaID, userID uuid.UUID, content string) (*idea.Comment, error) {
	if _, err := s.store.GetIdea(ctx, ideaID); err != nil {
		return nil, err
	}

	c := &idea.Comment{
		ID:        uuid.New(),
		IdeaID:    ideaID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return s.store.GetComment(ctx, c.ID)
}

func (s *IdeaService) ListComments(ctx context.Context, ideaID uuid.UUID) ([]idea.Comment, error) {
	if _, err := s.store.GetIdea(ctx, ideaID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, ideaID)
}
