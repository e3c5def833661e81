package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/idea"
	"github.com/jmoiron/sqlx"
)

type IdeaStore struct {
	db *sqlx.DB
}

func NewIdeaStore(db *sqlx.DB) *IdeaStore {
	return &IdeaStore{db: db}
}

// aggregateColumns computes the vote summary inline so an idea with zero
// votes still reads back as all-zero counts. The uv join matches at most one
// row (votes are unique per idea/user), so it never inflates the sums.
const aggregateColumns = `
	i.*, u.username,
	COALESCE(SUM(CASE WHEN v.vote_type = 1 THEN 1 ELSE 0 END), 0) AS upvotes,
	COALESCE(SUM(CASE WHEN v.vote_type = -1 THEN 1 ELSE 0 END), 0) AS downvotes,
	COALESCE(SUM(v.vote_type), 0) AS score,
	uv.vote_type AS viewer_vote
`

const aggregateJoins = `
	FROM ideas i
	JOIN users u ON u.id = i.user_id
	LEFT JOIN votes v ON v.idea_id = i.id
	LEFT JOIN votes uv ON uv.idea_id = i.id AND uv.user_id = ?
`

const (
	createIdeaQuery = `
		INSERT INTO ideas (id, title, description, user_id, created_at) VALUES
		(:id, :title, :description, :user_id, :created_at)
	`
	getIdeaAggregateQuery = "SELECT " + aggregateColumns + aggregateJoins + `
		WHERE i.id = ?
		GROUP BY i.id
	`
	listIdeaAggregatesQuery = "SELECT " + aggregateColumns + aggregateJoins + `
		GROUP BY i.id
		ORDER BY score DESC, i.created_at DESC
	`
	listHackathonIdeaAggregatesQuery = "SELECT " + aggregateColumns + aggregateJoins + `
		JOIN hackathon_ideas hi ON hi.idea_id = i.id
		WHERE hi.hackathon_id = ?
		GROUP BY i.id
		ORDER BY score DESC, i.created_at DESC
	`
	upsertVoteQuery = `
		INSERT INTO votes (id, idea_id, user_id, vote_type, created_at)
		VALUES (:id, :idea_id, :user_id, :vote_type, :created_at)
		ON CONFLICT (idea_id, user_id) DO UPDATE SET vote_type = excluded.vote_type
	`
	deleteVoteQuery = "DELETE FROM votes WHERE idea_id = ? AND user_id = ?"

	createCommentQuery = `
		INSERT INTO comments (id, idea_id, user_id, content, created_at) VALUES
		(:id, :idea_id, :user_id, :content, :created_at)
	`
	getCommentQuery = `
		SELECT c.*, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`
	listCommentsQuery = `
		SELECT c.*, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.idea_id = ?
		ORDER BY c.created_at ASC
	`
)

// viewerParam turns an optional viewer ID into a bindable value. A nil
// viewer binds NULL, which matches no vote row and leaves viewer_vote NULL.
func viewerParam(viewerID *uuid.UUID) interface{} {
	if viewerID == nil {
		return nil
	}
	return *viewerID
}

func (s *IdeaStore) CreateIdea(ctx context.Context, i *idea.Idea) error {
	_, err := s.db.NamedExecContext(ctx, createIdeaQuery, i)
	return err
}

func (s *IdeaStore) GetIdea(ctx context.Context, id uuid.UUID) (*idea.Idea, error) {
	var i idea.Idea
	err := s.db.GetContext(ctx, &i, "SELECT * FROM ideas WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *IdeaStore) GetIdeaAggregate(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*idea.Aggregate, error) {
	var agg idea.Aggregate
	err := s.db.GetContext(ctx, &agg, getIdeaAggregateQuery, viewerParam(viewerID), id)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (s *IdeaStore) ListIdeaAggregates(ctx context.Context, viewerID *uuid.UUID) ([]idea.Aggregate, error) {
	var aggs []idea.Aggregate
	err := s.db.SelectContext(ctx, &aggs, listIdeaAggregatesQuery, viewerParam(viewerID))
	return aggs, err
}

func (s *IdeaStore) ListIdeaAggregatesByHackathon(ctx context.Context, hackathonID uuid.UUID, viewerID *uuid.UUID) ([]idea.Aggregate, error) {
	var aggs []idea.Aggregate
	err := s.db.SelectContext(ctx, &aggs, listHackathonIdeaAggregatesQuery, viewerParam(viewerID), hackathonID)
	return aggs, err
}

// UpsertVote is last-write-wins on the (idea, user) unique key.
func (s *IdeaStore) UpsertVote(ctx context.Context, v *idea.Vote) error {
	_, err := s.db.NamedExecContext(ctx, upsertVoteQuery, v)
	return err
}

// DeleteVote is a no-op when the user has no vote on the idea.
func (s *IdeaStore) DeleteVote(ctx context.Context, ideaID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, deleteVoteQuery, ideaID, userID)
	return err
}

func (s *IdeaStore) CreateComment(ctx context.Context, c *idea.Comment) error {
	_, err := s.db.NamedExecContext(ctx, createCommentQuery, c)
	return err
}

func (s *IdeaStore) GetComment(ctx context.Context, id uuid.UUID) (*idea.Comment, error) {
	var c idea.Comment
	err := s.db.GetContext(ctx, &c, getCommentQuery, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *IdeaStore) ListComments(ctx context.Context, ideaID uuid.UUID) ([]idea.Comment, error) {
	var comments []idea.Comment
	err := s.db.SelectContext(ctx, &comments, listCommentsQuery, ideaID)
	return comments, err
}
