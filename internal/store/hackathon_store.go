package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type HackathonStore struct {
	db *sqlx.DB
}

func NewHackathonStore(db *sqlx.DB) *HackathonStore {
	return &HackathonStore{db: db}
}

const hackathonColumns = `
	h.*, u.username AS creator_username,
	(SELECT COUNT(*) FROM hackathon_ideas hi WHERE hi.hackathon_id = h.id) AS idea_count,
	(SELECT COUNT(*) FROM teams t WHERE t.hackathon_id = h.id) AS team_count
`

const (
	createHackathonQuery = `
		INSERT INTO hackathons (id, name, description, start_date, end_date, mode, created_by, created_at) VALUES
		(:id, :name, :description, :start_date, :end_date, :mode, :created_by, :created_at)
	`
	updateHackathonQuery = `
		UPDATE hackathons SET
		name = :name,
		description = :description,
		start_date = :start_date,
		end_date = :end_date,
		mode = :mode
		WHERE id = :id
	`
	getHackathonQuery = "SELECT " + hackathonColumns + `
		FROM hackathons h
		JOIN users u ON u.id = h.created_by
		WHERE h.id = ?
	`
	listHackathonsQuery = "SELECT " + hackathonColumns + `
		FROM hackathons h
		JOIN users u ON u.id = h.created_by
		ORDER BY h.created_at DESC
	`

	hackathonIdeaExistsQuery = `
		SELECT EXISTS (SELECT 1 FROM hackathon_ideas WHERE hackathon_id = ? AND idea_id = ?)
	`
	addHackathonIdeaQuery = `
		INSERT INTO hackathon_ideas (id, hackathon_id, idea_id, added_at) VALUES (?, ?, ?, ?)
	`
	removeHackathonIdeaQuery = `
		DELETE FROM hackathon_ideas WHERE hackathon_id = ? AND idea_id = ?
	`
	listHackathonIdeaIDsQuery = `
		SELECT idea_id FROM hackathon_ideas WHERE hackathon_id = ? ORDER BY added_at ASC
	`

	participantExistsQuery = `
		SELECT EXISTS (SELECT 1 FROM hackathon_participants WHERE hackathon_id = ? AND user_id = ?)
	`
	addParticipantQuery = `
		INSERT INTO hackathon_participants (id, hackathon_id, user_id, joined_at) VALUES (?, ?, ?, ?)
	`
	removeParticipantQuery = `
		DELETE FROM hackathon_participants WHERE hackathon_id = ? AND user_id = ?
	`
	listParticipantsQuery = `
		SELECT hp.user_id, u.username, hp.joined_at
		FROM hackathon_participants hp
		JOIN users u ON u.id = hp.user_id
		WHERE hp.hackathon_id = ?
		ORDER BY hp.joined_at ASC
	`

	createTeamQuery = `
		INSERT INTO teams (id, name, hackathon_id, idea_id, created_by, created_at) VALUES
		(:id, :name, :hackathon_id, :idea_id, :created_by, :created_at)
	`
	createTeamMembersQuery = `
		INSERT INTO team_members (id, team_id, user_id, joined_at) VALUES
		(:id, :team_id, :user_id, :joined_at)
	`
	deleteTeamsByHackathonQuery = `
		DELETE FROM teams WHERE hackathon_id = ?
	`
	getTeamQuery = `
		SELECT * FROM teams WHERE id = ?
	`
	listTeamsByHackathonQuery = `
		SELECT * FROM teams WHERE hackathon_id = ? ORDER BY created_at ASC, name ASC
	`
	teamMemberExistsQuery = `
		SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?)
	`
	addTeamMemberQuery = `
		INSERT INTO team_members (id, team_id, user_id, joined_at) VALUES (?, ?, ?, ?)
	`
	removeTeamMemberQuery = `
		DELETE FROM team_members WHERE team_id = ? AND user_id = ?
	`
	listTeamMembersQuery = `
		SELECT tm.id, tm.team_id, tm.user_id, u.username, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = ?
		ORDER BY tm.joined_at ASC
	`
)

func (s *HackathonStore) CreateHackathon(ctx context.Context, h *hackathon.Hackathon) error {
	_, err := s.db.NamedExecContext(ctx, createHackathonQuery, h)
	return err
}

// UpdateHackathon returns sql.ErrNoRows when no hackathon matches h.ID.
func (s *HackathonStore) UpdateHackathon(ctx context.Context, h *hackathon.Hackathon) error {
	res, err := s.db.NamedExecContext(ctx, updateHackathonQuery, h)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *HackathonStore) GetHackathon(ctx context.Context, id uuid.UUID) (*hackathon.Hackathon, error) {
	var h hackathon.Hackathon
	err := s.db.GetContext(ctx, &h, getHackathonQuery, id)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HackathonStore) ListHackathons(ctx context.Context) ([]hackathon.Hackathon, error) {
	var hs []hackathon.Hackathon
	err := s.db.SelectContext(ctx, &hs, listHackathonsQuery)
	return hs, err
}

// isUniqueViolation reports whether err is the UNIQUE constraint deciding a
// lost insert race.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// AddHackathonIdea is upsert-or-skip: re-adding an associated idea is a
// silent no-op. A concurrent duplicate can slip past the exists check; the
// unique key decides it, and the loser treats that as already added.
func (s *HackathonStore) AddHackathonIdea(ctx context.Context, hackathonID, ideaID uuid.UUID) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, hackathonIdeaExistsQuery, hackathonID, ideaID); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := s.db.ExecContext(ctx, addHackathonIdeaQuery, uuid.New(), hackathonID, ideaID, time.Now().UTC())
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (s *HackathonStore) RemoveHackathonIdea(ctx context.Context, hackathonID, ideaID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, removeHackathonIdeaQuery, hackathonID, ideaID)
	return err
}

// ListHackathonIdeaIDs returns the hackathon's idea pool in association
// order. This is the pool random mode draws from.
func (s *HackathonStore) ListHackathonIdeaIDs(ctx context.Context, hackathonID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, listHackathonIdeaIDsQuery, hackathonID)
	return ids, err
}

func (s *HackathonStore) AddParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, participantExistsQuery, hackathonID, userID); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := s.db.ExecContext(ctx, addParticipantQuery, uuid.New(), hackathonID, userID, time.Now().UTC())
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (s *HackathonStore) RemoveParticipant(ctx context.Context, hackathonID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, removeParticipantQuery, hackathonID, userID)
	return err
}

func (s *HackathonStore) ListParticipants(ctx context.Context, hackathonID uuid.UUID) ([]hackathon.Participant, error) {
	var ps []hackathon.Participant
	err := s.db.SelectContext(ctx, &ps, listParticipantsQuery, hackathonID)
	return ps, err
}

func (s *HackathonStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *hackathon.Team) error {
	_, err := tx.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *HackathonStore) CreateTeamMembers(ctx context.Context, tx *sqlx.Tx, members []hackathon.TeamMember) error {
	if len(members) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createTeamMembersQuery, members)
	return err
}

// DeleteTeamsByHackathon drops every team of the hackathon; membership rows
// go with them via the cascading foreign key.
func (s *HackathonStore) DeleteTeamsByHackathon(ctx context.Context, tx *sqlx.Tx, hackathonID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, deleteTeamsByHackathonQuery, hackathonID)
	return err
}

func (s *HackathonStore) GetTeam(ctx context.Context, id uuid.UUID) (*hackathon.Team, error) {
	var team hackathon.Team
	err := s.db.GetContext(ctx, &team, getTeamQuery, id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *HackathonStore) ListTeamsByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]hackathon.Team, error) {
	var teams []hackathon.Team
	err := s.db.SelectContext(ctx, &teams, listTeamsByHackathonQuery, hackathonID)
	return teams, err
}

func (s *HackathonStore) AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, teamMemberExistsQuery, teamID, userID); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := s.db.ExecContext(ctx, addTeamMemberQuery, uuid.New(), teamID, userID, time.Now().UTC())
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (s *HackathonStore) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, removeTeamMemberQuery, teamID, userID)
	return err
}

func (s *HackathonStore) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]hackathon.TeamMember, error) {
	var members []hackathon.TeamMember
	err := s.db.SelectContext(ctx, &members, listTeamMembersQuery, teamID)
	return members, err
}
