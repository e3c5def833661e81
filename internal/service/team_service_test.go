package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamService(db *sqlx.DB, rng Randomizer) *TeamService {
	return NewTeamService(db, store.NewHackathonStore(db), rng)
}

func TestCreateTeamSelectMode(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeSelect, creator)
	ideaID := seedIdea(t, db, "Chosen", creator)
	hackathons := NewHackathonService(db, store.NewHackathonStore(db), store.NewIdeaStore(db))
	require.NoError(t, hackathons.AddIdea(context.Background(), hackathonID, ideaID))

	withIdea, err := teams.CreateTeam(context.Background(), "Pickers", hackathonID, &ideaID, creator)
	require.NoError(t, err)
	require.NotNil(t, withIdea.IdeaID)
	assert.Equal(t, ideaID, *withIdea.IdeaID)

	// No idea supplied, none assigned: select mode never randomizes.
	withoutIdea, err := teams.CreateTeam(context.Background(), "Undecided", hackathonID, nil, creator)
	require.NoError(t, err)
	assert.Nil(t, withoutIdea.IdeaID)
}

func TestCreateTeamRandomModePicksFromPool(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})
	hackathons := NewHackathonService(db, store.NewHackathonStore(db), store.NewIdeaStore(db))
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeRandom, creator)

	ideaA := seedIdea(t, db, "Idea A", creator)
	ideaB := seedIdea(t, db, "Idea B", creator)
	ideaC := seedIdea(t, db, "Idea C", creator)
	for _, id := range []uuid.UUID{ideaA, ideaB, ideaC} {
		require.NoError(t, hackathons.AddIdea(context.Background(), hackathonID, id))
	}

	// pickFirst always selects index 0: the first-associated idea, every time.
	for i := 0; i < 3; i++ {
		team, err := teams.CreateTeam(context.Background(), fmt.Sprintf("Squad %d", i+1), hackathonID, nil, creator)
		require.NoError(t, err)
		require.NotNil(t, team.IdeaID)
		assert.Equal(t, ideaA, *team.IdeaID)
	}
}

func TestCreateTeamRandomModeDrawsUniformly(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, rand.New(rand.NewSource(7)))
	hackathons := NewHackathonService(db, store.NewHackathonStore(db), store.NewIdeaStore(db))
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeRandom, creator)

	pool := map[uuid.UUID]bool{}
	for _, title := range []string{"A", "B", "C"} {
		id := seedIdea(t, db, title, creator)
		pool[id] = true
		require.NoError(t, hackathons.AddIdea(context.Background(), hackathonID, id))
	}

	// Draws are with replacement; each one just has to land in the pool.
	for i := 0; i < 10; i++ {
		team, err := teams.CreateTeam(context.Background(), fmt.Sprintf("Squad %d", i+1), hackathonID, nil, creator)
		require.NoError(t, err)
		require.NotNil(t, team.IdeaID)
		assert.True(t, pool[*team.IdeaID])
	}
}

func TestCreateTeamRandomModeEmptyPool(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeRandom, creator)

	team, err := teams.CreateTeam(context.Background(), "Ideless", hackathonID, nil, creator)
	require.NoError(t, err)
	assert.Nil(t, team.IdeaID)
}

func TestCreateTeamRandomModeExplicitIdeaWins(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})
	hackathons := NewHackathonService(db, store.NewHackathonStore(db), store.NewIdeaStore(db))
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeRandom, creator)

	ideaA := seedIdea(t, db, "Idea A", creator)
	ideaB := seedIdea(t, db, "Idea B", creator)
	require.NoError(t, hackathons.AddIdea(context.Background(), hackathonID, ideaA))
	require.NoError(t, hackathons.AddIdea(context.Background(), hackathonID, ideaB))

	// pickFirst would choose A; the explicit B must win with no draw.
	team, err := teams.CreateTeam(context.Background(), "Decisive", hackathonID, &ideaB, creator)
	require.NoError(t, err)
	require.NotNil(t, team.IdeaID)
	assert.Equal(t, ideaB, *team.IdeaID)
}

func TestCreateTeamEnrollsCreator(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	hackathonStore := store.NewHackathonStore(db)
	teams := NewTeamService(db, hackathonStore, pickFirst{})
	creator := seedUser(t, db, "alice")
	hackathonID := seedHackathon(t, db, hackathon.ModeSelect, creator)

	team, err := teams.CreateTeam(context.Background(), "Founders", hackathonID, nil, creator)
	require.NoError(t, err)

	members, err := hackathonStore.ListTeamMembers(context.Background(), team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
}

func TestCreateTeamUnknownHackathon(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})
	creator := seedUser(t, db, "alice")

	_, err := teams.CreateTeam(context.Background(), "Lost", uuid.New(), nil, creator)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAddMemberIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	hackathonStore := store.NewHackathonStore(db)
	teams := NewTeamService(db, hackathonStore, pickFirst{})
	creator := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	hackathonID := seedHackathon(t, db, hackathon.ModeSelect, creator)

	team, err := teams.CreateTeam(context.Background(), "Joiners", hackathonID, nil, creator)
	require.NoError(t, err)

	require.NoError(t, teams.AddMember(context.Background(), team.ID, bob))
	require.NoError(t, teams.AddMember(context.Background(), team.ID, bob))

	members, err := hackathonStore.ListTeamMembers(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, teams.RemoveMember(context.Background(), team.ID, bob))
	members, err = hackathonStore.ListTeamMembers(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func randomizeFixture(t *testing.T, db *sqlx.DB, participantCount int) (*TeamService, *store.HackathonStore, uuid.UUID) {
	t.Helper()

	hackathonStore := store.NewHackathonStore(db)
	teams := NewTeamService(db, hackathonStore, rand.New(rand.NewSource(42)))
	hackathons := NewHackathonService(db, hackathonStore, store.NewIdeaStore(db))

	creator := seedUser(t, db, "organizer")
	hackathonID := seedHackathon(t, db, hackathon.ModeTeamRandom, creator)

	for i := 0; i < participantCount; i++ {
		userID := seedUser(t, db, fmt.Sprintf("hacker-%02d", i))
		require.NoError(t, hackathons.AddParticipant(context.Background(), hackathonID, userID))
	}

	return teams, hackathonStore, hackathonID
}

func TestRandomizeTeamsRoundRobin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams, hackathonStore, hackathonID := randomizeFixture(t, db, 9)

	require.NoError(t, teams.RandomizeTeams(context.Background(), hackathonID, 4))

	created, err := hackathonStore.ListTeamsByHackathon(context.Background(), hackathonID)
	require.NoError(t, err)
	require.Len(t, created, 3, "ceil(9/4) teams")

	names := make([]string, 0, len(created))
	seen := map[uuid.UUID]int{}
	for _, team := range created {
		names = append(names, team.Name)
		members, err := hackathonStore.ListTeamMembers(context.Background(), team.ID)
		require.NoError(t, err)
		assert.Len(t, members, 3, "9 participants over 3 teams split evenly")
		for _, m := range members {
			seen[m.UserID]++
		}
	}

	assert.ElementsMatch(t, []string{"Team 1", "Team 2", "Team 3"}, names)
	assert.Len(t, seen, 9, "every participant assigned")
	for _, count := range seen {
		assert.Equal(t, 1, count, "each participant on exactly one team")
	}
}

func TestRandomizeTeamsBalancedSizes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams, hackathonStore, hackathonID := randomizeFixture(t, db, 10)

	require.NoError(t, teams.RandomizeTeams(context.Background(), hackathonID, 4))

	created, err := hackathonStore.ListTeamsByHackathon(context.Background(), hackathonID)
	require.NoError(t, err)
	require.Len(t, created, 3)

	var sizes []int
	for _, team := range created {
		members, err := hackathonStore.ListTeamMembers(context.Background(), team.ID)
		require.NoError(t, err)
		sizes = append(sizes, len(members))
	}
	assert.ElementsMatch(t, []int{4, 3, 3}, sizes)
}

func TestRandomizeTeamsReplacesPrevious(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams, hackathonStore, hackathonID := randomizeFixture(t, db, 8)

	require.NoError(t, teams.RandomizeTeams(context.Background(), hackathonID, 4))
	firstRun, err := hackathonStore.ListTeamsByHackathon(context.Background(), hackathonID)
	require.NoError(t, err)
	require.Len(t, firstRun, 2)

	require.NoError(t, teams.RandomizeTeams(context.Background(), hackathonID, 2))
	secondRun, err := hackathonStore.ListTeamsByHackathon(context.Background(), hackathonID)
	require.NoError(t, err)
	require.Len(t, secondRun, 4)

	for _, old := range firstRun {
		for _, current := range secondRun {
			assert.NotEqual(t, old.ID, current.ID)
		}
	}

	// No membership row survives pointing at a discarded team.
	var orphans int
	require.NoError(t, db.Get(&orphans, `
		SELECT COUNT(*) FROM team_members tm
		WHERE NOT EXISTS (SELECT 1 FROM teams t WHERE t.id = tm.team_id)
	`))
	assert.Equal(t, 0, orphans)

	var total int
	require.NoError(t, db.Get(&total, "SELECT COUNT(*) FROM team_members"))
	assert.Equal(t, 8, total)
}

func TestRandomizeTeamsNoParticipants(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams, hackathonStore, hackathonID := randomizeFixture(t, db, 0)

	require.NoError(t, teams.RandomizeTeams(context.Background(), hackathonID, 4))

	created, err := hackathonStore.ListTeamsByHackathon(context.Background(), hackathonID)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestRandomizeTeamsInvalidSize(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams, _, hackathonID := randomizeFixture(t, db, 4)

	assert.ErrorIs(t, teams.RandomizeTeams(context.Background(), hackathonID, 0), ErrInvalidTeamSize)
	assert.ErrorIs(t, teams.RandomizeTeams(context.Background(), hackathonID, -1), ErrInvalidTeamSize)
}

func TestRandomizeTeamsUnknownHackathon(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	teams := newTeamService(db, pickFirst{})

	assert.ErrorIs(t, teams.RandomizeTeams(context.Background(), uuid.New(), 4), sql.ErrNoRows)
}
