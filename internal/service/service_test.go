package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/hackboard/hackboard/internal/idea"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// Every new pool connection would be a fresh empty in-memory DB.
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func seedUser(t *testing.T, db *sqlx.DB, username string) uuid.UUID {
	t.Helper()

	users := NewUserService(db, store.NewUserStore(db))
	user, err := users.GetOrCreateUser(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func seedIdea(t *testing.T, db *sqlx.DB, title string, userID uuid.UUID) uuid.UUID {
	t.Helper()

	ideas := NewIdeaService(db, store.NewIdeaStore(db))
	agg, err := ideas.CreateIdea(context.Background(), title, "a description of "+title, userID)
	require.NoError(t, err)
	return agg.ID
}

func seedHackathon(t *testing.T, db *sqlx.DB, mode hackathon.Mode, createdBy uuid.UUID) uuid.UUID {
	t.Helper()

	hackathons := NewHackathonService(db, store.NewHackathonStore(db), store.NewIdeaStore(db))
	h, err := hackathons.CreateHackathon(context.Background(), HackathonInput{
		Name: "Test Hackathon",
		Mode: mode,
	}, createdBy)
	require.NoError(t, err)
	return h.ID
}

// backdateIdea gives an idea a distinct creation time so recency tiebreaks
// are deterministic under test.
func backdateIdea(t *testing.T, db *sqlx.DB, ideaID uuid.UUID, age time.Duration) {
	t.Helper()

	_, err := db.Exec("UPDATE ideas SET created_at = ? WHERE id = ?", time.Now().UTC().Add(-age), ideaID)
	require.NoError(t, err)
}

// pickFirst is a deterministic Randomizer: it always selects index 0 and
// leaves shuffles untouched.
type pickFirst struct{}

func (pickFirst) Intn(int) int                { return 0 }
func (pickFirst) Shuffle(int, func(i, j int)) {}

var _ Randomizer = pickFirst{}

func castVote(t *testing.T, ideas *IdeaService, ideaID, userID uuid.UUID, value int) *idea.Aggregate {
	t.Helper()

	agg, err := ideas.CastVote(context.Background(), ideaID, userID, value)
	require.NoError(t, err)
	return agg
}
