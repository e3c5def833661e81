package store

import (
	"context"

	users "github.com/hackboard/hackboard/internal/user"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	getUserByUsernameQuery = "SELECT * FROM users WHERE username = ?"
	createUserQuery        = `
		INSERT INTO users (id, username, created_at) VALUES
		(:id, :username, :created_at)
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetUserByUsername is a case-sensitive exact match.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserByUsernameQuery, username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}
