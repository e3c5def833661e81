package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/store"
	users "github.com/hackboard/hackboard/internal/user"
	"github.com/jmoiron/sqlx"
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

// GetOrCreateUser resolves a username to its user row, inserting one on
// first reference. Usernames are case-sensitive exact matches.
func (s *UserService) GetOrCreateUser(ctx context.Context, username string) (*users.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		newUser := &users.User{
			ID:        uuid.New(),
			Username:  username,
			CreatedAt: time.Now().UTC(),
		}
		if createErr := s.store.CreateUser(ctx, newUser); createErr != nil {
			// A concurrent request may have inserted the same username
			// between the lookup and the insert; the unique constraint
			// decided the winner, so read it back.
			if user, lookupErr := s.store.GetUserByUsername(ctx, username); lookupErr == nil {
				return user, nil
			}
			return nil, createErr
		}
		return newUser, nil
	}

	return nil, err
}
