package service

import "errors"

// Validation failures are surfaced before any storage access so handlers can
// answer 400 without touching the database. Not-found is reported as
// sql.ErrNoRows straight from the store; anything else is a storage failure.
var (
	ErrInvalidVote     = errors.New("vote value must be 1, -1, or 0")
	ErrInvalidMode     = errors.New(`mode must be "select", "random", or "team-random"`)
	ErrInvalidTeamSize = errors.New("team size must be a positive integer")
)
