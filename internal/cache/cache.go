// Package cache holds the small pieces of shared state that must survive
// across requests but do not belong in Postgres: the resolved role flag per
// user and idempotency marks for triage submissions.
package cache

import (
	"context"
	"errors"
	"time"
)

// Roles a user can resolve to.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// ErrMiss is returned when no value is cached for the key.
var ErrMiss = errors.New("cache miss")

// RoleStore caches the resolved role flag per user with a bounded lifetime.
// All guards read through the same store; sign-out clears the entry.
type RoleStore interface {
	GetRole(ctx context.Context, userID string) (string, error)
	SetRole(ctx context.Context, userID, role string) error
	ClearRole(ctx context.Context, userID string) error
}

// IdempotencyStore marks submission keys as used. MarkOnce returns true only
// for the first caller of a given key within the TTL.
type IdempotencyStore interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// DefaultRoleTTL bounds how long a cached role flag is trusted before the
// doctors table is consulted again.
const DefaultRoleTTL = 12 * time.Hour
