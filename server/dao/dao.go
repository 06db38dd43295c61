// Package dao provides data access objects for the grammars and queries kept
// by the cfgnorm server and journaled by the cfgn driver.
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/internal/grammar"
)

// Store holds all the repositories.
type Store interface {
	Grammars() GrammarRepository
	Queries() QueryRepository
	Close() error
}

type GrammarRepository interface {

	// Create creates a new Grammar. All attributes except for auto-generated
	// fields are taken from the provided Grammar. If a Grammar with the same
	// Fingerprint already exists, the returned error matches
	// ErrConstraintViolation.
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (Grammar, error)

	// GetAll returns every Grammar ordered by creation time, oldest first.
	GetAll(ctx context.Context) ([]Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

type QueryRepository interface {
	Create(ctx context.Context, q Query) (Query, error)

	// GetAllByGrammar returns the queries made against a grammar ordered by
	// creation time, oldest first.
	GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]Query, error)

	// DeleteAllByGrammar removes the queries made against a grammar and
	// returns them.
	DeleteAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]Query, error)
	Close() error
}

// Grammar is a grammar that was read from source and normalized.
type Grammar struct {
	ID uuid.UUID

	// Source is the rule text the grammar was read from.
	Source string

	// Fingerprint identifies the grammar as it was read, before any
	// normalization stage ran.
	Fingerprint string

	// Final is the grammar after the last normalization stage.
	Final grammar.Grammar

	Created time.Time
}

// Query is one recognition request made against a stored grammar.
type Query struct {
	ID        uuid.UUID
	GrammarID uuid.UUID
	Input     string
	Result    bool
	Created   time.Time
}
