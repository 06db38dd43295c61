package inmem

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/cfgnorm/internal/grammar"
	"github.com/dekarrin/cfgnorm/server/dao"
)

func Test_Grammars(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := NewDatastore().Grammars()

	final := grammar.MustParse(`"S" -> "a(S)|b"`)

	created, err := repo.Create(ctx, dao.Grammar{Source: "src", Fingerprint: "fp1", Final: final})
	if !assert.NoError(err) {
		return
	}
	assert.NotEqual(uuid.Nil, created.ID)
	assert.False(created.Created.IsZero())
	assert.True(final.Equal(created.Final))

	_, err = repo.Create(ctx, dao.Grammar{Source: "other", Fingerprint: "fp1", Final: final})
	assert.ErrorIs(err, dao.ErrConstraintViolation)

	second, err := repo.Create(ctx, dao.Grammar{Source: "src2", Fingerprint: "fp2", Final: grammar.New()})
	assert.NoError(err)

	got, err := repo.GetByID(ctx, created.ID)
	assert.NoError(err)
	assert.Equal("src", got.Source)

	got, err = repo.GetByFingerprint(ctx, "fp2")
	assert.NoError(err)
	assert.Equal(second.ID, got.ID)

	_, err = repo.GetByFingerprint(ctx, "nope")
	assert.ErrorIs(err, dao.ErrNotFound)

	all, err := repo.GetAll(ctx)
	assert.NoError(err)
	if assert.Len(all, 2) {
		assert.Equal(created.ID, all[0].ID)
		assert.Equal(second.ID, all[1].ID)
	}

	deleted, err := repo.Delete(ctx, created.ID)
	assert.NoError(err)
	assert.Equal(created.ID, deleted.ID)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)
	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)

	// fingerprint is free again
	_, err = repo.Create(ctx, dao.Grammar{Source: "src", Fingerprint: "fp1", Final: final})
	assert.NoError(err)
}

func Test_Grammars_StoredFinalIsIsolated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := NewGrammarsRepository()

	final := grammar.MustParse(`"S" -> "a"`)
	created, err := repo.Create(ctx, dao.Grammar{Fingerprint: "fp", Final: final})
	if !assert.NoError(err) {
		return
	}

	created.Final.AddRule("T", grammar.Production{grammar.Term('t')})

	got, err := repo.GetByID(ctx, created.ID)
	assert.NoError(err)
	assert.False(got.Final.Has("T"))
}

func Test_Queries(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := NewDatastore().Queries()

	gID := uuid.New()
	otherID := uuid.New()

	first, err := repo.Create(ctx, dao.Query{GrammarID: gID, Input: "ab", Result: true})
	assert.NoError(err)
	assert.NotEqual(uuid.Nil, first.ID)
	_, err = repo.Create(ctx, dao.Query{GrammarID: gID, Input: "ba", Result: false})
	assert.NoError(err)
	_, err = repo.Create(ctx, dao.Query{GrammarID: otherID, Input: "x"})
	assert.NoError(err)

	all, err := repo.GetAllByGrammar(ctx, gID)
	assert.NoError(err)
	if assert.Len(all, 2) {
		assert.Equal("ab", all[0].Input)
		assert.True(all[0].Result)
		assert.Equal("ba", all[1].Input)
	}

	none, err := repo.GetAllByGrammar(ctx, uuid.New())
	assert.NoError(err)
	assert.Empty(none)

	removed, err := repo.DeleteAllByGrammar(ctx, gID)
	assert.NoError(err)
	assert.Len(removed, 2)

	all, err = repo.GetAllByGrammar(ctx, gID)
	assert.NoError(err)
	assert.Empty(all)

	all, err = repo.GetAllByGrammar(ctx, otherID)
	assert.NoError(err)
	assert.Len(all, 1)
}
