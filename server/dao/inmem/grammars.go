package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/dekarrin/cfgnorm/server/dao"
)

func NewGrammarsRepository() *InMemoryGrammarsRepository {
	return &InMemoryGrammarsRepository{
		grammars:           make(map[uuid.UUID]dao.Grammar),
		byFingerprintIndex: make(map[string]uuid.UUID),
	}
}

type InMemoryGrammarsRepository struct {
	mtx                sync.RWMutex
	grammars           map[uuid.UUID]dao.Grammar
	byFingerprintIndex map[string]uuid.UUID

	// creation order
	order []uuid.UUID
}

func (imgr *InMemoryGrammarsRepository) Close() error {
	return nil
}

func (imgr *InMemoryGrammarsRepository) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	// make sure it's not already in the DB
	if _, ok := imgr.byFingerprintIndex[g.Fingerprint]; ok {
		return dao.Grammar{}, dao.ErrConstraintViolation
	}

	g.ID = newUUID
	g.Final = g.Final.Copy()
	g.Created = time.Now()

	imgr.grammars[g.ID] = g
	imgr.byFingerprintIndex[g.Fingerprint] = g.ID
	imgr.order = append(imgr.order, g.ID)

	return imgr.get(g.ID), nil
}

func (imgr *InMemoryGrammarsRepository) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	all := make([]dao.Grammar, len(imgr.order))
	for i := range imgr.order {
		all[i] = imgr.get(imgr.order[i])
	}

	return all, nil
}

func (imgr *InMemoryGrammarsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	if _, ok := imgr.grammars[id]; !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return imgr.get(id), nil
}

func (imgr *InMemoryGrammarsRepository) GetByFingerprint(ctx context.Context, fingerprint string) (dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	id, ok := imgr.byFingerprintIndex[fingerprint]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return imgr.get(id), nil
}

func (imgr *InMemoryGrammarsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	delete(imgr.byFingerprintIndex, g.Fingerprint)
	delete(imgr.grammars, g.ID)
	if idx := slices.Index(imgr.order, id); idx >= 0 {
		imgr.order = slices.Delete(imgr.order, idx, idx+1)
	}

	return g, nil
}

// get returns a copy of the stored grammar so callers cannot change the
// repository's Final. imgr.mtx must be held.
func (imgr *InMemoryGrammarsRepository) get(id uuid.UUID) dao.Grammar {
	g := imgr.grammars[id]
	g.Final = g.Final.Copy()
	return g
}
