package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/server/dao"
)

func NewQueriesRepository() *InMemoryQueriesRepository {
	return &InMemoryQueriesRepository{
		byGrammarIndex: make(map[uuid.UUID][]dao.Query),
	}
}

type InMemoryQueriesRepository struct {
	mtx sync.RWMutex

	// queries of each grammar in creation order
	byGrammarIndex map[uuid.UUID][]dao.Query
}

func (imqr *InMemoryQueriesRepository) Close() error {
	return nil
}

func (imqr *InMemoryQueriesRepository) Create(ctx context.Context, q dao.Query) (dao.Query, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Query{}, fmt.Errorf("could not generate ID: %w", err)
	}

	q.ID = newUUID
	q.Created = time.Now()

	imqr.mtx.Lock()
	defer imqr.mtx.Unlock()

	imqr.byGrammarIndex[q.GrammarID] = append(imqr.byGrammarIndex[q.GrammarID], q)

	return q, nil
}

func (imqr *InMemoryQueriesRepository) GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.Query, error) {
	imqr.mtx.RLock()
	defer imqr.mtx.RUnlock()

	stored := imqr.byGrammarIndex[grammarID]
	all := make([]dao.Query, len(stored))
	copy(all, stored)

	return all, nil
}

func (imqr *InMemoryQueriesRepository) DeleteAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.Query, error) {
	imqr.mtx.Lock()
	defer imqr.mtx.Unlock()

	removed := imqr.byGrammarIndex[grammarID]
	delete(imqr.byGrammarIndex, grammarID)

	if removed == nil {
		removed = []dao.Query{}
	}
	return removed, nil
}
