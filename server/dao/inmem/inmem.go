// Package inmem provides a dao.Store that keeps everything in memory. Data is
// lost once the store is discarded.
package inmem

import (
	"fmt"

	"github.com/dekarrin/cfgnorm/server/dao"
)

type store struct {
	grammars *InMemoryGrammarsRepository
	queries  *InMemoryQueriesRepository
}

func NewDatastore() dao.Store {
	return &store{
		grammars: NewGrammarsRepository(),
		queries:  NewQueriesRepository(),
	}
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Queries() dao.QueryRepository {
	return s.queries
}

func (s *store) Close() error {
	var err error

	if nextErr := s.grammars.Close(); nextErr != nil {
		err = fmt.Errorf("grammars: %w", nextErr)
	}
	if nextErr := s.queries.Close(); nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, queries: %w", err, nextErr)
		} else {
			err = fmt.Errorf("queries: %w", nextErr)
		}
	}

	return err
}
