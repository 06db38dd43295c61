// Package sqlite provides a dao.Store backed by a SQLite database file in a
// data directory.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"modernc.org/sqlite"

	"github.com/dekarrin/cfgnorm/server/dao"
)

type store struct {
	dbFilename string

	db *sql.DB

	grammars *GrammarsDB
	queries  *QueriesDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "data.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	// one writer at a time; sqlite locks the whole file anyways
	st.db.SetMaxOpenConns(1)

	st.grammars = &GrammarsDB{db: st.db}
	if err := st.grammars.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("grammars: %w", err)
	}

	st.queries = &QueriesDB{db: st.db}
	if err := st.queries.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("queries: %w", err)
	}

	return st, nil
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Queries() dao.QueryRepository {
	return s.queries
}

func (s *store) Close() error {
	var err error

	if repoErr := s.grammars.Close(); repoErr != nil {
		err = fmt.Errorf("grammars: %w", repoErr)
	}
	if repoErr := s.queries.Close(); repoErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally: queries: %w", err.Error(), repoErr)
		} else {
			err = fmt.Errorf("queries: %w", repoErr)
		}
	}
	if mainDBErr := s.db.Close(); mainDBErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally: %s: %w", err.Error(), s.dbFilename, mainDBErr)
		} else {
			err = fmt.Errorf("%s: %w", s.dbFilename, mainDBErr)
		}
	}
	return err
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
