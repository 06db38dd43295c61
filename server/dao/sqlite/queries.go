package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/server/dao"
)

type QueriesDB struct {
	db *sql.DB
}

func (repo *QueriesDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS queries (
		id TEXT NOT NULL PRIMARY KEY,
		grammar_id TEXT NOT NULL,
		input TEXT NOT NULL,
		result INTEGER NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	_, err = repo.db.Exec(`CREATE INDEX IF NOT EXISTS queries_by_grammar ON queries (grammar_id);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *QueriesDB) Create(ctx context.Context, q dao.Query) (dao.Query, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Query{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO queries (id, grammar_id, input, result, created) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Query{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(q.GrammarID),
		q.Input,
		convertToDB_Bool(q.Result),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Query{}, wrapDBError(err)
	}

	q.ID = newUUID
	q.Created = time.Unix(now.Unix(), 0)
	return q, nil
}

func (repo *QueriesDB) GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.Query, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, input, result, created FROM queries WHERE grammar_id = ? ORDER BY created, rowid;`,
		convertToDB_UUID(grammarID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	all := []dao.Query{}

	for rows.Next() {
		q := dao.Query{GrammarID: grammarID}
		var id string
		var result int
		var created int64

		err = rows.Scan(
			&id,
			&q.Input,
			&result,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		err = convertFromDB_UUID(id, &q.ID)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
		}
		err = convertFromDB_Bool(result, &q.Result)
		if err != nil {
			return all, fmt.Errorf("stored result for %s is invalid: %w", id, err)
		}
		err = convertFromDB_Time(created, &q.Created)
		if err != nil {
			return all, fmt.Errorf("stored created time %d is invalid: %w", created, err)
		}

		all = append(all, q)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *QueriesDB) DeleteAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.Query, error) {
	curVals, err := repo.GetAllByGrammar(ctx, grammarID)
	if err != nil {
		return nil, err
	}

	_, err = repo.db.ExecContext(ctx, `DELETE FROM queries WHERE grammar_id = ?`, convertToDB_UUID(grammarID))
	if err != nil {
		return curVals, wrapDBError(err)
	}

	return curVals, nil
}

// Close does nothing; the connection belongs to the store.
func (repo *QueriesDB) Close() error {
	return nil
}
