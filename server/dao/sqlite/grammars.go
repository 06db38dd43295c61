package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/server/dao"
)

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		source TEXT NOT NULL,
		fingerprint TEXT NOT NULL UNIQUE,
		final TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO grammars (id, source, fingerprint, final, created) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		g.Source,
		g.Fingerprint,
		convertToDB_Grammar(g.Final),
		convertToDB_Time(time.Now()),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, source, fingerprint, final, created FROM grammars ORDER BY created, rowid;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	all := []dao.Grammar{}

	for rows.Next() {
		var g dao.Grammar
		var id string
		var final string
		var created int64

		err = rows.Scan(
			&id,
			&g.Source,
			&g.Fingerprint,
			&final,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		err = convertFromDB_UUID(id, &g.ID)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
		}
		err = convertFromDB_Grammar(final, &g.Final)
		if err != nil {
			return all, fmt.Errorf("stored final grammar for %s is invalid: %w", id, err)
		}
		err = convertFromDB_Time(created, &g.Created)
		if err != nil {
			return all, fmt.Errorf("stored created time %d is invalid: %w", created, err)
		}

		all = append(all, g)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g := dao.Grammar{
		ID: id,
	}
	var final string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT source, fingerprint, final, created FROM grammars WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&g.Source,
		&g.Fingerprint,
		&final,
		&created,
	)
	if err != nil {
		return g, wrapDBError(err)
	}

	err = convertFromDB_Grammar(final, &g.Final)
	if err != nil {
		return g, fmt.Errorf("stored final grammar for %s is invalid: %w", id, err)
	}
	err = convertFromDB_Time(created, &g.Created)
	if err != nil {
		return g, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return g, nil
}

func (repo *GrammarsDB) GetByFingerprint(ctx context.Context, fingerprint string) (dao.Grammar, error) {
	g := dao.Grammar{
		Fingerprint: fingerprint,
	}
	var id string
	var final string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT id, source, final, created FROM grammars WHERE fingerprint = ?;`,
		fingerprint,
	)
	err := row.Scan(
		&id,
		&g.Source,
		&final,
		&created,
	)
	if err != nil {
		return g, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &g.ID)
	if err != nil {
		return g, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_Grammar(final, &g.Final)
	if err != nil {
		return g, fmt.Errorf("stored final grammar for %s is invalid: %w", id, err)
	}
	err = convertFromDB_Time(created, &g.Created)
	if err != nil {
		return g, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return g, nil
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

// Close does nothing; the connection belongs to the store.
func (repo *GrammarsDB) Close() error {
	return nil
}
