// Package normsvc has the services of the cfgnorm server decoupled from the
// HTTP API that exposes them. It reads and normalizes grammars, keeps them in a
// dao.Store and answers membership queries against them.
package normsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dekarrin/cfgnorm/internal/grammar"
	"github.com/dekarrin/cfgnorm/internal/pipeline"
	"github.com/dekarrin/cfgnorm/internal/recognize"
	"github.com/dekarrin/cfgnorm/server/dao"
	"github.com/dekarrin/cfgnorm/server/serr"
)

// DefaultCacheSize is the number of recognition results kept when Options
// does not give a size.
const DefaultCacheSize = 4096

// Options configures a Service.
type Options struct {
	// MaxSteps is the recognizer step budget per query. Values below 1 use
	// recognize.DefaultMaxSteps.
	MaxSteps int

	// NormalizeUnicode is whether grammar source and query input are put in
	// Unicode normalization form C.
	NormalizeUnicode bool

	// CacheSize is how many recognition results are remembered. Values below
	// 1 use DefaultCacheSize.
	CacheSize int
}

// queryKey identifies a recognition result in the cache.
type queryKey struct {
	grammar uuid.UUID
	input   string
}

// Service performs the actions requested of the server and makes calls to
// persistence to keep the results. Create one with New.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store

	opts    Options
	results *lru.Cache[queryKey, bool]
}

// New creates a Service that stores grammars and queries in db.
func New(db dao.Store, opts Options) (Service, error) {
	if opts.MaxSteps < 1 {
		opts.MaxSteps = recognize.DefaultMaxSteps
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[queryKey, bool](opts.CacheSize)
	if err != nil {
		return Service{}, fmt.Errorf("create result cache: %w", err)
	}

	return Service{DB: db, opts: opts, results: cache}, nil
}

// CreateGrammar reads source, normalizes it and stores the result. The
// returned bool is false when a grammar that reads the same as source was
// already stored; that grammar is returned instead of a new one.
//
// If source is not valid rule notation, the returned error matches
// cfgerrors.ErrMalformedInput. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc Service) CreateGrammar(ctx context.Context, source string) (dao.Grammar, pipeline.Result, bool, error) {
	g, err := grammar.ParseWith(strings.NewReader(source), grammar.ParseOptions{NormalizeUnicode: svc.opts.NormalizeUnicode})
	if err != nil {
		return dao.Grammar{}, pipeline.Result{}, false, err
	}

	fp, err := g.Fingerprint()
	if err != nil {
		return dao.Grammar{}, pipeline.Result{}, false, fmt.Errorf("fingerprint grammar: %w", err)
	}

	res := pipeline.Run(g)

	existing, err := svc.DB.Grammars().GetByFingerprint(ctx, fp)
	if err == nil {
		return existing, res, false, nil
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.Grammar{}, pipeline.Result{}, false, serr.WrapDB("could not look up grammar", err)
	}

	created, err := svc.DB.Grammars().Create(ctx, dao.Grammar{
		Source:      source,
		Fingerprint: fp,
		Final:       res.Final(),
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			// stored by someone else since the lookup
			existing, err := svc.DB.Grammars().GetByFingerprint(ctx, fp)
			if err != nil {
				return dao.Grammar{}, pipeline.Result{}, false, serr.WrapDB("could not look up grammar", err)
			}
			return existing, res, false, nil
		}
		return dao.Grammar{}, pipeline.Result{}, false, serr.WrapDB("could not create grammar", err)
	}

	return created, res, true, nil
}

// GetGrammar returns the stored grammar with the given ID.
//
// If no grammar has that ID, the returned error matches serr.ErrNotFound.
func (svc Service) GetGrammar(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g, err := svc.DB.Grammars().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}
	return g, nil
}

// GetAllGrammars returns every stored grammar, oldest first.
func (svc Service) GetAllGrammars(ctx context.Context) ([]dao.Grammar, error) {
	all, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return all, nil
}

// DeleteGrammar removes the grammar with the given ID along with every query
// made against it. The removed grammar is returned.
//
// If no grammar has that ID, the returned error matches serr.ErrNotFound.
func (svc Service) DeleteGrammar(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g, err := svc.DB.Grammars().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	if _, err := svc.DB.Queries().DeleteAllByGrammar(ctx, id); err != nil {
		return g, serr.WrapDB("could not delete queries of grammar", err)
	}

	for _, k := range svc.results.Keys() {
		if k.grammar == id {
			svc.results.Remove(k)
		}
	}

	return g, nil
}

// Recognize decides whether input is in the language of the grammar with the
// given ID and records the query.
//
// If no grammar has that ID, the returned error matches serr.ErrNotFound. If
// the recognizer ran out of steps or was cut short by left recursion, it
// matches recognize.ErrBudgetExhausted or recognize.ErrLeftRecursive and
// nothing is recorded.
func (svc Service) Recognize(ctx context.Context, grammarID uuid.UUID, input string) (dao.Query, error) {
	g, err := svc.GetGrammar(ctx, grammarID)
	if err != nil {
		return dao.Query{}, err
	}

	key := queryKey{grammar: grammarID, input: input}
	accepted, cached := svc.results.Get(key)
	if !cached {
		r := recognize.New(g.Final,
			recognize.WithMaxSteps(svc.opts.MaxSteps),
			recognize.NormalizeInput(svc.opts.NormalizeUnicode),
		)
		accepted, err = r.Match(input)
		if err != nil {
			return dao.Query{}, fmt.Errorf("recognize %q: %w", input, err)
		}
		svc.results.Add(key, accepted)
	}

	q, err := svc.DB.Queries().Create(ctx, dao.Query{
		GrammarID: grammarID,
		Input:     input,
		Result:    accepted,
	})
	if err != nil {
		return dao.Query{}, serr.WrapDB("could not record query", err)
	}

	return q, nil
}

// GetQueries returns the queries made against the grammar with the given ID,
// oldest first.
//
// If no grammar has that ID, the returned error matches serr.ErrNotFound.
func (svc Service) GetQueries(ctx context.Context, grammarID uuid.UUID) ([]dao.Query, error) {
	if _, err := svc.GetGrammar(ctx, grammarID); err != nil {
		return nil, err
	}

	qs, err := svc.DB.Queries().GetAllByGrammar(ctx, grammarID)
	if err != nil {
		return nil, serr.WrapDB("could not get queries", err)
	}
	return qs, nil
}
