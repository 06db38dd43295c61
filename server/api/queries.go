package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cfgnorm/internal/recognize"
	"github.com/dekarrin/cfgnorm/server/result"
	"github.com/dekarrin/cfgnorm/server/serr"
)

// HTTPCreateQuery returns a HandlerFunc that decides whether an input string is
// in the language of a stored grammar and records the query.
func (api API) HTTPCreateQuery() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epCreateQuery)
}

// POST /grammars/{id}/queries: test an input string.
func (api API) epCreateQuery(req *http.Request) result.Result {
	id := requireIDParam(req)

	var body QueryRequest
	err := parseJSON(req, &body)
	if err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}
	if body.Input == nil {
		return result.BadRequest("input: property is missing from request", "missing input")
	}

	q, err := api.Backend.Recognize(req.Context(), id, *body.Input)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, recognize.ErrBudgetExhausted) {
			return result.UnprocessableEntity("The input could not be decided within the recognition step budget", "%s", err.Error())
		} else if errors.Is(err, recognize.ErrLeftRecursive) {
			return result.UnprocessableEntity("The input could not be decided because the grammar is left-recursive", "%s", err.Error())
		}
		return result.InternalServerError("could not run query: %s", err.Error())
	}

	resp := queryToModel(q)
	return result.Created(grammarURI(q.GrammarID)+"/queries", resp, "grammar %s: %q -> %t", id, q.Input, q.Result)
}

// HTTPGetQueries returns a HandlerFunc that retrieves the query history of a
// stored grammar.
func (api API) HTTPGetQueries() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epGetQueries)
}

// GET /grammars/{id}/queries: get query history.
func (api API) epGetQueries(req *http.Request) result.Result {
	id := requireIDParam(req)

	qs, err := api.Backend.GetQueries(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get queries: %s", err.Error())
	}

	resp := make([]QueryModel, len(qs))
	for i := range qs {
		resp[i] = queryToModel(qs[i])
	}

	return result.OK(resp, "got %d queries of grammar %s", len(qs), id)
}
