package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cfgnorm/internal/cfgerrors"
	"github.com/dekarrin/cfgnorm/server/result"
	"github.com/dekarrin/cfgnorm/server/serr"
)

// HTTPCreateGrammar returns a HandlerFunc that reads and normalizes a grammar
// and stores it. Submitting rules that read the same as a stored grammar gives
// that grammar back with an HTTP-200 instead of an HTTP-201.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epCreateGrammar)
}

// POST /grammars: normalize and store a grammar.
func (api API) epCreateGrammar(req *http.Request) result.Result {
	var body GrammarRequest
	err := parseJSON(req, &body)
	if err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}
	if body.Source == nil {
		return result.BadRequest("source: property is missing from request", "missing source")
	}

	g, res, created, err := api.Backend.CreateGrammar(req.Context(), *body.Source)
	if err != nil {
		if errors.Is(err, cfgerrors.ErrMalformedInput) {
			return result.BadRequest(cfgerrors.UserMessage(err), "malformed grammar: %s", err.Error())
		}
		return result.InternalServerError("could not create grammar: %s", err.Error())
	}

	resp := grammarToModel(g)
	resp.Stages = stagesToModel(res)

	if !created {
		return result.OK(resp, "grammar %s already exists", g.ID)
	}
	return result.Created(resp.URI, resp, "created grammar %s", g.ID)
}

// HTTPGetAllGrammars returns a HandlerFunc that retrieves every stored grammar.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epGetAllGrammars)
}

// GET /grammars: get all grammars.
func (api API) epGetAllGrammars(req *http.Request) result.Result {
	all, err := api.Backend.GetAllGrammars(req.Context())
	if err != nil {
		return result.InternalServerError("%s", err.Error())
	}

	resp := make([]GrammarModel, len(all))
	for i := range all {
		resp[i] = grammarToModel(all[i])
	}

	return result.OK(resp, "got all grammars")
}

// HTTPGetGrammar returns a HandlerFunc that retrieves one stored grammar.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epGetGrammar)
}

// GET /grammars/{id}: get a grammar.
func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, err := api.Backend.GetGrammar(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get grammar: %s", err.Error())
	}

	return result.OK(grammarToModel(g), "got grammar %s", id)
}

// HTTPDeleteGrammar returns a HandlerFunc that removes a stored grammar and its
// query history.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return httpEndpoint(api.ErrDelay, api.epDeleteGrammar)
}

// DELETE /grammars/{id}: delete a grammar.
func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	_, err := api.Backend.DeleteGrammar(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete grammar: %s", err.Error())
	}

	return result.NoContent("deleted grammar %s", id)
}
