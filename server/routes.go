package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/cfgnorm/server/api"
	"github.com/dekarrin/cfgnorm/server/result"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/grammars", newGrammarsRouter(a))
	r.Mount("/info", newInfoRouter(a))

	r.NotFound(a.Handle(func(req *http.Request) result.Result {
		return result.NotFound("no route for %s", req.URL.Path)
	}))
	r.MethodNotAllowed(a.Handle(func(req *http.Request) result.Result {
		return result.MethodNotAllowed(req)
	}))

	return r
}

func newGrammarsRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllGrammars())
	r.Post("/", a.HTTPCreateGrammar())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetGrammar())
		r.Delete("/", a.HTTPDeleteGrammar())

		r.Get("/queries", a.HTTPGetQueries())
		r.Post("/queries", a.HTTPCreateQuery())
		r.HandleFunc("/queries/", RedirectNoTrailingSlash)
	})

	return r
}

func newInfoRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w)
}
