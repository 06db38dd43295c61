// Package server provides the cfgnorm HTTP REST server. It normalizes grammars
// submitted to it, keeps them, and answers membership queries against them.
//
// The API, mounted under /api/v1:
//
//	POST   /grammars               - read, normalize and store a grammar
//	GET    /grammars               - get every stored grammar
//	GET    /grammars/{id}          - get a stored grammar
//	DELETE /grammars/{id}          - delete a grammar and its query history
//	POST   /grammars/{id}/queries  - test an input string against a grammar
//	GET    /grammars/{id}/queries  - get the query history of a grammar
//	GET    /info                   - get version info on the server
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/cfgnorm/server/api"
	"github.com/dekarrin/cfgnorm/server/dao"
	"github.com/dekarrin/cfgnorm/server/normsvc"
)

// Server is an HTTP REST server that normalizes grammars and answers queries
// on them. The zero-value of a Server should not be used directly; call New()
// to get one ready for use.
type Server struct {
	router chi.Router
	db     dao.Store
}

// New creates a new Server from cfg. Unset values in cfg take their defaults.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}

	svc, err := normsvc.New(db, normsvc.Options{
		MaxSteps:         cfg.MaxSteps,
		NormalizeUnicode: !cfg.RawUnicode,
		CacheSize:        cfg.CacheSize,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	a := api.API{
		Backend:  svc,
		ErrDelay: cfg.ErrDelay(),
	}

	return &Server{
		router: newRouter(a),
		db:     db,
	}, nil
}

// ServeHTTP routes a request to the API.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost". If
// port is less than 1, it will default to 8080.
func (s *Server) ServeForever(address string, port int) {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  Listening on %s", listenAddress)
	log.Fatalf("FATAL %v", http.ListenAndServe(listenAddress, s))
}

// Close releases the server's persistence store.
func (s *Server) Close() error {
	return s.db.Close()
}
