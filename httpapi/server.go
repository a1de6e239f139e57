// Package httpapi is the judge's HTTP transport: submission intake,
// scoreboard and submission history reads, admin level control, and a
// websocket replay stream, routed with gorilla/mux.
package httpapi

import (
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"pacjudge/config"
	"pacjudge/persistence"
	"pacjudge/registry"
)

// Server wires the Game Registry, configuration, and auth layer into a
// routed HTTP handler.
type Server struct {
	handle  *registry.Handle
	cfg     *config.GameConfig
	auth    *Auth
	router  *mux.Router
	dumpDir string
}

// NewServer constructs a Server and registers every route.
func NewServer(cfg *config.GameConfig, handle *registry.Handle) (*Server, error) {
	auth, err := NewAuth(cfg.UserCredentialsPath, cfg.AdminToken)
	if err != nil {
		return nil, err
	}

	s := &Server{
		handle:  handle,
		cfg:     cfg,
		auth:    auth,
		router:  mux.NewRouter(),
		dumpDir: filepath.Dir(cfg.ScoreboardDumpPath),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/submit", s.requireUser(s.handleSubmit)).Methods(http.MethodPost)
	s.router.HandleFunc("/scores", s.handleScores).Methods(http.MethodGet)
	s.router.HandleFunc("/submissions", s.handleSubmissions).Methods(http.MethodGet)
	s.router.HandleFunc("/submissions/{id}", s.handleSubmissionByID).Methods(http.MethodGet)
	s.router.HandleFunc("/admin/level", s.requireAdmin(s.handleAdminSetLevel)).Methods(http.MethodPost)
	s.router.HandleFunc("/admin/level/closed", s.requireAdmin(s.handleAdminSetLevelClosed)).Methods(http.MethodPost)
	s.router.HandleFunc("/admin/ratelimit", s.requireAdmin(s.handleAdminRateLimit)).Methods(http.MethodPost)
	s.router.HandleFunc("/replay/{id}/ws", s.handleReplay).Methods(http.MethodGet)
}

// ServeHTTP makes Server itself an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe logs the bound address and blocks serving s on
// cfg.ListenAddr, exactly the lifecycle logging the training server does.
func (s *Server) ListenAndServe() error {
	log.Printf("httpapi: listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s)
}

// requireUser resolves the caller's identity from the session cookie
// before delegating; a miss writes an unauthorized SubmitResponse rather
// than a bare 401, since /submit is the only route this guards today.
func (s *Server) requireUser(next func(w http.ResponseWriter, r *http.Request, user string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.auth.Identify(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, wireSubmitResult(unauthorizedResponse, -1))
			return
		}
		next(w, r, user)
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.IsAdmin(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// dumpScoreboard writes the current global scoreboard to disk, logging
// (not failing) the request on error, matching the training server's
// policy of never letting an admin request fail on a persistence hiccup.
func (s *Server) dumpScoreboard(now time.Time) {
	if s.cfg.ScoreboardDumpPath == "" {
		return
	}
	_, global := s.handle.Get().GetScores()
	path, err := persistence.Dump(s.dumpDir, global, now)
	if err != nil {
		log.Printf("httpapi: scoreboard dump failed: %v", err)
		return
	}
	log.Printf("httpapi: scoreboard dumped to %s", path)
}
