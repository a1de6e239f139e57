package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pacjudge/registry"
	"pacjudge/scoreboard"
	"pacjudge/wire"
)

const unauthorizedResponse = wire.ResponseUnauthorized

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wireSubmitResult(resp wire.SubmitResponse, id int) wire.SubmitResult {
	out := wire.SubmitResult{Response: resp}
	if resp == wire.ResponseOK {
		out.ID = id
	}
	return out
}

func submitResultFor(result registry.SubmitResult) wire.SubmitResponse {
	switch result {
	case registry.ResultLevelClosed:
		return wire.ResponseLevelClosed
	case registry.ResultRateLimitExceeded:
		return wire.ResponseRateLimitExceeded
	default:
		return wire.ResponseOK
	}
}

// handleSubmit evaluates a contestant's program against the current
// level and records the outcome.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, user string) {
	var req wire.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	program, err := wire.ToKernelProgram(req.Program)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, id, err := s.handle.Get().SubmitProgram(user, program, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, wireSubmitResult(submitResultFor(result), id))
}

// handleScores returns every ranked projection of both the current-level
// and global scoreboards.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	level, global := s.handle.Get().GetScores()

	boards := wire.Scoreboards{
		Scoreboards: []wire.Scoreboard{
			rankedBoard("level:time", level, scoreboard.PenaltyTime),
			rankedBoard("level:size", level, scoreboard.PenaltySize),
			rankedBoard("level:speed", level, scoreboard.PenaltySpeed),
			rankedBoard("global:time", global, scoreboard.PenaltyTime),
			rankedBoard("global:size", global, scoreboard.PenaltySize),
			rankedBoard("global:speed", global, scoreboard.PenaltySpeed),
		},
	}
	writeJSON(w, http.StatusOK, boards)
}

func rankedBoard(title string, board *scoreboard.Scoreboard, projection scoreboard.Penalty) wire.Scoreboard {
	ranked := board.Rank(projection)
	entries := make([]wire.ScoreEntry, len(ranked))
	for i, e := range ranked {
		entries[i] = wire.ScoreEntry{User: e.User, Solved: int(e.Solved), TieBreaker: e.TieBreaker}
	}
	return wire.Scoreboard{Title: title, Entries: entries}
}

// handleSubmissions lists every submission made against the current
// level, in id order.
func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	all := s.handle.Get().AllSubmissions()
	out := make([]wire.SubmissionDetails, len(all))
	for i, sub := range all {
		out[i] = wire.FromKernelSubmissionDetails(sub.Details)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSubmissionByID returns one submission's full step-by-step
// evaluation record.
func (s *Server) handleSubmissionByID(w http.ResponseWriter, r *http.Request) {
	_, sub, ok := s.lookupSubmission(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wire.FromKernelSubmissionDetails(sub.Details))
}

func (s *Server) lookupSubmission(w http.ResponseWriter, r *http.Request) (int, registry.UserSubmission, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return 0, registry.UserSubmission{}, false
	}
	sub, ok := s.handle.Get().SubmissionDetails(id)
	if !ok {
		http.Error(w, "submission not found", http.StatusNotFound)
		return 0, registry.UserSubmission{}, false
	}
	return id, sub, true
}

// handleAdminSetLevel installs a new level, folding the outgoing level's
// scores into the global board and dumping it to disk.
func (s *Server) handleAdminSetLevel(w http.ResponseWriter, r *http.Request) {
	var req wire.AdminSetLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	level, err := wire.ToKernelLevel(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	if err := s.handle.Get().SetLevel(&level, now); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dumpScoreboard(now)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminSetLevelClosed toggles whether the current level accepts
// new submissions.
func (s *Server) handleAdminSetLevelClosed(w http.ResponseWriter, r *http.Request) {
	var req wire.AdminSetLevelClosedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	s.handle.Get().SetLevelClosed(req.Closed)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminRateLimit creates or reconfigures one user's rate limiter.
func (s *Server) handleAdminRateLimit(w http.ResponseWriter, r *http.Request) {
	var req wire.AdminRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	window, err := time.ParseDuration(req.Window)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid window %q: %v", req.Window, err), http.StatusBadRequest)
		return
	}

	rl := registry.RateLimit{Count: req.Count, Window: window}
	if err := s.handle.Get().RateLimitUser(req.User, rl); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReplay upgrades the request to a websocket and paces the
// submission's recorded steps to the client.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	_, sub, ok := s.lookupSubmission(w, r)
	if !ok {
		return
	}

	details := wire.FromKernelSubmissionDetails(sub.Details)
	client, err := newReplayClient(w, r, details.Steps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := client.Run(context.Background()); err != nil {
		// The connection is already gone; logging would just be noise on
		// every normal client-initiated disconnect.
		return
	}
}
