// Package registry implements the Game Registry: the single source of
// mutable judge state (current level, rate limiters, submission
// history, scoreboards) guarded by one exclusive lock.
package registry

import (
	"sync"
	"time"

	"pacjudge/kernel"
	"pacjudge/ratelimit"
	"pacjudge/scoreboard"
)

// SubmitResult classifies the outcome of SubmitProgram before evaluation
// even runs, or confirms that it ran.
type SubmitResult int

const (
	ResultOK SubmitResult = iota
	ResultLevelClosed
	ResultRateLimitExceeded
)

// RateLimit is a (count, window) pair, the unit a rate limiter is
// configured or reconfigured with.
type RateLimit struct {
	Count  int
	Window time.Duration
}

// Config is the subset of GameConfig the registry consults directly.
type Config struct {
	MaxSteps         int
	DefaultRateLimit RateLimit
}

// UserSubmission is one contestant's evaluated attempt, in submission order.
type UserSubmission struct {
	User    string
	Program kernel.Program
	Details kernel.SubmissionDetails
}

// Registry holds every piece of mutable judge state behind a single
// mutex. Every exported method acquires it; none may be called
// reentrantly from inside another Registry method.
type Registry struct {
	mu sync.Mutex

	config Config

	level         *kernel.Level
	isLevelClosed bool
	levelStart    time.Time

	limiters    map[string]*ratelimit.Limiter
	submissions []UserSubmission

	levelScoreboard  *scoreboard.Scoreboard
	globalScoreboard *scoreboard.Scoreboard
}

// New constructs an empty registry with no level installed; SubmitProgram
// will panic on a nil level, so SetLevel must run first.
func New(config Config) *Registry {
	return &Registry{
		config:           config,
		limiters:         make(map[string]*ratelimit.Limiter),
		levelScoreboard:  scoreboard.New(),
		globalScoreboard: scoreboard.New(),
	}
}

// SetLevel merges the outgoing level's scoreboard into the global board,
// then installs the new level with a clean per-level scoreboard, rate
// limiter set, and submission list. now is recorded as the level's
// start time, the zero point for every submission's time penalty.
func (r *Registry) SetLevel(level *kernel.Level, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := level.Validate(); err != nil {
		return err
	}

	r.globalScoreboard.AddLevelScores(r.levelScoreboard)
	r.levelScoreboard = scoreboard.New()
	r.limiters = make(map[string]*ratelimit.Limiter)
	r.submissions = nil
	r.level = level
	r.isLevelClosed = false
	r.levelStart = now
	return nil
}

// SetLevelClosed mutates only the closed flag, leaving everything else
// (scoreboards, submissions, limiters) untouched.
func (r *Registry) SetLevelClosed(closed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isLevelClosed = closed
}

// RateLimitUser creates a user's limiter from (count, window) if none
// exists yet, or reconfigures its window if one does. Window
// reconfiguration preserves the limiter's currently stored entries;
// count cannot be changed on an existing limiter, only at creation.
func (r *Registry) RateLimitUser(user string, rl RateLimit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.limiters[user]
	if !ok {
		lim, err := ratelimit.New(rl.Count, rl.Window)
		if err != nil {
			return err
		}
		r.limiters[user] = lim
		return nil
	}
	existing.SetWindow(rl.Window)
	return nil
}

// limiterFor returns user's limiter, creating one from the configured
// defaults on first submission.
func (r *Registry) limiterFor(user string) (*ratelimit.Limiter, error) {
	if lim, ok := r.limiters[user]; ok {
		return lim, nil
	}
	lim, err := ratelimit.New(r.config.DefaultRateLimit.Count, r.config.DefaultRateLimit.Window)
	if err != nil {
		return nil, err
	}
	r.limiters[user] = lim
	return lim, nil
}

// SubmitProgram runs program against the current level on behalf of
// user, gated by the level-closed flag and the user's rate limiter. The
// returned id is the index of the new entry in the submission list.
func (r *Registry) SubmitProgram(user string, program kernel.Program, now time.Time) (SubmitResult, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isLevelClosed {
		return ResultLevelClosed, -1, nil
	}

	lim, err := r.limiterFor(user)
	if err != nil {
		return ResultOK, -1, err
	}
	if !lim.Submit(now) {
		return ResultRateLimitExceeded, -1, nil
	}

	details := kernel.Evaluate(r.level, program, r.config.MaxSteps)

	if details.Outcome == kernel.Success {
		timePenalty := int64(now.Sub(r.levelStart).Seconds())
		size := uint64(len(program.Rules))
		var speed uint64
		if len(details.Steps) > 0 {
			speed = uint64(len(details.Steps) - 1)
		}
		r.levelScoreboard.AddUserEvaluation(user, timePenalty, size, speed)
	}

	r.submissions = append(r.submissions, UserSubmission{User: user, Program: program, Details: details})
	return ResultOK, len(r.submissions) - 1, nil
}

// RestoreGlobalScoreboard replaces the global scoreboard wholesale, for
// reloading a persisted dump at startup. It must run before any
// submission is accepted against the level current at call time.
func (r *Registry) RestoreGlobalScoreboard(board *scoreboard.Scoreboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalScoreboard = board
}

// GetScores returns the current-level scoreboard and a global view
// computed by merging the level scoreboard into a clone of the global
// board, so the global ranking always reflects in-progress results.
// Both returned boards are snapshots safe to read without the lock.
func (r *Registry) GetScores() (level *scoreboard.Scoreboard, global *scoreboard.Scoreboard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level = r.levelScoreboard.Clone()
	global = r.globalScoreboard.Clone()
	global.AddLevelScores(level)
	return level, global
}

// AllSubmissions returns a copy of the submission list in id order.
func (r *Registry) AllSubmissions() []UserSubmission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]UserSubmission, len(r.submissions))
	copy(out, r.submissions)
	return out
}

// SubmissionDetails returns the submission at id, or false if id is out
// of range.
func (r *Registry) SubmissionDetails(id int) (UserSubmission, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.submissions) {
		return UserSubmission{}, false
	}
	return r.submissions[id], true
}
