// Pacjudge is a single-binary judge server for a Pac-Man-style
// programming contest: contestants submit finite-state-machine
// programs, the kernel evaluates them tick by tick against the
// currently installed level, and results feed a per-level and global
// scoreboard served over HTTP.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"pacjudge/config"
	"pacjudge/httpapi"
	"pacjudge/persistence"
	"pacjudge/registry"
)

var configPath = flag.String("config", "./config.yaml", "path to the judge's YAML config file")

func init() {
	log.SetPrefix("pacjudge: ")
	log.SetFlags(log.Lshortfile)
}

func runApp() error {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	handle := registry.NewHandle(registry.Config{
		MaxSteps: cfg.MaxSteps,
		DefaultRateLimit: registry.RateLimit{
			Count:  cfg.RateLimit.Count,
			Window: time.Duration(cfg.RateLimit.Window),
		},
	})

	loadScoreboardDump(cfg.ScoreboardDumpPath, handle)

	srv, err := httpapi.NewServer(cfg, handle)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}

// loadScoreboardDump reloads a previously dumped global scoreboard, if
// one is configured and present. A missing file is not an error — the
// judge may simply be starting fresh — but a malformed one is fatal,
// recoverable only by operator intervention (point at a different file
// or remove the bad one and restart).
func loadScoreboardDump(path string, handle *registry.Handle) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("no scoreboard dump at %s, starting fresh", path)
		return
	}

	board, err := persistence.Load(path)
	if err != nil {
		log.Fatalf("loading scoreboard dump %s: %v", path, err)
	}
	handle.Get().RestoreGlobalScoreboard(board)
	log.Printf("loaded scoreboard dump from %s", path)
}

func main() {
	if err := runApp(); err != nil {
		log.Fatal(err)
	}
}
