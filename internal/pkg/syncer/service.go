package syncer

import (
	"sync"

	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/database"
	"github.com/pairsell/pairsell/internal/pkg/quota"
	"github.com/pairsell/pairsell/internal/pkg/reccache"
	"github.com/pairsell/pairsell/internal/pkg/recommend"
)

var (
	defaultOrchestrator *Orchestrator
	setupOnce           sync.Once
)

// Setup wires the process-wide orchestrator from the global database, cache
// and environment-configured generator. Called once from main after the
// database and cache are up.
func Setup() {
	setupOnce.Do(func() {
		db := database.GetDB()
		defaultOrchestrator = NewOrchestrator(
			db,
			repository.GetGlobalRepositories(),
			quota.NewLedger(db),
			recommend.NewDefaultGenerator(),
			reccache.Default(),
		)
	})
}

// Default returns the process-wide orchestrator instance.
func Default() *Orchestrator {
	if defaultOrchestrator == nil {
		Setup()
	}
	return defaultOrchestrator
}
