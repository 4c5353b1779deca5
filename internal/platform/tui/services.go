package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bloom/internal/registry"
	"github.com/vovakirdan/bloom/internal/storage"
)

// NewServices wires the score database into the collaborators every game
// receives. A nil store leaves the games on their in-memory defaults.
func NewServices(store *storage.Store, logger *log.Logger) registry.Services {
	svc := registry.Services{Logger: logger}
	if store == nil {
		return svc
	}

	svc.Scores = store
	svc.Results = store
	svc.Achievements = storage.NewAchievementLog(store, logger)

	skins, err := store.LoadSkins()
	if err != nil {
		if logger != nil {
			logger.Warn("cannot load equipped skins, using defaults", "error", err)
		}
		return svc
	}
	svc.Skins = skins
	return svc
}
