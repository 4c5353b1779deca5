// Package registry provides a global registry of playable modes.
// Modes register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/merge"
)

// Game is the interface the platform drives. Games contain pure logic with
// no Bubble Tea dependency; the platform handles input mapping, timing and
// rendering.
type Game interface {
	// ID returns the mode identifier (e.g. "classic", "speed"), used for
	// CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Description is a one-line summary for the menu.
	Description() string

	// LeadersKey is the persistence key of the mode's best score.
	LeadersKey() string

	// Reset starts a fresh session. The RuntimeConfig provides screen
	// dimensions, tick rate and RNG seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns the current summary (score, best, terminal flags).
	State() core.GameState

	// Close releases the session's timers. Later calls are ignored.
	Close()
}

// ResultRecorder keeps the history of finished games.
type ResultRecorder interface {
	SaveScore(modeID string, score int) (int64, error)
}

// Services are the collaborators handed to every new game. Nil fields
// fall back to no-op implementations.
type Services struct {
	Scores       merge.ScoreStore
	Achievements merge.AchievementSink
	Skins        merge.SkinLookup
	Results      ResultRecorder
	Logger       *log.Logger
}

// GameInfo contains metadata about a registered mode.
type GameInfo struct {
	ID          string
	Title       string
	Description string
	LeadersKey  string
}

// Factory creates a new game wired to svc.
type Factory func(svc Services) Game

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]GameInfo)
	mu        sync.RWMutex
)

// Register adds a mode factory to the registry.
// Typically called from an init() function.
// Panics if a mode with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}

	factories[id] = f

	// Read metadata from a throwaway instance
	g := f(Services{})
	infos[id] = GameInfo{
		ID:          id,
		Title:       g.Title(),
		Description: g.Description(),
		LeadersKey:  g.LeadersKey(),
	}
	g.Close()
}

// List returns information about all registered modes, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Info returns the metadata of one mode.
func Info(id string) (GameInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}

// Create instantiates a new game by its ID.
// Returns an error if the ID is not registered.
func Create(id string, svc Services) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown mode %q", id)
	}

	return f(svc), nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
