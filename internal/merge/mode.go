package merge

// Mode is a way of playing: untimed, or against a countdown.
type Mode struct {
	ID          string
	Title       string
	Description string
	LeadersKey  string // Persistence key for the mode's best score
	Timed       bool
}

var (
	// ModeClassic plays until the stack overflows or the top tier appears.
	ModeClassic = Mode{
		ID:          "classic",
		Title:       "Classic",
		Description: "Drop and merge at your own pace until the stack overflows.",
		LeadersKey:  "highScore",
	}

	// ModeSpeed adds a countdown that combos and chains push back.
	ModeSpeed = Mode{
		ID:          "speed",
		Title:       "Speed Mode",
		Description: "Beat the clock. Combos and chains earn bonus seconds.",
		LeadersKey:  "speedModeHighScore",
		Timed:       true,
	}
)

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{ModeClassic, ModeSpeed}
}

// ModeByID finds a mode by its id.
func ModeByID(id string) (Mode, bool) {
	for _, m := range Modes() {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

