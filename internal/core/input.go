package core

// Action is a semantic input, decoupled from the key that produced it.
type Action int

const (
	ActionNone    Action = iota
	ActionLeft           // A, Left arrow - move the held ball left
	ActionRight          // D, Right arrow - move the held ball right
	ActionDrop           // Space, Down - release the held ball
	ActionConfirm        // Enter - next level after a win
	ActionBack           // B, Esc - back to the menu
	ActionRestart        // R - restart the session
	ActionQuit           // Q, Ctrl+C
	ActionPause          // P - pause or resume
)

var actionNames = map[Action]string{
	ActionNone:    "None",
	ActionLeft:    "Left",
	ActionRight:   "Right",
	ActionDrop:    "Drop",
	ActionConfirm: "Confirm",
	ActionBack:    "Back",
	ActionRestart: "Restart",
	ActionQuit:    "Quit",
	ActionPause:   "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame collects the actions triggered during one tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}
