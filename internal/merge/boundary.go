package merge

// Boundary is the overflow rule for the sensor line at the top of the
// container. The sensor exerts no force; it only reports contacts.
type Boundary struct{}

// Triggers reports whether a ball touching the sensor ends the game. Only a
// settled ball that is moving upward counts: a ball still dropping
// legitimately crosses the line on its way down.
func (Boundary) Triggers(b *Ball) bool {
	return b.Live() && !b.Held && !b.Dropping && b.Vel.Y > 0
}
