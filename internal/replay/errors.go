package replay

import "fmt"

// StopTurnError reports a requested stop turn beyond the tracked
// player's total decisions in the hand. Surfacing this explicitly keeps
// callers from training on a truncated or garbled stream.
type StopTurnError struct {
	StopTurn  int
	Decisions int
}

func (e *StopTurnError) Error() string {
	return fmt.Sprintf("replay: stop turn %d out of range: tracked player acts %d times", e.StopTurn, e.Decisions)
}
