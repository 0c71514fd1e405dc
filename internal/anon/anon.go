// Package anon assigns seat-relative anonymous labels to the players of
// a hand. Labels are P1..Pn in seat order starting from the tracked
// player's seat and wrapping around the table, so the tracked player is
// always P1 and the button and blind roles stay recoverable from a
// stable relative offset.
package anon

import (
	"fmt"

	"github.com/handcoach/handcoach/internal/handlog"
)

// Labels holds the two independently keyed anonymization maps. Both are
// a pure function of the hand's seating list; excluded players never
// appear because the parser drops them before the hand is built.
type Labels struct {
	ByName map[string]string
	BySeat map[int]string
}

// Assign computes the label maps for a hand. It is deterministic: the
// same seating list always yields the same maps.
func Assign(h *handlog.Hand) (Labels, error) {
	labels := Labels{
		ByName: make(map[string]string, len(h.Players)),
		BySeat: make(map[int]string, len(h.Players)),
	}

	start := -1
	for i, p := range h.Players {
		if p.Name == h.TrackedPlayer {
			start = i
			break
		}
	}
	if start < 0 {
		return Labels{}, fmt.Errorf("anon: tracked player %s is not seated", h.TrackedPlayer)
	}

	n := len(h.Players)
	for offset := 0; offset < n; offset++ {
		p := h.Players[(start+offset)%n]
		label := fmt.Sprintf("P%d", offset+1)
		labels.ByName[p.Name] = label
		labels.BySeat[p.Seat] = label
	}
	return labels, nil
}

// Tracked returns the tracked player's label. It is constant by
// construction but kept behind an accessor so callers never hard-code
// the offset.
func (l Labels) Tracked() string {
	return "P1"
}
