// Package replay walks a parsed hand street by street, maintaining
// running stacks and pot in big-blind units, and emits the textual token
// stream consumed by the tokenizer. Serialization has two modes: a full
// replay of the whole hand, and a truncated replay that stops once the
// tracked player has acted a given number of times, yielding the next
// decision as a separate label. The same walk produces both, which is
// what lets one function generate replay output and "predict the Nth
// decision" supervised examples.
package replay

import (
	"fmt"
	"strings"

	"github.com/handcoach/handcoach/internal/anon"
	"github.com/handcoach/handcoach/internal/handlog"
)

// TokenStream is the serialized textual encoding of a (partial) hand.
// Label is set only when the stream was truncated at a stop turn; it
// holds the action the model is asked to predict.
type TokenStream struct {
	Body  string
	Label string
}

// Decisions counts the tracked player's actions across all streets.
// Valid stop turns for the hand are 0 through Decisions-1.
func Decisions(h *handlog.Hand) int {
	count := 0
	for _, street := range h.Streets {
		for _, a := range street.Actions {
			if a.Player == h.TrackedPlayer {
				count++
			}
		}
	}
	return count
}

// Serialize replays the whole hand and emits its token stream with no
// label.
func Serialize(h *handlog.Hand, labels anon.Labels) (*TokenStream, error) {
	return serialize(h, labels, -1)
}

// SerializeExample truncates the replay once the tracked player has
// acted stopTurn times: the body then ends with the tracked player's
// label and a colon, and the following decision (verb plus amount, if
// any) is returned as the stream's label instead of being appended.
func SerializeExample(h *handlog.Hand, labels anon.Labels, stopTurn int) (*TokenStream, error) {
	if stopTurn < 0 {
		return nil, fmt.Errorf("replay: negative stop turn %d", stopTurn)
	}
	if total := Decisions(h); stopTurn >= total {
		return nil, &StopTurnError{StopTurn: stopTurn, Decisions: total}
	}
	return serialize(h, labels, stopTurn)
}

// serialize carries per-player remaining stacks, the running pot, the
// set of players still in the hand and the board revealed so far.
// Blinds are posted before the first street: 0.5 BB from the small
// blind, 1 BB from the big blind, for a starting pot of 1.5 BB.
func serialize(h *handlog.Hand, labels anon.Labels, stopAt int) (*TokenStream, error) {
	if h.BigBlind <= 0 {
		return nil, fmt.Errorf("replay: hand has no big blind amount")
	}

	r := &replayState{
		hand:   h,
		labels: labels,
		stopAt: stopAt,
		stacks: make(map[string]float64, len(h.Players)),
		active: make(map[string]bool, len(h.Players)),
	}
	for _, p := range h.Players {
		r.stacks[p.Name] = p.Stack
		r.active[p.Name] = true
	}

	// Post the blinds.
	r.stacks[h.SmallBlindPlayer] -= 0.5 * h.BigBlind
	r.stacks[h.BigBlindPlayer] -= h.BigBlind
	r.pot = 1.5 * h.BigBlind

	r.writeTableConfiguration()
	for _, street := range h.Streets {
		r.writeStacks()
		r.writeStreetHeader(street)
		if done := r.replayActions(street); done {
			return &TokenStream{Body: r.out.String(), Label: r.label}, nil
		}
	}
	return &TokenStream{Body: r.out.String()}, nil
}

type replayState struct {
	hand   *handlog.Hand
	labels anon.Labels
	stopAt int // -1 for a full replay

	out    strings.Builder
	stacks map[string]float64
	active map[string]bool
	pot    float64
	board  []string
	turn   int
	label  string
}

func (r *replayState) writeTableConfiguration() {
	fmt.Fprintf(&r.out, "[TABLE_CONFIGURATION]\n")
	fmt.Fprintf(&r.out, "BTN=%s\n", r.labels.BySeat[r.hand.ButtonSeat])
	fmt.Fprintf(&r.out, "SB=%s 0.5BB\n", r.labels.ByName[r.hand.SmallBlindPlayer])
	fmt.Fprintf(&r.out, "BB=%s 1BB\n", r.labels.ByName[r.hand.BigBlindPlayer])
}

// writeStacks emits one line per still-active player in label order,
// with the tracked player's hole cards appended to their own line, then
// the running pot. All amounts are big-blind normalized.
func (r *replayState) writeStacks() {
	r.out.WriteString("\n[STACKS]\n")
	for _, p := range r.labelOrder() {
		if !r.active[p.Name] {
			continue
		}
		fmt.Fprintf(&r.out, "%s: %.1fBB", r.labels.ByName[p.Name], r.stacks[p.Name]/r.hand.BigBlind)
		if p.Name == r.hand.TrackedPlayer {
			fmt.Fprintf(&r.out, " [%s]", strings.Join(r.hand.HoleCards, " "))
		}
		r.out.WriteByte('\n')
	}
	fmt.Fprintf(&r.out, "POT=%.1fBB\n", r.pot/r.hand.BigBlind)
}

var streetHeaders = map[handlog.StreetTag]string{
	handlog.PreFlop:   "[PREFLOP]",
	handlog.PostFlop:  "[FLOP]",
	handlog.PostTurn:  "[TURN]",
	handlog.PostRiver: "[RIVER]",
}

func (r *replayState) writeStreetHeader(street handlog.Street) {
	r.board = append(r.board, street.Cards...)
	r.out.WriteByte('\n')
	r.out.WriteString(streetHeaders[street.Tag])
	if len(r.board) > 0 {
		fmt.Fprintf(&r.out, "[%s]", strings.Join(r.board, " "))
	}
	r.out.WriteByte('\n')
}

// replayActions applies one street's actions in original order. It
// returns true when the stop turn was reached and the stream is
// complete.
func (r *replayState) replayActions(street handlog.Street) bool {
	for _, a := range street.Actions {
		switch a.Verb {
		case handlog.Call, handlog.Bet, handlog.Raise:
			r.stacks[a.Player] -= a.Amount
			r.pot += a.Amount
		case handlog.AllIn:
			r.pot += r.stacks[a.Player]
			r.stacks[a.Player] = 0
		case handlog.Fold:
			delete(r.active, a.Player)
		case handlog.Check:
			// no numeric effect
		}

		if a.Player == r.hand.TrackedPlayer {
			if r.turn == r.stopAt {
				fmt.Fprintf(&r.out, "%s: ", r.labels.ByName[a.Player])
				r.label = r.formatAction(a)
				return true
			}
			r.turn++
		}
		fmt.Fprintf(&r.out, "%s: %s\n", r.labels.ByName[a.Player], r.formatAction(a))
	}
	return false
}

// formatAction renders a verb with its wagered amount truncated to
// whole big blinds. Sub-blind wagers collapse to 0BB.
func (r *replayState) formatAction(a handlog.Action) string {
	if !a.HasAmount || a.Amount == 0 {
		return string(a.Verb)
	}
	return fmt.Sprintf("%s %dBB", a.Verb, int(a.Amount/r.hand.BigBlind))
}

// labelOrder returns the players rotated so the tracked player comes
// first, matching the anonymizer's label assignment.
func (r *replayState) labelOrder() []handlog.SeatedPlayer {
	players := r.hand.Players
	start := 0
	for i, p := range players {
		if p.Name == r.hand.TrackedPlayer {
			start = i
			break
		}
	}
	ordered := make([]handlog.SeatedPlayer, 0, len(players))
	for offset := 0; offset < len(players); offset++ {
		ordered = append(ordered, players[(start+offset)%len(players)])
	}
	return ordered
}
