// Package handlog parses raw hand-history records into structured hands.
package handlog

// ActionVerb is the canonical verb for one player decision.
type ActionVerb string

const (
	Fold  ActionVerb = "FOLD"
	Call  ActionVerb = "CALL"
	Check ActionVerb = "CHECK"
	Bet   ActionVerb = "BET"
	Raise ActionVerb = "RAISE"
	AllIn ActionVerb = "ALLIN"
)

// verbWords maps the vendor dialect's action words to canonical verbs.
// Multi-character words are matched before shorter ones during scanning.
var verbWords = []struct {
	word string
	verb ActionVerb
}{
	{"bets", Bet},
	{"raises", Raise},
	{"checks", Check},
	{"folds", Fold},
	{"calls", Call},
	{"allin", AllIn},
	{"caps", Raise},
}

// Action is one player decision within a street. Amount is the wagered
// amount in table currency; HasAmount distinguishes a genuine zero wager
// from a verb that carries no amount.
type Action struct {
	Player    string
	Verb      ActionVerb
	Amount    float64
	HasAmount bool
}

// StreetTag identifies one of the four betting rounds.
type StreetTag string

const (
	PreFlop   StreetTag = "pre-flop"
	PostFlop  StreetTag = "post-flop"
	PostTurn  StreetTag = "post-turn"
	PostRiver StreetTag = "post-river"
)

// StreetOrder is the fixed replay order of the four betting rounds.
var StreetOrder = [4]StreetTag{PreFlop, PostFlop, PostTurn, PostRiver}

// Street is one betting round: the cards revealed entering it and the
// ordered actions taken during it.
type Street struct {
	Tag     StreetTag
	Cards   []string
	Actions []Action
}

// SeatedPlayer is one seat/name/stack triple from the seating section.
type SeatedPlayer struct {
	Name  string
	Seat  int
	Stack float64
}

// PlayerSummary is one player's line from the end-of-hand summary section.
type PlayerSummary struct {
	Player    string
	Bets      float64
	Collects  float64
	ShownCard string
}

// Hand is the canonical structured representation of one dealt hand.
// It is built once by ParseHand and never mutated afterwards.
type Hand struct {
	Date       string
	GameID     string
	Variant    string
	TableName  string
	GameType   string
	ButtonSeat int

	Players []SeatedPlayer

	SmallBlindPlayer string
	SmallBlind       float64
	BigBlindPlayer   string
	BigBlind         float64

	// TrackedPlayer is the player whose hole cards the record reveals.
	TrackedPlayer string
	HoleCards     []string

	Streets [4]Street

	Summaries       []PlayerSummary
	FinishingStacks []float64

	Pot  float64
	Rake float64
	Fee  float64
}

// Player returns the seated player with the given name, if present.
func (h *Hand) Player(name string) (SeatedPlayer, bool) {
	for _, p := range h.Players {
		if p.Name == name {
			return p, true
		}
	}
	return SeatedPlayer{}, false
}

// playerIndex returns the seating-list index for a name, or -1.
func (h *Hand) playerIndex(name string) int {
	for i, p := range h.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Street returns the street with the given tag.
func (h *Hand) Street(tag StreetTag) *Street {
	for i := range h.Streets {
		if h.Streets[i].Tag == tag {
			return &h.Streets[i]
		}
	}
	return nil
}
