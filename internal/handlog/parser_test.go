package handlog

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceHand = `Game started at: 2016/11/29 15:22:4
Game ID: 787026454 0.50/1 (PRR) Kraken - 10 (Hold'em)
Seat 3 is the button
Seat 1: AironVega (101).
Seat 2: aleks0v (100.23).
Seat 3: ElvenEyes (205.91).
Seat 4: IlxxxlI (40).
Seat 5: WeakAndWeary (100).
Seat 6: Sephiroth1 (101.50).
Player IlxxxlI has small blind (0.50)
Player WeakAndWeary has big blind (1)
Player IlxxxlI received card: [7s]
Player IlxxxlI received card: [Kh]
Player WeakAndWeary received a card.
Player WeakAndWeary received a card.
Player Sephiroth1 received a card.
Player Sephiroth1 received a card.
Player AironVega received a card.
Player AironVega received a card.
Player aleks0v received a card.
Player aleks0v received a card.
Player ElvenEyes received a card.
Player ElvenEyes received a card.
Player Sephiroth1 folds
Player AironVega folds
Player aleks0v folds
Player ElvenEyes folds
Player IlxxxlI calls (0.50)
Player WeakAndWeary checks
*** FLOP ***: [Qh 2s 4s]
Player IlxxxlI bets (1.26)
Player WeakAndWeary calls (1.26)
*** TURN ***: [Qh 2s 4s] [Qd]
Player IlxxxlI checks
Player WeakAndWeary checks
*** RIVER ***: [Qh 2s 4s Qd] [5c]
Player IlxxxlI checks
Player WeakAndWeary bets (2.15)
Player IlxxxlI folds
Uncalled bet (2.15) returned to WeakAndWeary
Player WeakAndWeary mucks cards
------ Summary ------
Pot: 4.30. Rake 0.16. JP fee 0.06
Board: [Qh 2s 4s Qd 5c]
Player AironVega does not show cards.Bets: 0. Collects: 0. Wins: 0.
Player aleks0v does not show cards.Bets: 0. Collects: 0. Wins: 0.
Player ElvenEyes does not show cards.Bets: 0. Collects: 0. Wins: 0.
Player IlxxxlI does not show cards.Bets: 2.26. Collects: 0. Loses: 2.26.
*Player WeakAndWeary mucks (does not show cards). Bets: 2.26. Collects: 4.30. Wins: 2.04.
Player Sephiroth1 does not show cards.Bets: 0. Collects: 0. Wins: 0.
Game ended at: 2016/11/29 15:23:33`

func recordFromString(s string) Record {
	return Record{Lines: strings.Split(s, "\n"), Start: 1}
}

func parseReference(t *testing.T) *Hand {
	t.Helper()
	hand, err := ParseHand(recordFromString(referenceHand), "IlxxxlI")
	require.NoError(t, err)
	return hand
}

func TestParseHandHeader(t *testing.T) {
	hand := parseReference(t)

	assert.Equal(t, "2016/11/29 15:22:4", hand.Date)
	assert.Equal(t, "787026454", hand.GameID)
	assert.Equal(t, "PRR", hand.Variant)
	assert.Equal(t, "Kraken-10", hand.TableName)
	assert.Equal(t, "Hold'em", hand.GameType)
	assert.Equal(t, 3, hand.ButtonSeat)
}

func TestParseHandSeating(t *testing.T) {
	hand := parseReference(t)

	require.Len(t, hand.Players, 6)
	assert.Equal(t, SeatedPlayer{Name: "AironVega", Seat: 1, Stack: 101}, hand.Players[0])
	assert.Equal(t, SeatedPlayer{Name: "IlxxxlI", Seat: 4, Stack: 40}, hand.Players[3])
	assert.Equal(t, SeatedPlayer{Name: "Sephiroth1", Seat: 6, Stack: 101.50}, hand.Players[5])
}

func TestParseHandBlindsAndHoleCards(t *testing.T) {
	hand := parseReference(t)

	assert.Equal(t, "IlxxxlI", hand.SmallBlindPlayer)
	assert.Equal(t, 0.5, hand.SmallBlind)
	assert.Equal(t, "WeakAndWeary", hand.BigBlindPlayer)
	assert.Equal(t, 1.0, hand.BigBlind)
	assert.Equal(t, []string{"7s", "Kh"}, hand.HoleCards)
}

func TestParseHandActions(t *testing.T) {
	hand := parseReference(t)

	pre := hand.Street(PreFlop)
	require.Len(t, pre.Actions, 6)
	assert.Equal(t, Action{Player: "Sephiroth1", Verb: Fold}, pre.Actions[0])
	assert.Equal(t, Action{Player: "IlxxxlI", Verb: Call, Amount: 0.5, HasAmount: true}, pre.Actions[4])
	assert.Equal(t, Action{Player: "WeakAndWeary", Verb: Check}, pre.Actions[5])

	flop := hand.Street(PostFlop)
	assert.Equal(t, []string{"Qh", "2s", "4s"}, flop.Cards)
	require.Len(t, flop.Actions, 2)
	assert.Equal(t, Action{Player: "IlxxxlI", Verb: Bet, Amount: 1.26, HasAmount: true}, flop.Actions[0])

	turn := hand.Street(PostTurn)
	assert.Equal(t, []string{"Qd"}, turn.Cards)
	require.Len(t, turn.Actions, 2)

	river := hand.Street(PostRiver)
	assert.Equal(t, []string{"5c"}, river.Cards)
	require.Len(t, river.Actions, 3)
	assert.Equal(t, Action{Player: "IlxxxlI", Verb: Fold}, river.Actions[2])
}

func TestParseHandFinishingStacks(t *testing.T) {
	hand := parseReference(t)

	require.Len(t, hand.FinishingStacks, 6)
	assert.InDelta(t, 37.74, hand.FinishingStacks[3], 1e-9)
	assert.InDelta(t, 102.04, hand.FinishingStacks[4], 1e-9)
	assert.InDelta(t, 101.0, hand.FinishingStacks[0], 1e-9)

	assert.InDelta(t, 4.30, hand.Pot, 1e-9)
	assert.InDelta(t, 0.16, hand.Rake, 1e-9)
	assert.InDelta(t, 0.06, hand.Fee, 1e-9)
}

func TestStackConservation(t *testing.T) {
	hand := parseReference(t)
	require.NoError(t, ValidateConservation(hand, 1e-6))
}

func TestParseHandExcludesWaitingPlayers(t *testing.T) {
	raw := strings.Replace(referenceHand,
		"Player IlxxxlI has small blind (0.50)",
		"Player Sephiroth1 wait BB\nPlayer IlxxxlI has small blind (0.50)", 1)

	hand, err := ParseHand(recordFromString(raw), "IlxxxlI")
	require.NoError(t, err)

	require.Len(t, hand.Players, 5)
	_, seated := hand.Player("Sephiroth1")
	assert.False(t, seated)
	// every line mentioning the excluded player is dropped, including
	// their preflop fold
	require.Len(t, hand.Street(PreFlop).Actions, 5)
	assert.Equal(t, "AironVega", hand.Street(PreFlop).Actions[0].Player)
}

func TestParseHandUnknownVerb(t *testing.T) {
	raw := strings.Replace(referenceHand,
		"Player WeakAndWeary checks",
		"Player WeakAndWeary shoves (12)", 1)

	_, err := ParseHand(recordFromString(raw), "IlxxxlI")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, sectionActions, perr.Section)
	assert.Contains(t, perr.Reason, "unknown action verb")
	assert.Equal(t, "Player WeakAndWeary shoves (12)", perr.Text)
}

func TestParseHandMalformedSeating(t *testing.T) {
	raw := strings.Replace(referenceHand,
		"Seat 4: IlxxxlI (40).",
		"Seat 4: IlxxxlI", 1)

	_, err := ParseHand(recordFromString(raw), "IlxxxlI")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, sectionSeating, perr.Section)
	assert.Equal(t, 7, perr.Line)
}

func TestSplitRecords(t *testing.T) {
	log := referenceHand + "\n\n\n\n" + referenceHand
	records, err := SplitRecords(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Start)
	assert.Contains(t, records[1].Lines[0], RecordStartMarker)
}

func TestParseAllContinuesPastFailures(t *testing.T) {
	broken := strings.Replace(referenceHand, "Game ID: ", "Game: ", 1)
	records := []Record{recordFromString(referenceHand), recordFromString(broken)}

	res := ParseAll(zerolog.Nop(), records, "IlxxxlI")
	assert.Equal(t, 1, res.Parsed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Hands, 1)
	require.Len(t, res.Failures, 1)
}

func TestNormalizeCard(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10h", "Th"},
		{"10H", "Th"},
		{"ah", "Ah"},
		{"As", "As"},
		{"7s", "7s"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCard(tt.in); got != tt.want {
			t.Fatalf("NormalizeCard(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
