package handdoc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handcoach/handcoach/internal/handdoc"
	"github.com/handcoach/handcoach/internal/handlog"
)

func sampleHand() *handlog.Hand {
	h := &handlog.Hand{
		GameID:           "555",
		Date:             "2016/11/29 15:22:4",
		Variant:          "PRR",
		TableName:        "Kraken - 10",
		GameType:         "Hold'em",
		ButtonSeat:       3,
		SmallBlindPlayer: "alice",
		SmallBlind:       0.5,
		BigBlindPlayer:   "bob",
		BigBlind:         1,
		TrackedPlayer:    "alice",
		HoleCards:        []string{"7s", "Kh"},
		Players: []handlog.SeatedPlayer{
			{Name: "alice", Seat: 1, Stack: 40},
			{Name: "bob", Seat: 3, Stack: 100},
		},
		FinishingStacks: []float64{37.74, 102.04},
		Pot:             4.30,
		Rake:            0.16,
		Fee:             0.06,
	}
	for i, tag := range handlog.StreetOrder {
		h.Streets[i].Tag = tag
	}
	h.Street(handlog.PreFlop).Actions = []handlog.Action{
		{Player: "alice", Verb: handlog.Call, Amount: 0.5, HasAmount: true},
		{Player: "bob", Verb: handlog.Check},
	}
	h.Street(handlog.PostFlop).Cards = []string{"Qh", "2s", "4s"}
	h.Street(handlog.PostFlop).Actions = []handlog.Action{
		{Player: "alice", Verb: handlog.Bet, Amount: 1.26, HasAmount: true},
		{Player: "bob", Verb: handlog.Fold},
	}
	h.Street(handlog.PostTurn).Cards = []string{"Qd"}
	return h
}

func TestRoundTrip(t *testing.T) {
	orig := sampleHand()
	doc := handdoc.FromHand(orig)

	data, err := handdoc.EncodeToBytes(doc)
	require.NoError(t, err)

	decoded, err := handdoc.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	rebuilt, err := decoded.Hand()
	require.NoError(t, err)

	assert.Equal(t, orig.GameID, rebuilt.GameID)
	assert.Equal(t, orig.Players, rebuilt.Players)
	assert.Equal(t, orig.HoleCards, rebuilt.HoleCards)
	assert.Equal(t, orig.FinishingStacks, rebuilt.FinishingStacks)
	assert.Equal(t, orig.Streets, rebuilt.Streets)
	assert.Equal(t, orig.Pot, rebuilt.Pot)
}

func TestDocumentActionsReadable(t *testing.T) {
	doc := handdoc.FromHand(sampleHand())
	require.Len(t, doc.Actions, 4)
	assert.Equal(t, "pre-flop alice CALL 0.5", doc.Actions[0])
	assert.Equal(t, "pre-flop bob CHECK", doc.Actions[1])
	assert.Equal(t, "post-flop alice BET 1.26", doc.Actions[2])
	assert.Equal(t, []string{"Qh", "2s", "4s", "Qd"}, doc.Board)
}

func TestHandRejectsMalformedDocument(t *testing.T) {
	doc := handdoc.FromHand(sampleHand())
	doc.Seats = doc.Seats[:1]
	_, err := doc.Hand()
	require.Error(t, err)

	doc = handdoc.FromHand(sampleHand())
	doc.Actions = append(doc.Actions, "nonsense")
	_, err = doc.Hand()
	require.Error(t, err)

	doc = handdoc.FromHand(sampleHand())
	doc.Board = []string{"Qh", "2s"}
	_, err = doc.Hand()
	require.Error(t, err)
}

func TestEncodeNil(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, handdoc.Encode(&buf, nil))
}
