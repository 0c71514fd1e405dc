// Package handdoc encodes parsed hands as flat TOML documents, one per
// hand, for archival and interchange.
package handdoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/handcoach/handcoach/internal/handlog"
)

// Document is the TOML form of one parsed hand. Actions are encoded as
// "<street> <player> <verb> [amount]" strings; player names in this
// dialect never contain spaces.
type Document struct {
	GameID     string `toml:"game_id"`
	Date       string `toml:"date,omitempty"`
	Variant    string `toml:"variant,omitempty"`
	Table      string `toml:"table,omitempty"`
	GameType   string `toml:"game_type,omitempty"`
	ButtonSeat int    `toml:"button_seat"`

	Players         []string  `toml:"players"`
	Seats           []int     `toml:"seats"`
	StartingStacks  []float64 `toml:"starting_stacks"`
	FinishingStacks []float64 `toml:"finishing_stacks,omitempty"`

	SmallBlindPlayer string  `toml:"small_blind_player"`
	SmallBlind       float64 `toml:"small_blind"`
	BigBlindPlayer   string  `toml:"big_blind_player"`
	BigBlind         float64 `toml:"big_blind"`

	Tracked   string   `toml:"tracked"`
	HoleCards []string `toml:"hole_cards"`

	Actions []string `toml:"actions"`
	Board   []string `toml:"board,omitempty"`

	Pot  float64 `toml:"pot"`
	Rake float64 `toml:"rake,omitempty"`
	Fee  float64 `toml:"fee,omitempty"`
}

// FromHand flattens a parsed hand into its document form.
func FromHand(h *handlog.Hand) *Document {
	doc := &Document{
		GameID:           h.GameID,
		Date:             h.Date,
		Variant:          h.Variant,
		Table:            h.TableName,
		GameType:         h.GameType,
		ButtonSeat:       h.ButtonSeat,
		SmallBlindPlayer: h.SmallBlindPlayer,
		SmallBlind:       h.SmallBlind,
		BigBlindPlayer:   h.BigBlindPlayer,
		BigBlind:         h.BigBlind,
		Tracked:          h.TrackedPlayer,
		HoleCards:        h.HoleCards,
		FinishingStacks:  h.FinishingStacks,
		Pot:              h.Pot,
		Rake:             h.Rake,
		Fee:              h.Fee,
	}
	for _, p := range h.Players {
		doc.Players = append(doc.Players, p.Name)
		doc.Seats = append(doc.Seats, p.Seat)
		doc.StartingStacks = append(doc.StartingStacks, p.Stack)
	}
	for _, street := range h.Streets {
		doc.Board = append(doc.Board, street.Cards...)
		for _, act := range street.Actions {
			doc.Actions = append(doc.Actions, formatAction(street.Tag, act))
		}
	}
	return doc
}

// Hand rebuilds the parsed-hand form of the document. Summary lines
// are not carried by the document, so the result has no per-player
// summaries.
func (d *Document) Hand() (*handlog.Hand, error) {
	if len(d.Players) != len(d.Seats) || len(d.Players) != len(d.StartingStacks) {
		return nil, fmt.Errorf("handdoc: players/seats/stacks length mismatch in hand %s", d.GameID)
	}

	h := &handlog.Hand{
		GameID:           d.GameID,
		Date:             d.Date,
		Variant:          d.Variant,
		TableName:        d.Table,
		GameType:         d.GameType,
		ButtonSeat:       d.ButtonSeat,
		SmallBlindPlayer: d.SmallBlindPlayer,
		SmallBlind:       d.SmallBlind,
		BigBlindPlayer:   d.BigBlindPlayer,
		BigBlind:         d.BigBlind,
		TrackedPlayer:    d.Tracked,
		HoleCards:        d.HoleCards,
		FinishingStacks:  d.FinishingStacks,
		Pot:              d.Pot,
		Rake:             d.Rake,
		Fee:              d.Fee,
	}
	for i, name := range d.Players {
		h.Players = append(h.Players, handlog.SeatedPlayer{
			Name:  name,
			Seat:  d.Seats[i],
			Stack: d.StartingStacks[i],
		})
	}
	for i, tag := range handlog.StreetOrder {
		h.Streets[i].Tag = tag
	}
	if err := spreadBoard(h, d.Board); err != nil {
		return nil, err
	}

	for _, raw := range d.Actions {
		tag, act, err := parseAction(raw)
		if err != nil {
			return nil, fmt.Errorf("handdoc: hand %s: %w", d.GameID, err)
		}
		street := h.Street(tag)
		if street == nil {
			return nil, fmt.Errorf("handdoc: hand %s: unknown street %q", d.GameID, tag)
		}
		street.Actions = append(street.Actions, act)
	}
	return h, nil
}

// Encode writes the document to the provided writer as TOML.
func Encode(w io.Writer, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("handdoc: document is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(doc)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(doc *Document) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// Decode reads one TOML document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("handdoc: decoding: %w", err)
	}
	return &doc, nil
}

func formatAction(tag handlog.StreetTag, act handlog.Action) string {
	if act.HasAmount {
		return fmt.Sprintf("%s %s %s %s", tag, act.Player, act.Verb, strconv.FormatFloat(act.Amount, 'f', -1, 64))
	}
	return fmt.Sprintf("%s %s %s", tag, act.Player, act.Verb)
}

func parseAction(raw string) (handlog.StreetTag, handlog.Action, error) {
	fields := strings.Fields(raw)
	if len(fields) != 3 && len(fields) != 4 {
		return "", handlog.Action{}, fmt.Errorf("malformed action %q", raw)
	}
	act := handlog.Action{
		Player: fields[1],
		Verb:   handlog.ActionVerb(fields[2]),
	}
	if len(fields) == 4 {
		amount, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return "", handlog.Action{}, fmt.Errorf("malformed amount in action %q", raw)
		}
		act.Amount = amount
		act.HasAmount = true
	}
	return handlog.StreetTag(fields[0]), act, nil
}

// spreadBoard splits the cumulative board back into per-street cards:
// three to the flop, then one each to turn and river.
func spreadBoard(h *handlog.Hand, board []string) error {
	switch {
	case len(board) == 0:
		return nil
	case len(board) < 3 || len(board) > 5:
		return fmt.Errorf("handdoc: hand %s: board has %d cards", h.GameID, len(board))
	}
	h.Street(handlog.PostFlop).Cards = board[:3]
	if len(board) > 3 {
		h.Street(handlog.PostTurn).Cards = board[3:4]
	}
	if len(board) > 4 {
		h.Street(handlog.PostRiver).Cards = board[4:5]
	}
	return nil
}
