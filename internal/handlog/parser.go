package handlog

import (
	"strconv"
	"strings"
)

// Section names used in parse errors.
const (
	sectionHeader  = "header"
	sectionSeating = "seating"
	sectionBlinds  = "blinds"
	sectionHole    = "hole-cards"
	sectionActions = "actions"
	sectionSummary = "summary"
)

// line is one raw input line with its 1-based position in the source file.
type line struct {
	text string
	num  int
}

// linesToDrop are removed wholesale before parsing. Posting and straddle
// lines duplicate the blind section; muck lines carry no action.
var linesToDrop = []string{"wait", "is timed out", "mucks cards", "posts", "straddle"}

// ParseHand converts one raw hand record into a Hand. tracked names the
// player whose hole cards the record reveals.
//
// Parsing is two-pass: the first pass collects players flagged as
// disconnected or waiting and drops every line mentioning them, the
// second pass runs a forward-only scan over the five record sections.
// The passes cannot be merged because exclusion lines may appear after
// other mentions of the same player.
func ParseHand(rec Record, tracked string) (*Hand, error) {
	lines := rec.numbered()
	lines, excluded := filterExcluded(lines)

	h := &Hand{TrackedPlayer: tracked}
	for i, tag := range StreetOrder {
		h.Streets[i].Tag = tag
	}

	pos := 0
	var err error
	if pos, err = parseHeader(h, lines, pos); err != nil {
		return nil, err
	}
	if pos, err = parseSeating(h, lines, pos, excluded); err != nil {
		return nil, err
	}
	if pos, err = parseBlinds(h, lines, pos); err != nil {
		return nil, err
	}
	if pos, err = parseHoleCards(h, lines, pos); err != nil {
		return nil, err
	}
	if pos, err = parseActions(h, lines, pos); err != nil {
		return nil, err
	}
	if err = parseSummary(h, lines, pos); err != nil {
		return nil, err
	}
	return h, nil
}

// filterExcluded builds the exclusion set from wait/timeout lines and
// removes every line that mentions an excluded player. Matching is by
// name substring; see the package notes on the fidelity limit this
// inherits when one name is a substring of another.
func filterExcluded(lines []line) ([]line, []string) {
	var excluded []string
	for _, ln := range lines {
		if !strings.Contains(ln.text, "wait") {
			continue
		}
		if name, ok := between(ln.text, "Player ", " wait"); ok {
			excluded = append(excluded, name)
		}
	}

	kept := lines[:0:0]
outer:
	for _, ln := range lines {
		if strings.TrimSpace(ln.text) == "" {
			continue
		}
		for _, marker := range linesToDrop {
			if strings.Contains(ln.text, marker) {
				continue outer
			}
		}
		for _, name := range excluded {
			if strings.Contains(ln.text, name) {
				continue outer
			}
		}
		kept = append(kept, ln)
	}
	return kept, excluded
}

func parseHeader(h *Hand, lines []line, pos int) (int, error) {
	if len(lines) < pos+3 {
		return pos, &ParseError{Line: 0, Section: sectionHeader, Reason: "record too short"}
	}

	dateLn := lines[pos]
	date, ok := after(dateLn.text, "Game started at: ")
	if !ok {
		return pos, parseErr(dateLn, sectionHeader, "missing record start marker")
	}
	h.Date = date
	pos++

	idLn := lines[pos]
	rest, ok := after(idLn.text, "Game ID: ")
	if !ok {
		return pos, parseErr(idLn, sectionHeader, "missing game identifier line")
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return pos, parseErr(idLn, sectionHeader, "empty game identifier line")
	}
	h.GameID = fields[0]
	variant, ok := between(rest, "(", ")")
	if !ok {
		return pos, parseErr(idLn, sectionHeader, "missing variant")
	}
	h.Variant = variant
	if tail, ok := after(rest, ")"); ok {
		if name, ok := cutBefore(tail, "("); ok {
			h.TableName = strings.ReplaceAll(name, " ", "")
			if typ, ok := between(tail, "(", ")"); ok {
				h.GameType = typ
			}
		}
	}
	pos++

	btnLn := lines[pos]
	seatStr, ok := between(btnLn.text, "Seat ", " ")
	if !ok {
		return pos, parseErr(btnLn, sectionHeader, "missing button seat")
	}
	seat, err := strconv.Atoi(seatStr)
	if err != nil {
		return pos, parseErr(btnLn, sectionHeader, "button seat is not a number")
	}
	h.ButtonSeat = seat
	return pos + 1, nil
}

// parseSeating consumes consecutive "Seat n: name (stack)" lines. The
// section ends at the first line that is not a seating line.
func parseSeating(h *Hand, lines []line, pos int, excluded []string) (int, error) {
	for pos < len(lines) {
		ln := lines[pos]
		if !strings.HasPrefix(ln.text, "Seat ") {
			break
		}
		seatStr, ok := between(ln.text, "Seat ", ":")
		if !ok {
			return pos, parseErr(ln, sectionSeating, "cannot split seat number")
		}
		seat, err := strconv.Atoi(seatStr)
		if err != nil {
			return pos, parseErr(ln, sectionSeating, "seat is not a number")
		}
		name, ok := between(ln.text, ": ", " (")
		if !ok {
			return pos, parseErr(ln, sectionSeating, "cannot split player name")
		}
		stack, ok := parenFloat(ln.text)
		if !ok {
			return pos, parseErr(ln, sectionSeating, "cannot parse starting stack")
		}
		pos++
		if containsName(excluded, name) {
			continue
		}
		h.Players = append(h.Players, SeatedPlayer{Name: name, Seat: seat, Stack: stack})
	}
	if len(h.Players) == 0 {
		return pos, &ParseError{Line: lineNumAt(lines, pos), Section: sectionSeating, Reason: "no seated players"}
	}
	return pos, nil
}

func parseBlinds(h *Hand, lines []line, pos int) (int, error) {
	var err error
	h.SmallBlindPlayer, h.SmallBlind, pos, err = parseBlind(lines, pos, "small blind")
	if err != nil {
		return pos, err
	}
	h.BigBlindPlayer, h.BigBlind, pos, err = parseBlind(lines, pos, "big blind")
	if err != nil {
		return pos, err
	}
	return pos, nil
}

func parseBlind(lines []line, pos int, kind string) (string, float64, int, error) {
	for pos < len(lines) && !strings.Contains(lines[pos].text, kind) {
		pos++
	}
	if pos >= len(lines) {
		return "", 0, pos, &ParseError{Line: lineNumAt(lines, pos), Section: sectionBlinds, Reason: "missing " + kind + " line"}
	}
	ln := lines[pos]
	name, ok := between(ln.text, "Player ", " has")
	if !ok {
		return "", 0, pos, parseErr(ln, sectionBlinds, "cannot split "+kind+" player")
	}
	amount, ok := parenFloat(ln.text)
	if !ok {
		return "", 0, pos, parseErr(ln, sectionBlinds, "cannot parse "+kind+" amount")
	}
	return name, amount, pos + 1, nil
}

// parseHoleCards consumes the dealt-card lines. Only the tracked player's
// lines carry a bracketed card value; the rest are skipped.
func parseHoleCards(h *Hand, lines []line, pos int) (int, error) {
	for pos < len(lines) && strings.Contains(lines[pos].text, "received") {
		ln := lines[pos]
		if card, ok := between(ln.text, "[", "]"); ok {
			h.HoleCards = append(h.HoleCards, NormalizeCard(card))
		}
		pos++
	}
	if len(h.HoleCards) != 2 {
		return pos, &ParseError{Line: lineNumAt(lines, pos), Section: sectionHole,
			Reason: "expected two hole cards for tracked player " + h.TrackedPlayer}
	}
	return pos, nil
}

// parseActions replays the action body line by line. Street markers set
// the active street and record the newly revealed board cards; every
// other line must be a player action with a known verb. The section ends
// at the first non-marker line that mentions no player (typically an
// uncalled-bet return).
func parseActions(h *Hand, lines []line, pos int) (int, error) {
	street := h.Street(PreFlop)
	for pos < len(lines) {
		ln := lines[pos]
		switch {
		case strings.Contains(ln.text, "***"):
			tag, ok := streetMarker(ln.text)
			if !ok {
				return pos, parseErr(ln, sectionActions, "unknown street marker")
			}
			street = h.Street(tag)
			if cards, ok := lastBracketGroup(ln.text); ok {
				street.Cards = NormalizeCards(strings.Fields(cards))
			}
		case !strings.Contains(ln.text, "Player"):
			return pos, nil
		default:
			action, err := parseActionLine(ln)
			if err != nil {
				return pos, err
			}
			street.Actions = append(street.Actions, action)
		}
		pos++
	}
	return pos, nil
}

func streetMarker(text string) (StreetTag, bool) {
	switch {
	case strings.Contains(text, "FLOP"):
		return PostFlop, true
	case strings.Contains(text, "TURN"):
		return PostTurn, true
	case strings.Contains(text, "RIVER"):
		return PostRiver, true
	default:
		return "", false
	}
}

func parseActionLine(ln line) (Action, error) {
	for _, vw := range verbWords {
		if !strings.Contains(ln.text, vw.word) {
			continue
		}
		name, ok := between(ln.text, "Player ", " "+vw.word)
		if !ok {
			return Action{}, parseErr(ln, sectionActions, "cannot split acting player")
		}
		action := Action{Player: name, Verb: vw.verb}
		if amount, ok := parenFloat(ln.text); ok {
			action.Amount = amount
			action.HasAmount = true
		}
		return action, nil
	}
	return Action{}, parseErr(ln, sectionActions, "unknown action verb")
}

// parseSummary reads the end-of-hand section: the pot/rake line and each
// player's total bets and collects, from which finishing stacks are
// derived by applying bets (subtracted) and collects (added) to the
// starting stacks.
func parseSummary(h *Hand, lines []line, pos int) error {
	for pos < len(lines) && !strings.Contains(lines[pos].text, "Summary") {
		pos++
	}
	if pos >= len(lines) {
		return &ParseError{Line: lineNumAt(lines, pos), Section: sectionSummary, Reason: "missing summary section"}
	}
	pos++

	finishing := make([]float64, len(h.Players))
	for i, p := range h.Players {
		finishing[i] = p.Stack
	}

	for ; pos < len(lines); pos++ {
		ln := lines[pos]
		if strings.HasPrefix(ln.text, "Pot: ") {
			h.Pot, _ = trailingFloat(ln.text, "Pot: ")
			h.Rake, _ = trailingFloat(ln.text, "Rake ")
			h.Fee, _ = trailingFloat(ln.text, "fee ")
			continue
		}
		if !strings.Contains(ln.text, "Player") {
			continue
		}
		sum, err := parseSummaryLine(ln)
		if err != nil {
			return err
		}
		h.Summaries = append(h.Summaries, sum)
		// Summary lines for players dropped by the exclusion filter are
		// already gone; anyone else unknown is outside the seating list.
		if i := h.playerIndex(sum.Player); i >= 0 {
			finishing[i] += sum.Collects - sum.Bets
		}
	}
	h.FinishingStacks = finishing
	return nil
}

func parseSummaryLine(ln line) (PlayerSummary, error) {
	rest, _ := after(ln.text, "Player ")
	name := rest
	for _, key := range []string{" does", " shows", " mucks", " "} {
		if cut, ok := cutBefore(rest, key); ok {
			name = cut
			break
		}
	}
	bets, ok := trailingFloat(ln.text, "Bets: ")
	if !ok {
		return PlayerSummary{}, parseErr(ln, sectionSummary, "cannot parse bets")
	}
	collects, ok := trailingFloat(ln.text, "Collects: ")
	if !ok {
		return PlayerSummary{}, parseErr(ln, sectionSummary, "cannot parse collects")
	}
	sum := PlayerSummary{Player: name, Bets: bets, Collects: collects}
	if card, ok := between(ln.text, "[", "]"); ok {
		sum.ShownCard = NormalizeCard(card)
	}
	return sum, nil
}

// --- small string helpers ---

// after returns the text following the first occurrence of sep.
func after(s, sep string) (string, bool) {
	_, rest, ok := strings.Cut(s, sep)
	return rest, ok
}

// cutBefore returns the text preceding the first occurrence of sep.
func cutBefore(s, sep string) (string, bool) {
	head, _, ok := strings.Cut(s, sep)
	return head, ok
}

// between returns the text bounded by the first occurrence of open and
// the next occurrence of end.
func between(s, open, end string) (string, bool) {
	rest, ok := after(s, open)
	if !ok {
		return "", false
	}
	return cutBefore(rest, end)
}

// parenFloat parses the first parenthesized decimal in s.
func parenFloat(s string) (float64, bool) {
	inner, ok := between(s, "(", ")")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(inner, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// trailingFloat parses the space-delimited decimal following key,
// tolerating a trailing period.
func trailingFloat(s, key string) (float64, bool) {
	rest, ok := after(s, key)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	raw := strings.TrimSuffix(fields[0], ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// lastBracketGroup returns the contents of the final [...] group.
func lastBracketGroup(s string) (string, bool) {
	open := strings.LastIndex(s, "[")
	if open < 0 {
		return "", false
	}
	end := strings.Index(s[open:], "]")
	if end < 0 {
		return "", false
	}
	return s[open+1 : open+end], true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func lineNumAt(lines []line, pos int) int {
	if pos < len(lines) {
		return lines[pos].num
	}
	if len(lines) > 0 {
		return lines[len(lines)-1].num
	}
	return 0
}
