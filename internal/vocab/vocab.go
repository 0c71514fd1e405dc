// Package vocab implements the closed-vocabulary tokenizer for replay
// token streams. Encoding is a greedy longest-match scan over a fixed
// symbol table; any input byte sequence matching no symbol is silently
// dropped, which keeps the vocabulary closed at the cost of losing
// unusual card or amount spellings.
package vocab

// Symbol table literals. Two variants exist: Long keeps cards as
// two-character tokens, Short decomposes them into rank and suit
// characters.

var longSymbols = []string{
	"[TABLE_CONFIGURATION]", "[PREFLOP]", "[STACKS]", "[RIVER]", "[FLOP]",
	"[TURN]", "CHECK", "RAISE", "ALLIN", "[PAD]", "[EOS]", "FOLD", "CALL",
	"POT", "BTN", "BET", "BB", "SB", "2s", "3s", "4s", "5s", "6s", "7s",
	"8s", "9s", "Ts", "Js", "Qs", "Ks", "As", "2h", "3h", "4h", "5h", "6h",
	"7h", "8h", "9h", "Th", "Jh", "Qh", "Kh", "Ah", "2d", "3d", "4d", "5d",
	"6d", "7d", "8d", "9d", "Td", "Jd", "Qd", "Kd", "Ad", "2c", "3c", "4c",
	"5c", "6c", "7c", "8c", "9c", "Tc", "Jc", "Qc", "Kc", "Ac", "0", "1",
	"2", "3", "4", "5", "6", "7", "8", "9", ".", ":", "=", "\n", " ", "[", "]",
}

var shortSymbols = []string{
	"[TABLE_CONFIGURATION]", "[PREFLOP]", "[STACKS]", "[RIVER]", "[FLOP]",
	"[TURN]", "CHECK", "RAISE", "ALLIN", "[PAD]", "[EOS]", "FOLD", "CALL",
	"POT", "BTN", "BET", "BB", "SB", "P", "s", "h", "d", "c", "T", "J", "Q",
	"K", "A", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".",
}

// Control symbols shared by both variants.
const (
	PadSymbol = "[PAD]"
	EOSSymbol = "[EOS]"
)

// Long and Short are the two vocabulary variants, built once at process
// start and never mutated.
var (
	Long  = New(longSymbols)
	Short = New(shortSymbols)
)

// Vocabulary is a closed, ordered symbol table with precomputed
// symbol-to-id maps and a prefix tree for longest-match scanning.
type Vocabulary struct {
	symbols []string
	ids     map[string]int
	root    *trieNode
	padID   int
	eosID   int
}

// New builds a vocabulary from an ordered symbol list. IDs are the
// positions in the list.
func New(symbols []string) *Vocabulary {
	v := &Vocabulary{
		symbols: symbols,
		ids:     make(map[string]int, len(symbols)),
		root:    &trieNode{},
		padID:   -1,
		eosID:   -1,
	}
	for id, sym := range symbols {
		v.ids[sym] = id
		v.root.insert(sym, id)
		switch sym {
		case PadSymbol:
			v.padID = id
		case EOSSymbol:
			v.eosID = id
		}
	}
	return v
}

// Size returns the number of symbols.
func (v *Vocabulary) Size() int { return len(v.symbols) }

// PadID returns the id of the padding symbol.
func (v *Vocabulary) PadID() int { return v.padID }

// EOSID returns the id of the end-of-sequence symbol.
func (v *Vocabulary) EOSID() int { return v.eosID }

// ID looks up a symbol's id.
func (v *Vocabulary) ID(sym string) (int, bool) {
	id, ok := v.ids[sym]
	return id, ok
}

// Symbol returns the symbol string for an id.
func (v *Vocabulary) Symbol(id int) (string, bool) {
	if id < 0 || id >= len(v.symbols) {
		return "", false
	}
	return v.symbols[id], true
}

// Encode converts text to symbol ids with a greedy longest-match scan.
// Bytes matching no symbol are dropped.
func (v *Vocabulary) Encode(text string) []int {
	ids := make([]int, 0, len(text))
	for pos := 0; pos < len(text); {
		id, length := v.root.longestMatch(text[pos:])
		if length == 0 {
			pos++ // lossy: no symbol starts here
			continue
		}
		ids = append(ids, id)
		pos += length
	}
	return ids
}

// Decode concatenates the symbols for an id sequence. Ids outside the
// table are skipped. No delimiters are reinserted, so decode(encode(s))
// reproduces s only when s is built purely from vocabulary symbols.
func (v *Vocabulary) Decode(ids []int) string {
	var out []byte
	for _, id := range ids {
		if sym, ok := v.Symbol(id); ok {
			out = append(out, sym...)
		}
	}
	return string(out)
}

// trieNode is one node of the byte-wise symbol prefix tree.
type trieNode struct {
	children map[byte]*trieNode
	id       int
	terminal bool
}

func (n *trieNode) insert(sym string, id int) {
	node := n
	for i := 0; i < len(sym); i++ {
		if node.children == nil {
			node.children = make(map[byte]*trieNode)
		}
		child, ok := node.children[sym[i]]
		if !ok {
			child = &trieNode{}
			node.children[sym[i]] = child
		}
		node = child
	}
	node.id = id
	node.terminal = true
}

// longestMatch walks the tree as far as the input allows and returns
// the id and byte length of the longest terminal visited.
func (n *trieNode) longestMatch(text string) (id, length int) {
	node := n
	bestID, bestLen := 0, 0
	for i := 0; i < len(text); i++ {
		child, ok := node.children[text[i]]
		if !ok {
			break
		}
		node = child
		if node.terminal {
			bestID, bestLen = node.id, i+1
		}
	}
	return bestID, bestLen
}
