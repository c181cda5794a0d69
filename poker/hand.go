package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Hand is an arbitrary set of cards represented as the union of their
// single-bit Card values. It is used both for accumulating cards during
// evaluation (hole cards unioned with the board) and as a plain bitset.
type Hand uint64

// NewHand returns the union of the given cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand in place.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard reports whether c is present in h.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards present in h.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the 13-bit rank mask for the given suit.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16(uint64(h) >> (uint64(suit) * 13) & 0x1FFF)
}

// GetRankMask returns the 13-bit mask of ranks present anywhere in h
// (across all suits).
func (h Hand) GetRankMask() uint16 {
	var mask uint16
	mask |= h.GetSuitMask(Hearts)
	mask |= h.GetSuitMask(Diamonds)
	mask |= h.GetSuitMask(Clubs)
	mask |= h.GetSuitMask(Spades)
	return mask
}

// Cards returns the individual cards present in h.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	remaining := uint64(h)
	for remaining != 0 {
		low := remaining & -remaining
		cards = append(cards, Card(low))
		remaining ^= low
	}
	return cards
}

// Disjoint reports whether h and other share no cards.
func (h Hand) Disjoint(other Hand) bool {
	return h&other == 0
}

// String renders the hand as space-separated card tokens in descending bit
// order: suit by suit (clubs, diamonds, hearts, spades), highest rank first
// within each suit.
func (h Hand) String() string {
	cards := h.Cards()
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[len(cards)-1-i] = c.String()
	}
	return strings.Join(parts, " ")
}

// HoleCards is a player's two private cards. Two HoleCards values compare
// and hash identically regardless of construction order: they canonicalize
// to (low, high) by raw Card bit value.
type HoleCards struct {
	lo, hi Card
}

// NewHoleCards builds a canonicalized, order-independent hole-card pair.
func NewHoleCards(a, b Card) HoleCards {
	if a > b {
		a, b = b, a
	}
	return HoleCards{lo: a, hi: b}
}

// Cards returns the two cards in canonical (lo, hi) order.
func (hc HoleCards) Cards() (Card, Card) {
	return hc.lo, hc.hi
}

// Hand returns the two-card bitset for this hole-card pair.
func (hc HoleCards) Hand() Hand {
	return Hand(hc.lo) | Hand(hc.hi)
}

// String renders the hole cards as two space-separated tokens.
func (hc HoleCards) String() string {
	return hc.lo.String() + " " + hc.hi.String()
}

// ParseHoleCards parses a two-token whitespace-separated hand string.
func ParseHoleCards(s string) (HoleCards, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return HoleCards{}, err
	}
	if len(cards) != 2 {
		return HoleCards{}, fmt.Errorf("%w: hole cards require exactly 2 tokens, got %d", ErrInvalidCard, len(cards))
	}
	return NewHoleCards(cards[0], cards[1]), nil
}

// Board is the five shared community cards, kept in the order supplied.
type Board [5]Card

// NewBoard builds a Board from exactly five cards.
func NewBoard(cards ...Card) (Board, error) {
	var b Board
	if len(cards) != 5 {
		return b, fmt.Errorf("%w: board requires exactly 5 cards, got %d", ErrInvalidHand, len(cards))
	}
	copy(b[:], cards)
	return b, nil
}

// ParseBoard parses a five-token whitespace-separated board string.
func ParseBoard(s string) (Board, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Board{}, err
	}
	return NewBoard(cards...)
}

// Hand returns the five-card bitset for the board.
func (b Board) Hand() Hand {
	var h Hand
	for _, c := range b {
		h.AddCard(c)
	}
	return h
}

// String renders the board as space-separated card tokens in deal order.
func (b Board) String() string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// ParseCards splits a whitespace-separated string of two-character card
// tokens and parses each one.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, tok := range fields {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses the string and panics on failure; intended for
// constants and tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
