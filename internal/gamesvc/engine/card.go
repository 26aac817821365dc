package engine

import (
	"fmt"
	"math/rand"
)

type Suit int

type Rank int

const (
	SuitSpades Suit = iota
	SuitHearts
	SuitDiamonds
	SuitClubs
)

const (
	Rank2 Rank = iota
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

func (s Suit) String() string {
	switch s {
	case SuitSpades:
		return "♠"
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	case SuitClubs:
		return "♣"
	default:
		return "?"
	}
}

func (r Rank) String() string {
	switch r {
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r)+2)
	}
}

// Card is an immutable rank/suit pair. Equality is by value.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ParseCard reads the compact wire format produced by String, e.g. "7♥" or "10♠".
func ParseCard(s string) (Card, error) {
	runes := []rune(s)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("malformed card %q", s)
	}

	var suit Suit
	switch runes[len(runes)-1] {
	case '♠':
		suit = SuitSpades
	case '♥':
		suit = SuitHearts
	case '♦':
		suit = SuitDiamonds
	case '♣':
		suit = SuitClubs
	default:
		return Card{}, fmt.Errorf("unknown suit in card %q", s)
	}

	var rank Rank
	switch string(runes[:len(runes)-1]) {
	case "2":
		rank = Rank2
	case "3":
		rank = Rank3
	case "4":
		rank = Rank4
	case "5":
		rank = Rank5
	case "6":
		rank = Rank6
	case "7":
		rank = Rank7
	case "8":
		rank = Rank8
	case "9":
		rank = Rank9
	case "10":
		rank = Rank10
	case "J":
		rank = RankJ
	case "Q":
		rank = RankQ
	case "K":
		rank = RankK
	case "A":
		rank = RankA
	default:
		return Card{}, fmt.Errorf("unknown rank in card %q", s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("malformed card json %s", data)
	}
	parsed, err := ParseCard(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// NewDeck returns all 52 cards in a fixed order, one of each.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := SuitSpades; s <= SuitClubs; s++ {
		for r := Rank2; r <= RankA; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle returns a uniformly random permutation of deck. The input is not
// modified.
func Shuffle(deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
