package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComplete(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := map[Card]bool{}
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := NewDeck()
	shuffled := Shuffle(deck)

	require.Len(t, shuffled, DeckSize)

	counts := map[Card]int{}
	for _, c := range shuffled {
		counts[c]++
	}
	for _, c := range deck {
		assert.Equal(t, 1, counts[c], "card %v should appear exactly once", c)
	}
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	deck := NewDeck()
	original := make([]Card, len(deck))
	copy(original, deck)

	Shuffle(deck)

	assert.Equal(t, original, deck)
}

// Over many trials every card should land in every position with roughly
// equal frequency. A sort-with-random-comparator shuffle fails this badly;
// Fisher-Yates passes with a wide margin.
func TestShuffleUniformity(t *testing.T) {
	const trials = 20000

	deck := NewDeck()
	probe := deck[0]

	positions := make([]int, DeckSize)
	for i := 0; i < trials; i++ {
		shuffled := Shuffle(deck)
		for pos, c := range shuffled {
			if c == probe {
				positions[pos]++
				break
			}
		}
	}

	expected := float64(trials) / float64(DeckSize)
	for pos, n := range positions {
		assert.InDelta(t, expected, float64(n), expected*0.35,
			"position %d frequency too far from uniform", pos)
	}
}

func TestCardStringRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		parsed, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "7", "X♥", "7x", "♥7"} {
		_, err := ParseCard(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestCardJSON(t *testing.T) {
	c := Card{Rank: Rank7, Suit: SuitHearts}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"7♥"`, string(data))

	var back Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)

	var bad Card
	assert.Error(t, json.Unmarshal([]byte(`"77"`), &bad))
}
