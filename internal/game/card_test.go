package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeckComposition(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	counts := make(map[Card]int)
	for _, c := range deck {
		counts[c]++
	}

	for _, color := range playColors {
		assert.Equal(t, 1, counts[Card{Color: color, Value: Value0}], "one 0 per color")
		for v := Value1; v <= ValueDrawTwo; v++ {
			assert.Equal(t, 2, counts[Card{Color: color, Value: v}],
				"two copies of %s %s", color, v)
		}
	}
	assert.Equal(t, 4, counts[Card{Color: ColorWild, Value: ValueWild}])
	assert.Equal(t, 4, counts[Card{Color: ColorWild, Value: ValueWildDrawFour}])
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := BuildDeck()
	before := make(map[Card]int)
	for _, c := range deck {
		before[c]++
	}

	Shuffle(deck, rand.New(rand.NewSource(42)))

	after := make(map[Card]int)
	for _, c := range deck {
		after[c]++
	}
	assert.Equal(t, before, after, "shuffle must preserve the card multiset")
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := BuildDeck()
	b := BuildDeck()
	Shuffle(a, rand.New(rand.NewSource(7)))
	Shuffle(b, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestCardWireEncoding(t *testing.T) {
	cases := []struct {
		card Card
		json string
	}{
		{Card{Color: ColorRed, Value: Value7}, `{"color":"red","value":"7"}`},
		{Card{Color: ColorGreen, Value: ValueDrawTwo}, `{"color":"green","value":"+2"}`},
		{Card{Color: ColorWild, Value: ValueWildDrawFour}, `{"color":"wild","value":"wild+4"}`},
		{Card{Color: ColorBlue, Value: ValueSkip}, `{"color":"blue","value":"skip"}`},
	}
	for _, tc := range cases {
		encoded, err := json.Marshal(tc.card)
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, string(encoded))

		var decoded Card
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, tc.card, decoded)
	}
}
