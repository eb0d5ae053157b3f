// Package game implements the room lifecycle and turn-based state machine
// for a server-authoritative UNO-style shedding game. The server owns all
// state; connected clients only receive masked per-seat views and submit
// intents through the Dispatcher.
package game

import (
	"fmt"
	"math/rand"
)

// DeckSize is the number of cards in a full deck:
// 4 colors x (one 0 + two each of 1-9/skip/reverse/draw-two) + 8 wilds.
const DeckSize = 108

// Color identifies a card color. Wild cards carry ColorWild until a color
// is chosen for them, at which point the room's active color changes but
// the card itself does not.
type Color uint8

const (
	ColorRed Color = iota
	ColorYellow
	ColorGreen
	ColorBlue
	ColorWild
)

// playColors are the colors a wild card may select.
var playColors = [4]Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorWild:
		return "wild"
	}
	return "?"
}

// ParseColor converts a wire color string to a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red":
		return ColorRed, nil
	case "yellow":
		return ColorYellow, nil
	case "green":
		return ColorGreen, nil
	case "blue":
		return ColorBlue, nil
	case "wild":
		return ColorWild, nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// MarshalText encodes the color with its wire name.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a wire color name.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value identifies a card face. Values 0-9 map directly to the numeric
// constants; action and wild faces follow.
type Value uint8

const (
	Value0 Value = iota
	Value1
	Value2
	Value3
	Value4
	Value5
	Value6
	Value7
	Value8
	Value9
	ValueSkip
	ValueReverse
	ValueDrawTwo
	ValueWild
	ValueWildDrawFour
)

// Wire names match the original client protocol: draw-two is "+2" and
// wild-draw-four is "wild+4".
func (v Value) String() string {
	switch {
	case v <= Value9:
		return string(rune('0' + v))
	case v == ValueSkip:
		return "skip"
	case v == ValueReverse:
		return "reverse"
	case v == ValueDrawTwo:
		return "+2"
	case v == ValueWild:
		return "wild"
	case v == ValueWildDrawFour:
		return "wild+4"
	}
	return "?"
}

// ParseValue converts a wire value string to a Value.
func ParseValue(s string) (Value, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Value(s[0] - '0'), nil
	}
	switch s {
	case "skip":
		return ValueSkip, nil
	case "reverse":
		return ValueReverse, nil
	case "+2":
		return ValueDrawTwo, nil
	case "wild":
		return ValueWild, nil
	case "wild+4":
		return ValueWildDrawFour, nil
	}
	return 0, fmt.Errorf("unknown card value %q", s)
}

// MarshalText encodes the value with its wire name.
func (v Value) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText decodes a wire value name.
func (v *Value) UnmarshalText(b []byte) error {
	parsed, err := ParseValue(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Card is an immutable color/value pair. Cards are tracked positionally
// within piles and hands; no per-card identity exists.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

func (c Card) String() string {
	return c.Color.String() + " " + c.Value.String()
}

// IsNumber reports whether the card is a plain numbered card (0-9).
func (c Card) IsNumber() bool {
	return c.Color != ColorWild && c.Value <= Value9
}

// BuildDeck returns a full, unshuffled 108-card deck: for each of the four
// colors one 0 and two each of 1-9, skip, reverse and draw-two, plus four
// wilds and four wild-draw-fours.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, color := range playColors {
		deck = append(deck, Card{Color: color, Value: Value0})
		for v := Value1; v <= ValueDrawTwo; v++ {
			deck = append(deck, Card{Color: color, Value: v}, Card{Color: color, Value: v})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck,
			Card{Color: ColorWild, Value: ValueWild},
			Card{Color: ColorWild, Value: ValueWildDrawFour},
		)
	}
	return deck
}

// Shuffle permutes cards in place with an unbiased Fisher-Yates pass.
// The random source is injected so tests can seed it deterministically.
func Shuffle(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
