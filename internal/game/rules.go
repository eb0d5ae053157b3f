package game

// CanPlay reports whether card may legally be played on top of topCard
// while activeColor is in effect. A card is playable if it is wild, if its
// color matches the active color, or if its face value matches the top
// card's face value. The value match is deliberately independent of the
// color match: two cards of equal face are adjacent even across colors.
func CanPlay(card, topCard Card, activeColor Color) bool {
	if card.Color == ColorWild {
		return true
	}
	if card.Color == activeColor {
		return true
	}
	return card.Value == topCard.Value
}

// PlayableIndices returns the indices of all cards in hand that CanPlay
// allows against topCard and activeColor, in hand order.
func PlayableIndices(hand []Card, topCard Card, activeColor Color) []int {
	indices := make([]int, 0, len(hand))
	for i, card := range hand {
		if CanPlay(card, topCard, activeColor) {
			indices = append(indices, i)
		}
	}
	return indices
}
