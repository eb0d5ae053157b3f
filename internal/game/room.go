package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Phase is the lifecycle phase of a room. The terminal "ended" state is
// realized as removal from the registry rather than a stored phase.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "lobby"
}

// Player is an occupied seat: a display name plus the opaque connection
// handle used for routing outbound events. Game logic never inspects the
// handle beyond identity.
type Player struct {
	Name string
	Conn uuid.UUID
}

const handSize = 7

// Room is a single game session. Seats is a fixed-size sparse array; a
// seat index is stable identity for the whole session regardless of which
// player occupies it. A hand exists at index i if and only if Seats[i] is
// occupied.
//
// Room methods are not safe for concurrent use; the Dispatcher serializes
// every mutation.
type Room struct {
	Code        string
	MaxPlayers  int
	Seats       []*Player
	Hands       [][]Card
	DrawPile    []Card // top of pile is the last element
	DiscardPile []Card // last element is the active top card
	CurrentSeat int
	Direction   int // +1 or -1
	ActiveColor Color
	Phase       Phase
	HostSeat    int

	rng *rand.Rand
}

// NewRoom builds an empty lobby-phase room. maxPlayers outside [2,6] is
// clamped to the nearest bound.
func NewRoom(code string, maxPlayers int, rng *rand.Rand) *Room {
	if maxPlayers < 2 {
		maxPlayers = 2
	}
	if maxPlayers > 6 {
		maxPlayers = 6
	}
	return &Room{
		Code:       code,
		MaxPlayers: maxPlayers,
		Seats:      make([]*Player, maxPlayers),
		Hands:      make([][]Card, maxPlayers),
		Direction:  1,
		rng:        rng,
	}
}

// OccupiedCount returns the number of occupied seats.
func (r *Room) OccupiedCount() int {
	count := 0
	for _, p := range r.Seats {
		if p != nil {
			count++
		}
	}
	return count
}

// Seat places a player into the first empty seat and returns its index.
func (r *Room) Seat(p *Player) (int, error) {
	if r.Phase != PhaseLobby {
		return -1, ErrGameAlreadyStarted
	}
	for i, existing := range r.Seats {
		if existing == nil {
			r.Seats[i] = p
			r.Hands[i] = []Card{}
			return i, nil
		}
	}
	return -1, ErrRoomFull
}

// ClearSeat empties a lobby seat, dropping its hand. If the host leaves,
// hosting moves to the lowest occupied seat.
func (r *Room) ClearSeat(seat int) {
	if seat < 0 || seat >= r.MaxPlayers {
		return
	}
	r.Seats[seat] = nil
	r.Hands[seat] = nil
	if seat == r.HostSeat {
		for i, p := range r.Seats {
			if p != nil {
				r.HostSeat = i
				break
			}
		}
	}
}

// NextOccupied returns the next occupied seat stepping from seat in the
// given direction with wraparound, skipping empty seats. If no occupied
// seat is found within MaxPlayers steps the input seat is returned
// unchanged.
func (r *Room) NextOccupied(seat, direction int) int {
	cur := seat
	for i := 0; i < r.MaxPlayers; i++ {
		cur = ((cur+direction)%r.MaxPlayers + r.MaxPlayers) % r.MaxPlayers
		if r.Seats[cur] != nil {
			return cur
		}
	}
	return seat
}

// Start transitions the room from lobby to active play: the deck is built
// and shuffled, seven cards are dealt to each occupied seat one round at a
// time in seat order, and cards are revealed from the draw pile until a
// plain numbered card surfaces to seed the discard pile. Rejected reveals
// go back to the bottom of the pile.
func (r *Room) Start() error {
	if r.Phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if r.OccupiedCount() < 2 {
		return ErrNotEnoughPlayers
	}

	r.DrawPile = BuildDeck()
	Shuffle(r.DrawPile, r.rng)

	for round := 0; round < handSize; round++ {
		for seat := 0; seat < r.MaxPlayers; seat++ {
			if r.Seats[seat] == nil {
				continue
			}
			r.Hands[seat] = append(r.Hands[seat], r.popDraw())
		}
	}

	first := r.popDraw()
	for !first.IsNumber() {
		r.DrawPile = append([]Card{first}, r.DrawPile...)
		first = r.popDraw()
	}
	r.DiscardPile = []Card{first}
	r.ActiveColor = first.Color

	r.CurrentSeat = 0
	if r.Seats[0] == nil {
		r.CurrentSeat = r.NextOccupied(0, 1)
	}
	r.Direction = 1
	r.Phase = PhaseActive
	return nil
}

// TopCard returns the active top of the discard pile. Valid only once the
// game has started; the discard pile is never empty afterwards.
func (r *Room) TopCard() Card {
	return r.DiscardPile[len(r.DiscardPile)-1]
}

// popDraw removes and returns the top card of the draw pile. Callers must
// ensure the pile is non-empty.
func (r *Room) popDraw() Card {
	card := r.DrawPile[len(r.DrawPile)-1]
	r.DrawPile = r.DrawPile[:len(r.DrawPile)-1]
	return card
}

// drawOne moves one card from the draw pile into the seat's hand,
// reshuffling the discard pile into the draw pile first if needed. The
// draw is skipped (returning false) only in the degenerate case where both
// piles are exhausted.
func (r *Room) drawOne(seat int) bool {
	if len(r.DrawPile) == 0 {
		r.reshuffleFromDiscard()
	}
	if len(r.DrawPile) == 0 {
		return false
	}
	r.Hands[seat] = append(r.Hands[seat], r.popDraw())
	return true
}

// reshuffleFromDiscard moves every discard except the top card into the
// draw pile and shuffles it, leaving the sole top card in place.
func (r *Room) reshuffleFromDiscard() {
	if len(r.DiscardPile) <= 1 {
		return
	}
	top := r.DiscardPile[len(r.DiscardPile)-1]
	r.DrawPile = append(r.DrawPile, r.DiscardPile[:len(r.DiscardPile)-1]...)
	r.DiscardPile = []Card{top}
	Shuffle(r.DrawPile, r.rng)
}

// PlayCard validates and applies the play of the non-wild card at idx by
// seat. It returns the winning seat if the play emptied the hand, or -1.
// A wild card cannot be played through this path: its color choice must
// arrive atomically, so ErrColorRequired directs the client to resubmit
// the play as a color selection.
func (r *Room) PlayCard(seat, idx int) (winner int, err error) {
	if err := r.checkTurn(seat); err != nil {
		return -1, err
	}
	if idx < 0 || idx >= len(r.Hands[seat]) {
		return -1, ErrInvalidCardIndex
	}
	card := r.Hands[seat][idx]
	if card.Color == ColorWild {
		return -1, ErrColorRequired
	}
	if !CanPlay(card, r.TopCard(), r.ActiveColor) {
		return -1, ErrIllegalPlay
	}
	r.removeFromHand(seat, idx)
	return r.resolvePlay(seat, card, card.Color), nil
}

// PlayWild validates and applies the play of the wild card at idx together
// with the chosen color, as one turn-ending action.
func (r *Room) PlayWild(seat, idx int, color Color) (winner int, err error) {
	if err := r.checkTurn(seat); err != nil {
		return -1, err
	}
	if idx < 0 || idx >= len(r.Hands[seat]) {
		return -1, ErrInvalidCardIndex
	}
	card := r.Hands[seat][idx]
	if card.Color != ColorWild {
		return -1, ErrNotWildCard
	}
	if color == ColorWild || color > ColorBlue {
		return -1, ErrIllegalPlay
	}
	r.removeFromHand(seat, idx)
	return r.resolvePlay(seat, card, color), nil
}

// DrawForTurn draws a single card for the current seat and advances the
// turn. The error is informational; callers ignore unmet preconditions
// silently.
func (r *Room) DrawForTurn(seat int) error {
	if err := r.checkTurn(seat); err != nil {
		return err
	}
	r.drawOne(seat)
	r.CurrentSeat = r.NextOccupied(seat, r.Direction)
	return nil
}

// PassTurn advances the turn without drawing.
func (r *Room) PassTurn(seat int) error {
	if err := r.checkTurn(seat); err != nil {
		return err
	}
	r.CurrentSeat = r.NextOccupied(seat, r.Direction)
	return nil
}

func (r *Room) checkTurn(seat int) error {
	if r.Phase != PhaseActive || seat != r.CurrentSeat {
		return ErrOutOfTurn
	}
	return nil
}

func (r *Room) removeFromHand(seat, idx int) {
	hand := r.Hands[seat]
	r.Hands[seat] = append(hand[:idx], hand[idx+1:]...)
}

// resolvePlay pushes the played card, updates the active color, applies
// any penalty draws, and advances the turn. The win check runs before the
// advance so that no turn change follows a winning play. Returns the
// winning seat or -1.
func (r *Room) resolvePlay(seat int, card Card, color Color) int {
	r.DiscardPile = append(r.DiscardPile, card)
	r.ActiveColor = color

	switch card.Value {
	case ValueDrawTwo:
		r.penalize(r.NextOccupied(seat, r.Direction), 2)
	case ValueWildDrawFour:
		r.penalize(r.NextOccupied(seat, r.Direction), 4)
	}

	if len(r.Hands[seat]) == 0 {
		return seat
	}

	r.advanceFor(seat, card)
	return -1
}

// penalize draws count cards into the victim's hand, skipping draws that
// cannot be satisfied even after a reshuffle.
func (r *Room) penalize(victim, count int) {
	for i := 0; i < count; i++ {
		if !r.drawOne(victim) {
			break
		}
	}
}

// advanceFor moves CurrentSeat according to the played card's effect.
//
//	number       one step
//	skip         two steps (the skipped seat loses its turn)
//	reverse      two seated: identical to skip;
//	             three or more: direction flips, then one step
//	draw-two /
//	wild-draw-four  the penalized seat's turn is consumed: step past it
//	wild         one step (color change only)
func (r *Room) advanceFor(seat int, card Card) {
	switch card.Value {
	case ValueSkip:
		r.CurrentSeat = r.NextOccupied(r.NextOccupied(seat, r.Direction), r.Direction)
	case ValueReverse:
		if r.OccupiedCount() == 2 {
			r.CurrentSeat = r.NextOccupied(r.NextOccupied(seat, r.Direction), r.Direction)
		} else {
			r.Direction = -r.Direction
			r.CurrentSeat = r.NextOccupied(seat, r.Direction)
		}
	case ValueDrawTwo, ValueWildDrawFour:
		victim := r.NextOccupied(seat, r.Direction)
		r.CurrentSeat = r.NextOccupied(victim, r.Direction)
	default:
		r.CurrentSeat = r.NextOccupied(seat, r.Direction)
	}
}

// CardCount returns the total number of cards across the draw pile, the
// discard pile and all hands. Once a game has started this is always
// DeckSize.
func (r *Room) CardCount() int {
	total := len(r.DrawPile) + len(r.DiscardPile)
	for _, hand := range r.Hands {
		total += len(hand)
	}
	return total
}
