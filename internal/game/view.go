package game

// SeatView is the public slice of one seat visible to every player: name
// and hand size for occupied seats, nothing else.
type SeatView struct {
	Seat      int    `json:"seat"`
	Occupied  bool   `json:"occupied"`
	Name      string `json:"name,omitempty"`
	CardCount int    `json:"cardCount"`
}

// PlayerView is the seat-specific snapshot of shared room state. Only the
// observer's own hand appears in full; every other seat is reduced to a
// SeatView. Views are built one observer at a time and never reused across
// seats, so hand contents cannot leak into a multi-seat broadcast.
type PlayerView struct {
	RoomCode      string     `json:"roomCode"`
	Seat          int        `json:"seat"`
	Players       []SeatView `json:"players"`
	CurrentSeat   int        `json:"currentSeat"`
	Direction     int        `json:"direction"`
	TopCard       Card       `json:"topCard"`
	ActiveColor   Color      `json:"activeColor"`
	DrawPileSize  int        `json:"drawPileSize"`
	DiscardSize   int        `json:"discardSize"`
	Hand          []Card     `json:"myHand"`
	PlayableCards []int      `json:"playableCards"`
}

// ViewFor projects the room state for the observer at the given seat.
// This is the only boundary permitted to read every hand; everything it
// reveals about other seats is their card count.
func (r *Room) ViewFor(seat int) PlayerView {
	view := PlayerView{
		RoomCode:     r.Code,
		Seat:         seat,
		Players:      make([]SeatView, r.MaxPlayers),
		CurrentSeat:  r.CurrentSeat,
		Direction:    r.Direction,
		TopCard:      r.TopCard(),
		ActiveColor:  r.ActiveColor,
		DrawPileSize: len(r.DrawPile),
		DiscardSize:  len(r.DiscardPile),
	}

	for i, p := range r.Seats {
		sv := SeatView{Seat: i}
		if p != nil {
			sv.Occupied = true
			sv.Name = p.Name
			sv.CardCount = len(r.Hands[i])
		}
		view.Players[i] = sv
	}

	hand := r.Hands[seat]
	view.Hand = make([]Card, len(hand))
	copy(view.Hand, hand)
	view.PlayableCards = PlayableIndices(hand, view.TopCard, view.ActiveColor)

	return view
}

// SeatViews returns the public seat summaries for lobby updates.
func (r *Room) SeatViews() []SeatView {
	views := make([]SeatView, r.MaxPlayers)
	for i, p := range r.Seats {
		sv := SeatView{Seat: i}
		if p != nil {
			sv.Occupied = true
			sv.Name = p.Name
			sv.CardCount = len(r.Hands[i])
		}
		views[i] = sv
	}
	return views
}
