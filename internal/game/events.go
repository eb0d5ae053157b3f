package game

import "fmt"

// IntentType tags an inbound client intent.
type IntentType string

const (
	IntentCreateRoom  IntentType = "createRoom"
	IntentJoinRoom    IntentType = "joinRoom"
	IntentStartGame   IntentType = "startGame"
	IntentPlayCard    IntentType = "playCard"
	IntentSelectColor IntentType = "selectColor"
	IntentDrawCard    IntentType = "drawCard"
	IntentPassCard    IntentType = "passCard"
	IntentCallUno     IntentType = "callUno"
)

// Intent is the tagged inbound message. Each tag uses a fixed subset of
// the optional fields; Validate rejects malformed payloads before they
// reach game logic.
type Intent struct {
	Type       IntentType `json:"type"`
	PlayerName string     `json:"playerName,omitempty"`
	MaxPlayers int        `json:"maxPlayers,omitempty"`
	RoomCode   string     `json:"roomCode,omitempty"`
	CardIndex  *int       `json:"cardIndex,omitempty"`
	Color      string     `json:"color,omitempty"`
}

// Validate checks that the fields required by the intent's tag are present
// and well formed.
func (in Intent) Validate() error {
	switch in.Type {
	case IntentCreateRoom:
		if in.PlayerName == "" {
			return fmt.Errorf("createRoom: playerName required")
		}
		if in.MaxPlayers != 0 && (in.MaxPlayers < 2 || in.MaxPlayers > 6) {
			return fmt.Errorf("createRoom: maxPlayers must be between 2 and 6")
		}
	case IntentJoinRoom:
		if in.RoomCode == "" || in.PlayerName == "" {
			return fmt.Errorf("joinRoom: roomCode and playerName required")
		}
	case IntentPlayCard:
		if in.CardIndex == nil {
			return fmt.Errorf("playCard: cardIndex required")
		}
	case IntentSelectColor:
		if in.CardIndex == nil {
			return fmt.Errorf("selectColor: cardIndex required")
		}
		color, err := ParseColor(in.Color)
		if err != nil || color == ColorWild {
			return fmt.Errorf("selectColor: a non-wild color is required")
		}
	case IntentStartGame, IntentDrawCard, IntentPassCard, IntentCallUno:
		// No payload.
	default:
		return fmt.Errorf("unknown intent type %q", in.Type)
	}
	return nil
}

// EventType tags an outbound server event.
type EventType string

const (
	EventRoomCreated        EventType = "roomCreated"
	EventRoomJoined         EventType = "roomJoined"
	EventRoomUpdated        EventType = "roomUpdated"
	EventGameStarted        EventType = "gameStarted"
	EventGameState          EventType = "gameState"
	EventGameOver           EventType = "gameOver"
	EventUnoCall            EventType = "unoCall"
	EventPlayerDisconnected EventType = "playerDisconnected"
	EventError              EventType = "error"
)

// RoomInfo acknowledges room creation or joining to a single connection.
type RoomInfo struct {
	RoomCode   string `json:"roomCode"`
	SeatIndex  int    `json:"seatIndex"`
	MaxPlayers int    `json:"maxPlayers"`
}

// RoomUpdate is the lobby membership broadcast.
type RoomUpdate struct {
	Seats         []SeatView `json:"seats"`
	OccupiedCount int        `json:"occupiedCount"`
	MaxPlayers    int        `json:"maxPlayers"`
}

// GameOverInfo announces the winner.
type GameOverInfo struct {
	WinnerSeat int    `json:"winnerSeat"`
	WinnerName string `json:"winnerName"`
}

// SeatRef names a seat in announcements (uno calls, disconnects).
type SeatRef struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

// Event is the tagged outbound message. Exactly one of the optional
// fields is populated, matching the tag.
type Event struct {
	Type    EventType     `json:"type"`
	Room    *RoomInfo     `json:"room,omitempty"`
	Update  *RoomUpdate   `json:"update,omitempty"`
	State   *PlayerView   `json:"state,omitempty"`
	Result  *GameOverInfo `json:"result,omitempty"`
	Player  *SeatRef      `json:"player,omitempty"`
	Message string        `json:"message,omitempty"`
}
