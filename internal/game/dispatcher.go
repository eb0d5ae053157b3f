package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kerimbalci/uno-online/internal/cache"
	"github.com/kerimbalci/uno-online/internal/database"
)

// Sender delivers an outbound event to a single connection. The transport
// adapter implements it; the core never imports a transport package.
type Sender interface {
	Send(conn uuid.UUID, ev Event)
}

// binding ties a connection to the room and seat it currently occupies.
type binding struct {
	code string
	seat int
}

// Dispatcher is the single synchronous entry point for every inbound
// intent. It validates preconditions, mutates the room, and hands
// seat-specific projections to the Sender. One mutex serializes all
// intents across all rooms, so every mutation sequence is atomic with
// respect to every other intent; no further locking exists in the core.
type Dispatcher struct {
	// Historian, when set, receives a record of every dispatched action.
	Historian *cache.Historian
	// Store, when set, receives a summary row for every finished match.
	Store *database.Store

	mu       sync.Mutex
	registry *Registry
	sender   Sender
	conns    map[uuid.UUID]binding
	log      *logrus.Logger
}

// NewDispatcher builds a dispatcher over an owned registry.
func NewDispatcher(registry *Registry, sender Sender, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		conns:    make(map[uuid.UUID]binding),
		log:      log,
	}
}

// RoomExists reports whether a live room has the given code. Exposed for
// the HTTP surface (join links); takes the dispatcher lock.
func (d *Dispatcher) RoomExists(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.registry.Room(code)
	return ok
}

// HandleIntent processes one inbound intent to completion.
func (d *Dispatcher) HandleIntent(conn uuid.UUID, in Intent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := in.Validate(); err != nil {
		d.log.WithFields(logrus.Fields{"conn": conn, "intent": in.Type}).
			Debugf("rejected malformed intent: %v", err)
		d.sendError(conn, err)
		return
	}

	switch in.Type {
	case IntentCreateRoom:
		d.handleCreateRoom(conn, in)
	case IntentJoinRoom:
		d.handleJoinRoom(conn, in)
	case IntentStartGame:
		d.handleStartGame(conn)
	case IntentPlayCard:
		d.handlePlayCard(conn, *in.CardIndex)
	case IntentSelectColor:
		d.handleSelectColor(conn, *in.CardIndex, in.Color)
	case IntentDrawCard:
		d.handleDrawCard(conn)
	case IntentPassCard:
		d.handlePassCard(conn)
	case IntentCallUno:
		d.handleCallUno(conn)
	}
}

// HandleDisconnect applies the teardown policy for a closed connection:
// an active room is destroyed outright, a lobby seat is cleared and the
// room lives on until it empties.
func (d *Dispatcher) HandleDisconnect(conn uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.conns[conn]
	if !ok {
		return
	}
	delete(d.conns, conn)

	room, ok := d.registry.Room(b.code)
	if !ok {
		return
	}
	player := room.Seats[b.seat]
	if player == nil || player.Conn != conn {
		return
	}

	d.log.WithFields(logrus.Fields{"room": room.Code, "seat": b.seat, "phase": room.Phase}).
		Info("player disconnected")
	d.record(room.Code, b.seat, "disconnect", nil)

	if room.Phase == PhaseActive {
		// No reconnection window: any mid-game disconnect kills the room.
		d.broadcast(room, Event{
			Type:   EventPlayerDisconnected,
			Player: &SeatRef{Seat: b.seat, Name: player.Name},
		})
		d.destroyRoom(room)
		return
	}

	room.ClearSeat(b.seat)
	if room.OccupiedCount() == 0 {
		d.registry.Remove(room.Code)
		return
	}
	d.broadcast(room, Event{
		Type:   EventPlayerDisconnected,
		Player: &SeatRef{Seat: b.seat, Name: player.Name},
	})
	d.broadcastRoomUpdate(room)
}

func (d *Dispatcher) handleCreateRoom(conn uuid.UUID, in Intent) {
	if _, bound := d.conns[conn]; bound {
		d.sendError(conn, errors.New("already in a room"))
		return
	}
	room := d.registry.CreateRoom(in.PlayerName, in.MaxPlayers, conn)
	d.conns[conn] = binding{code: room.Code, seat: room.HostSeat}

	d.log.WithFields(logrus.Fields{"room": room.Code, "maxPlayers": room.MaxPlayers, "host": in.PlayerName}).
		Info("room created")
	d.record(room.Code, room.HostSeat, "createRoom", map[string]any{"maxPlayers": room.MaxPlayers})

	d.sender.Send(conn, Event{
		Type: EventRoomCreated,
		Room: &RoomInfo{RoomCode: room.Code, SeatIndex: room.HostSeat, MaxPlayers: room.MaxPlayers},
	})
	d.broadcastRoomUpdate(room)
}

func (d *Dispatcher) handleJoinRoom(conn uuid.UUID, in Intent) {
	if _, bound := d.conns[conn]; bound {
		d.sendError(conn, errors.New("already in a room"))
		return
	}
	room, seat, err := d.registry.JoinRoom(in.RoomCode, in.PlayerName, conn)
	if err != nil {
		d.sendError(conn, err)
		return
	}
	d.conns[conn] = binding{code: room.Code, seat: seat}

	d.log.WithFields(logrus.Fields{"room": room.Code, "seat": seat, "name": in.PlayerName}).
		Info("player joined")
	d.record(room.Code, seat, "joinRoom", nil)

	d.sender.Send(conn, Event{
		Type: EventRoomJoined,
		Room: &RoomInfo{RoomCode: room.Code, SeatIndex: seat, MaxPlayers: room.MaxPlayers},
	})
	d.broadcastRoomUpdate(room)

	if room.OccupiedCount() == room.MaxPlayers {
		d.startRoom(room)
	}
}

func (d *Dispatcher) handleStartGame(conn uuid.UUID) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		d.sendError(conn, ErrRoomNotFound)
		return
	}
	if room.Phase != PhaseLobby {
		d.sendError(conn, ErrGameAlreadyStarted)
		return
	}
	if seat != room.HostSeat {
		d.sendError(conn, ErrNotHost)
		return
	}
	if room.OccupiedCount() < 2 {
		d.sendError(conn, ErrNotEnoughPlayers)
		return
	}
	d.startRoom(room)
}

func (d *Dispatcher) startRoom(room *Room) {
	if err := room.Start(); err != nil {
		d.log.WithField("room", room.Code).Errorf("start failed: %v", err)
		return
	}
	d.log.WithFields(logrus.Fields{"room": room.Code, "players": room.OccupiedCount()}).
		Info("game started")
	d.record(room.Code, -1, "gameStarted", map[string]any{"players": room.OccupiedCount()})

	d.broadcast(room, Event{Type: EventGameStarted})
	d.broadcastState(room)
}

func (d *Dispatcher) handlePlayCard(conn uuid.UUID, idx int) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		return
	}
	winner, err := room.PlayCard(seat, idx)
	if err != nil {
		if !errors.Is(err, ErrOutOfTurn) {
			d.sendError(conn, err)
		}
		return
	}
	d.record(room.Code, seat, "playCard", map[string]any{"card": room.TopCard().String()})
	d.afterPlay(room, winner)
}

func (d *Dispatcher) handleSelectColor(conn uuid.UUID, idx int, colorName string) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		return
	}
	color, err := ParseColor(colorName)
	if err != nil {
		d.sendError(conn, err)
		return
	}
	winner, err := room.PlayWild(seat, idx, color)
	if err != nil {
		if !errors.Is(err, ErrOutOfTurn) {
			d.sendError(conn, err)
		}
		return
	}
	d.record(room.Code, seat, "selectColor", map[string]any{
		"card":  room.TopCard().String(),
		"color": color.String(),
	})
	d.afterPlay(room, winner)
}

// afterPlay publishes the outcome of a resolved play: the win announcement
// if a hand emptied, otherwise the updated projections.
func (d *Dispatcher) afterPlay(room *Room, winner int) {
	if winner >= 0 {
		d.finishGame(room, winner)
		return
	}
	d.broadcastState(room)
}

func (d *Dispatcher) handleDrawCard(conn uuid.UUID) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		return
	}
	// Unmet preconditions are ignored without an error frame.
	if err := room.DrawForTurn(seat); err != nil {
		return
	}
	d.record(room.Code, seat, "drawCard", nil)
	d.broadcastState(room)
}

func (d *Dispatcher) handlePassCard(conn uuid.UUID) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		return
	}
	if err := room.PassTurn(seat); err != nil {
		return
	}
	d.record(room.Code, seat, "passCard", nil)
	d.broadcastState(room)
}

func (d *Dispatcher) handleCallUno(conn uuid.UUID) {
	room, seat, ok := d.roomFor(conn)
	if !ok {
		return
	}
	if room.Phase != PhaseActive || len(room.Hands[seat]) != 1 {
		return
	}
	d.record(room.Code, seat, "callUno", nil)
	d.broadcast(room, Event{
		Type:   EventUnoCall,
		Player: &SeatRef{Seat: seat, Name: room.Seats[seat].Name},
	})
}

// finishGame announces the winner, persists the result, and destroys the
// room. No gameState follows the announcement.
func (d *Dispatcher) finishGame(room *Room, winner int) {
	winnerName := room.Seats[winner].Name
	d.log.WithFields(logrus.Fields{"room": room.Code, "winner": winner, "name": winnerName}).
		Info("game over")
	d.record(room.Code, winner, "gameOver", map[string]any{"winnerName": winnerName})

	d.broadcast(room, Event{
		Type:   EventGameOver,
		Result: &GameOverInfo{WinnerSeat: winner, WinnerName: winnerName},
	})

	if d.Store != nil {
		players := make([]string, 0, room.MaxPlayers)
		for _, p := range room.Seats {
			if p != nil {
				players = append(players, p.Name)
			}
		}
		res := database.MatchResult{
			RoomCode:   room.Code,
			WinnerSeat: winner,
			WinnerName: winnerName,
			Players:    players,
			FinishedAt: time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := d.Store.InsertMatchResult(ctx, res); err != nil {
				d.log.Errorf("failed storing match result for room %s: %v", res.RoomCode, err)
			}
		}()
	}

	d.destroyRoom(room)
}

// destroyRoom removes the room and every connection binding into it.
func (d *Dispatcher) destroyRoom(room *Room) {
	for _, p := range room.Seats {
		if p != nil {
			delete(d.conns, p.Conn)
		}
	}
	d.registry.Remove(room.Code)
}

// roomFor resolves a connection to its room and seat.
func (d *Dispatcher) roomFor(conn uuid.UUID) (*Room, int, bool) {
	b, ok := d.conns[conn]
	if !ok {
		return nil, -1, false
	}
	room, ok := d.registry.Room(b.code)
	if !ok {
		return nil, -1, false
	}
	return room, b.seat, true
}

// broadcast sends the same event to every occupied seat of the room.
// gameState is never sent this way; projections are always per seat.
func (d *Dispatcher) broadcast(room *Room, ev Event) {
	for _, p := range room.Seats {
		if p != nil {
			d.sender.Send(p.Conn, ev)
		}
	}
}

// broadcastState sends each occupied seat its own projection.
func (d *Dispatcher) broadcastState(room *Room) {
	for seat, p := range room.Seats {
		if p == nil {
			continue
		}
		view := room.ViewFor(seat)
		d.sender.Send(p.Conn, Event{Type: EventGameState, State: &view})
	}
}

func (d *Dispatcher) broadcastRoomUpdate(room *Room) {
	d.broadcast(room, Event{
		Type: EventRoomUpdated,
		Update: &RoomUpdate{
			Seats:         room.SeatViews(),
			OccupiedCount: room.OccupiedCount(),
			MaxPlayers:    room.MaxPlayers,
		},
	})
}

func (d *Dispatcher) sendError(conn uuid.UUID, err error) {
	d.sender.Send(conn, Event{Type: EventError, Message: err.Error()})
}

// record publishes an action record to the historian, when configured.
// Publishing happens off the intent path with a short timeout.
func (d *Dispatcher) record(roomCode string, actorSeat int, actionType string, payload map[string]any) {
	if d.Historian == nil {
		return
	}
	rec := cache.GameActionRecord{
		RoomCode:   roomCode,
		ActorSeat:  actorSeat,
		ActionType: actionType,
		Payload:    payload,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := d.Historian.Publish(ctx, rec); err != nil {
			d.log.Debugf("failed publishing action %s for room %s: %v", rec.ActionType, rec.RoomCode, err)
		}
	}()
}
