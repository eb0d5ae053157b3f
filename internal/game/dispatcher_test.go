package game

import (
	"io"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender captures outbound events per connection for assertions.
type mockSender struct {
	events map[uuid.UUID][]Event
}

func newMockSender() *mockSender {
	return &mockSender{events: make(map[uuid.UUID][]Event)}
}

func (m *mockSender) Send(conn uuid.UUID, ev Event) {
	m.events[conn] = append(m.events[conn], ev)
}

// ofType returns the events of one type delivered to one connection.
func (m *mockSender) ofType(conn uuid.UUID, t EventType) []Event {
	var out []Event
	for _, ev := range m.events[conn] {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (m *mockSender) total(conn uuid.UUID) int {
	return len(m.events[conn])
}

func newTestDispatcher() (*Dispatcher, *mockSender) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	sender := newMockSender()
	registry := NewRegistry(rand.New(rand.NewSource(1)))
	return NewDispatcher(registry, sender, log), sender
}

func intIdx(i int) *int { return &i }

// createRoomFor issues a createRoom intent and returns the assigned room code.
func createRoomFor(t *testing.T, d *Dispatcher, sender *mockSender, conn uuid.UUID, name string, maxPlayers int) string {
	t.Helper()
	d.HandleIntent(conn, Intent{Type: IntentCreateRoom, PlayerName: name, MaxPlayers: maxPlayers})
	acks := sender.ofType(conn, EventRoomCreated)
	require.Len(t, acks, 1)
	return acks[0].Room.RoomCode
}

func TestCreateRoomAcknowledged(t *testing.T) {
	d, sender := newTestDispatcher()
	alice := uuid.New()

	code := createRoomFor(t, d, sender, alice, "alice", 4)

	ack := sender.ofType(alice, EventRoomCreated)[0]
	assert.Equal(t, 0, ack.Room.SeatIndex)
	assert.Equal(t, 4, ack.Room.MaxPlayers)
	assert.True(t, d.RoomExists(code))

	updates := sender.ofType(alice, EventRoomUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, 1, updates[0].Update.OccupiedCount)
}

func TestCreateWhileBoundRejected(t *testing.T) {
	d, sender := newTestDispatcher()
	alice := uuid.New()
	createRoomFor(t, d, sender, alice, "alice", 4)

	d.HandleIntent(alice, Intent{Type: IntentCreateRoom, PlayerName: "alice"})
	errs := sender.ofType(alice, EventError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "already in a room")
}

func TestMalformedIntentRejected(t *testing.T) {
	d, sender := newTestDispatcher()
	conn := uuid.New()

	d.HandleIntent(conn, Intent{Type: IntentCreateRoom})
	require.Len(t, sender.ofType(conn, EventError), 1)

	d.HandleIntent(conn, Intent{Type: "bogus"})
	require.Len(t, sender.ofType(conn, EventError), 2)
}

func TestJoinAutoStartsWhenFull(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)

	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	joined := sender.ofType(bob, EventRoomJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, 1, joined[0].Room.SeatIndex)

	for _, conn := range []uuid.UUID{alice, bob} {
		assert.Len(t, sender.ofType(conn, EventGameStarted), 1)
		require.Len(t, sender.ofType(conn, EventGameState), 1)
	}

	aliceState := sender.ofType(alice, EventGameState)[0].State
	assert.Equal(t, 0, aliceState.Seat)
	assert.Len(t, aliceState.Hand, 7)
}

func TestJoinUnknownRoom(t *testing.T) {
	d, sender := newTestDispatcher()
	bob := uuid.New()
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: "NOSUCH", PlayerName: "bob"})
	errs := sender.ofType(bob, EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrRoomNotFound.Error(), errs[0].Message)
}

func TestStartGameAuthorization(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 3)

	// Host alone cannot start.
	d.HandleIntent(alice, Intent{Type: IntentStartGame})
	errs := sender.ofType(alice, EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotEnoughPlayers.Error(), errs[0].Message)

	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	// Only the host may start.
	d.HandleIntent(bob, Intent{Type: IntentStartGame})
	bobErrs := sender.ofType(bob, EventError)
	require.Len(t, bobErrs, 1)
	assert.Equal(t, ErrNotHost.Error(), bobErrs[0].Message)

	d.HandleIntent(alice, Intent{Type: IntentStartGame})
	assert.Len(t, sender.ofType(alice, EventGameStarted), 1)
	assert.Len(t, sender.ofType(bob, EventGameStarted), 1)

	// Starting twice fails.
	d.HandleIntent(alice, Intent{Type: IntentStartGame})
	aliceErrs := sender.ofType(alice, EventError)
	require.Len(t, aliceErrs, 2)
	assert.Equal(t, ErrGameAlreadyStarted.Error(), aliceErrs[1].Message)
}

// Every projection delivered to a connection must carry only that seat's
// hand; other seats appear as card counts.
func TestProjectionsNeverLeakOtherHands(t *testing.T) {
	d, sender := newTestDispatcher()
	conns := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	code := createRoomFor(t, d, sender, conns[0], "alice", 3)
	d.HandleIntent(conns[1], Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})
	d.HandleIntent(conns[2], Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "carol"})

	for seat, conn := range conns {
		for _, ev := range sender.ofType(conn, EventGameState) {
			require.NotNil(t, ev.State)
			assert.Equal(t, seat, ev.State.Seat)
			assert.Len(t, ev.State.Hand, 7)
			for _, sv := range ev.State.Players {
				assert.Equal(t, 7, sv.CardCount)
				assert.True(t, sv.Occupied)
			}
		}
	}
}

func TestOutOfTurnPlayIsSilent(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	room, ok := d.registry.Room(code)
	require.True(t, ok)
	require.Equal(t, 0, room.CurrentSeat)

	before := sender.total(bob)
	d.HandleIntent(bob, Intent{Type: IntentPlayCard, CardIndex: intIdx(0)})
	d.HandleIntent(bob, Intent{Type: IntentDrawCard})
	d.HandleIntent(bob, Intent{Type: IntentPassCard})
	assert.Equal(t, before, sender.total(bob), "out-of-turn intents produce no frames")
	assert.Len(t, sender.ofType(bob, EventError), 0)
}

func TestIllegalPlayGetsErrorFrame(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	room, ok := d.registry.Room(code)
	require.True(t, ok)
	room.Hands[0] = []Card{{ColorGreen, Value8}}
	room.DiscardPile = []Card{{ColorRed, Value5}}
	room.ActiveColor = ColorRed

	d.HandleIntent(alice, Intent{Type: IntentPlayCard, CardIndex: intIdx(0)})
	errs := sender.ofType(alice, EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrIllegalPlay.Error(), errs[0].Message)

	d.HandleIntent(alice, Intent{Type: IntentPlayCard, CardIndex: intIdx(9)})
	errs = sender.ofType(alice, EventError)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrInvalidCardIndex.Error(), errs[1].Message)
}

func TestWildNeedsColorSelection(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	room, ok := d.registry.Room(code)
	require.True(t, ok)
	room.Hands[0] = []Card{{ColorWild, ValueWild}, {ColorRed, Value1}}
	room.DiscardPile = []Card{{ColorRed, Value5}}
	room.ActiveColor = ColorRed

	d.HandleIntent(alice, Intent{Type: IntentPlayCard, CardIndex: intIdx(0)})
	errs := sender.ofType(alice, EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrColorRequired.Error(), errs[0].Message)

	d.HandleIntent(alice, Intent{Type: IntentSelectColor, CardIndex: intIdx(0), Color: "green"})
	assert.Equal(t, ColorGreen, room.ActiveColor)
	assert.Equal(t, 1, room.CurrentSeat)
}

func TestWinningPlayEndsRoom(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	room, ok := d.registry.Room(code)
	require.True(t, ok)
	room.Hands[0] = []Card{{ColorRed, Value1}}
	room.DiscardPile = []Card{{ColorRed, Value5}}
	room.ActiveColor = ColorRed

	aliceStates := len(sender.ofType(alice, EventGameState))
	d.HandleIntent(alice, Intent{Type: IntentPlayCard, CardIndex: intIdx(0)})

	for _, conn := range []uuid.UUID{alice, bob} {
		overs := sender.ofType(conn, EventGameOver)
		require.Len(t, overs, 1)
		assert.Equal(t, 0, overs[0].Result.WinnerSeat)
		assert.Equal(t, "alice", overs[0].Result.WinnerName)
	}
	assert.Len(t, sender.ofType(alice, EventGameState), aliceStates,
		"no projection follows the win announcement")
	assert.False(t, d.RoomExists(code))

	// Stale intents after teardown produce nothing.
	before := sender.total(alice)
	d.HandleIntent(alice, Intent{Type: IntentDrawCard})
	assert.Equal(t, before, sender.total(alice))
}

func TestDisconnectDuringGameDestroysRoom(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	d.HandleDisconnect(bob)

	gone := sender.ofType(alice, EventPlayerDisconnected)
	require.Len(t, gone, 1)
	assert.Equal(t, 1, gone[0].Player.Seat)
	assert.Equal(t, "bob", gone[0].Player.Name)
	assert.False(t, d.RoomExists(code))
}

func TestDisconnectInLobbyClearsSeat(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 3)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	// The host leaving transfers hosting; the room survives.
	d.HandleDisconnect(alice)
	require.True(t, d.RoomExists(code))
	room, _ := d.registry.Room(code)
	assert.Equal(t, 1, room.HostSeat)
	assert.Len(t, sender.ofType(bob, EventPlayerDisconnected), 1)

	// Bob can now start-gate as host; alone he still lacks players.
	d.HandleIntent(bob, Intent{Type: IntentStartGame})
	errs := sender.ofType(bob, EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotEnoughPlayers.Error(), errs[0].Message)

	// Last player leaving removes the room quietly.
	d.HandleDisconnect(bob)
	assert.False(t, d.RoomExists(code))
}

func TestDisconnectUnknownConnIgnored(t *testing.T) {
	d, _ := newTestDispatcher()
	d.HandleDisconnect(uuid.New())
}

func TestCallUnoOnlyWithOneCard(t *testing.T) {
	d, sender := newTestDispatcher()
	alice, bob := uuid.New(), uuid.New()
	code := createRoomFor(t, d, sender, alice, "alice", 2)
	d.HandleIntent(bob, Intent{Type: IntentJoinRoom, RoomCode: code, PlayerName: "bob"})

	room, ok := d.registry.Room(code)
	require.True(t, ok)

	// Seven cards in hand: the call is ignored.
	d.HandleIntent(alice, Intent{Type: IntentCallUno})
	assert.Empty(t, sender.ofType(alice, EventUnoCall))
	assert.Empty(t, sender.ofType(bob, EventUnoCall))

	room.Hands[0] = []Card{{ColorRed, Value1}}
	d.HandleIntent(alice, Intent{Type: IntentCallUno})
	for _, conn := range []uuid.UUID{alice, bob} {
		calls := sender.ofType(conn, EventUnoCall)
		require.Len(t, calls, 1)
		assert.Equal(t, 0, calls[0].Player.Seat)
		assert.Equal(t, "alice", calls[0].Player.Name)
	}
}
