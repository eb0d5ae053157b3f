package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomSeatsHost(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))

	room := reg.CreateRoom("alice", 4, uuid.New())
	assert.Len(t, room.Code, codeLength)
	assert.Equal(t, 4, room.MaxPlayers)
	assert.Equal(t, 0, room.HostSeat)
	require.NotNil(t, room.Seats[0])
	assert.Equal(t, "alice", room.Seats[0].Name)
	assert.NotNil(t, room.Hands[0])
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Room(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestCreateRoomDefaultsToTwoSeats(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))
	room := reg.CreateRoom("alice", 0, uuid.New())
	assert.Equal(t, 2, room.MaxPlayers)
}

func TestCreateRoomCodesAreUnique(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		room := reg.CreateRoom("alice", 2, uuid.New())
		assert.False(t, seen[room.Code], "duplicate code %s", room.Code)
		seen[room.Code] = true
	}
}

func TestJoinRoomFillsLowestEmptySeat(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))
	room := reg.CreateRoom("alice", 3, uuid.New())

	joined, seat, err := reg.JoinRoom(room.Code, "bob", uuid.New())
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, 1, seat)

	// A vacated low seat is refilled first.
	room.ClearSeat(0)
	_, seat, err = reg.JoinRoom(room.Code, "carol", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, seat)
}

func TestJoinRoomErrors(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))

	_, _, err := reg.JoinRoom("NOSUCH", "bob", uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	room := reg.CreateRoom("alice", 2, uuid.New())
	_, _, err = reg.JoinRoom(room.Code, "bob", uuid.New())
	require.NoError(t, err)

	_, _, err = reg.JoinRoom(room.Code, "carol", uuid.New())
	assert.ErrorIs(t, err, ErrRoomFull)

	require.NoError(t, room.Start())
	room.ClearSeat(1)
	_, _, err = reg.JoinRoom(room.Code, "dave", uuid.New())
	assert.ErrorIs(t, err, ErrGameAlreadyStarted, "no joining mid-game even with a free seat")
}

func TestRemoveRoom(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))
	room := reg.CreateRoom("alice", 2, uuid.New())

	reg.Remove(room.Code)
	_, ok := reg.Room(room.Code)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	reg.Remove("NOSUCH")
}
