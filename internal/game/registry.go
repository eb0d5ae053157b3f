package game

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Registry owns the live room table, keyed by room code. It is an
// explicitly constructed object rather than process-global state so that
// independent registries can coexist (one per test, for instance).
//
// Registry methods are not safe for concurrent use; the Dispatcher
// serializes all access.
type Registry struct {
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewRegistry creates an empty registry. The random source feeds both room
// code generation and every room's shuffles, so a seeded source makes a
// whole session deterministic.
func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rng,
	}
}

// CreateRoom creates a room with a fresh collision-checked code and seats
// the host at index 0. maxPlayers of 0 selects the 2-player default.
func (reg *Registry) CreateRoom(hostName string, maxPlayers int, conn uuid.UUID) *Room {
	if maxPlayers == 0 {
		maxPlayers = 2
	}
	room := NewRoom(reg.newCode(), maxPlayers, reg.rng)
	room.Seats[0] = &Player{Name: hostName, Conn: conn}
	room.Hands[0] = []Card{}
	room.HostSeat = 0
	reg.rooms[room.Code] = room
	return room
}

// JoinRoom seats a player in the first empty seat of the named room.
func (reg *Registry) JoinRoom(code, name string, conn uuid.UUID) (*Room, int, error) {
	room, ok := reg.rooms[code]
	if !ok {
		return nil, -1, ErrRoomNotFound
	}
	seat, err := room.Seat(&Player{Name: name, Conn: conn})
	if err != nil {
		return nil, -1, err
	}
	return room, seat, nil
}

// Room looks up a live room by code.
func (reg *Registry) Room(code string) (*Room, bool) {
	room, ok := reg.rooms[code]
	return room, ok
}

// Remove destroys a room. Safe to call for an unknown code.
func (reg *Registry) Remove(code string) {
	delete(reg.rooms, code)
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	return len(reg.rooms)
}

// newCode generates a short room code unused by any live room.
func (reg *Registry) newCode() string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[reg.rng.Intn(len(codeAlphabet))]
		}
		if _, taken := reg.rooms[string(buf)]; !taken {
			return string(buf)
		}
	}
}
