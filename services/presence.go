package services

import (
	"fmt"
	"log"
	"strconv"
	"sync"
)

// Presence tracks which user each live connection authenticates as and
// which rooms it has joined. It is process-local and mirrors transient
// socket state only; conversation membership of record lives in the
// database. One user may hold any number of simultaneous connections.
//
// Reads (every broadcast) vastly outnumber writes (connect, disconnect,
// join, leave), hence the RWMutex.
type Presence struct {
	mu    sync.RWMutex
	conns map[string]*presenceEntry
	rooms map[string]map[string]struct{}
}

type presenceEntry struct {
	userID uint
	rooms  map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{
		conns: make(map[string]*presenceEntry),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register binds a connection to an authenticated user. Re-registering
// the same connection under a different user keeps the last write but
// logs the inconsistency.
func (p *Presence) Register(connID string, userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.conns[connID]; ok {
		if entry.userID != userID {
			log.Printf("presence: connection %s re-registered as user %d (was %d)", connID, userID, entry.userID)
		}
		entry.userID = userID
		return
	}
	p.conns[connID] = &presenceEntry{userID: userID, rooms: make(map[string]struct{})}
}

// Unregister removes the connection and every room membership it held.
// Safe to call for a connection that was never registered.
func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.conns[connID]
	if !ok {
		return
	}
	for room := range entry.rooms {
		p.dropFromRoom(room, connID)
	}
	delete(p.conns, connID)
}

// JoinRoom adds a room membership for a registered connection. Joining
// a room twice is a no-op, as is joining from an unknown connection.
func (p *Presence) JoinRoom(connID, room string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.conns[connID]
	if !ok {
		return
	}
	entry.rooms[room] = struct{}{}
	if p.rooms[room] == nil {
		p.rooms[room] = make(map[string]struct{})
	}
	p.rooms[room][connID] = struct{}{}
}

func (p *Presence) LeaveRoom(connID, room string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.conns[connID]
	if !ok {
		return
	}
	delete(entry.rooms, room)
	p.dropFromRoom(room, connID)
}

// ConnectionsIn returns a snapshot of the connections currently in the
// room. The caller may range over it without holding any lock.
func (p *Presence) ConnectionsIn(room string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	members := p.rooms[room]
	out := make([]string, 0, len(members))
	for connID := range members {
		out = append(out, connID)
	}
	return out
}

// UserOf reports which user a connection is registered as.
func (p *Presence) UserOf(connID string) (uint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.conns[connID]
	if !ok {
		return 0, false
	}
	return entry.userID, true
}

// dropFromRoom removes a connection from a room's member set and prunes
// the set when it empties. Caller holds the write lock.
func (p *Presence) dropFromRoom(room, connID string) {
	if members, ok := p.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(p.rooms, room)
		}
	}
}

// PersonalRoom is the per-user room every connection auto-joins.
func PersonalRoom(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// ConversationRoom is the broadcast room for one conversation.
func ConversationRoom(conversationID uint) string {
	return fmt.Sprintf("chat_%d", conversationID)
}
