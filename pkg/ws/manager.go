// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ws

import (
	"slices"
	"sync"

	"github.com/go-arcade/taskflow/pkg/log"
)

// DefaultHub is the in-process Hub. Membership is guarded by one RWMutex and
// sends go through each connection's bounded buffer, so a broadcast never blocks
// on a slow reader; such readers are disconnected instead.
type DefaultHub struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]map[string]Conn
	// joined is the reverse index connId -> rooms.
	joined map[string]map[string]struct{}

	onSlow func(Conn)
}

type HubOption func(*DefaultHub)

// WithSlowConsumerHook is called after a connection is dropped for a full buffer.
func WithSlowConsumerHook(f func(Conn)) HubOption {
	return func(h *DefaultHub) {
		h.onSlow = f
	}
}

func NewHub(opts ...HubOption) *DefaultHub {
	h := &DefaultHub{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Conn),
		joined: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *DefaultHub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID()] = conn
}

func (h *DefaultHub) Unregister(conn Conn) {
	h.mu.Lock()
	h.removeLocked(conn.ID())
	h.mu.Unlock()
}

func (h *DefaultHub) removeLocked(id string) {
	for room := range h.joined[id] {
		members := h.rooms[room]
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined, id)
	delete(h.conns, id)
}

func (h *DefaultHub) Join(room string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := conn.ID()
	if _, ok := h.conns[id]; !ok {
		h.conns[id] = conn
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Conn)
		h.rooms[room] = members
	}
	members[id] = conn

	rooms, ok := h.joined[id]
	if !ok {
		rooms = make(map[string]struct{})
		h.joined[id] = rooms
	}
	rooms[room] = struct{}{}
}

func (h *DefaultHub) Leave(room string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := conn.ID()
	if members, ok := h.rooms[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined[id], room)
}

func (h *DefaultHub) InRoom(room, connId string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][connId]
	return ok
}

func (h *DefaultHub) Rooms(connId string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]string, 0, len(h.joined[connId]))
	for room := range h.joined[connId] {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)
	return rooms
}

func (h *DefaultHub) BroadcastRoom(room string, data []byte, excludeId string) int {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.rooms[room]))
	for id, conn := range h.rooms[room] {
		if id != excludeId {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	return h.deliver(targets, data)
}

func (h *DefaultHub) deliver(targets []Conn, data []byte) int {
	sent := 0
	for _, conn := range targets {
		if conn.Send(data) {
			sent++
			continue
		}
		h.drop(conn)
	}
	return sent
}

// drop disconnects a connection whose buffer is full.
func (h *DefaultHub) drop(conn Conn) {
	select {
	case <-conn.Done():
		return
	default:
	}
	log.Warnw("dropping slow websocket consumer", "connId", conn.ID(), "remote", conn.RemoteAddr())
	h.Unregister(conn)
	_ = conn.Close()
	if h.onSlow != nil {
		h.onSlow(conn)
	}
}

func (h *DefaultHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *DefaultHub) Close() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for id, conn := range h.conns {
		conns = append(conns, conn)
		h.removeLocked(id)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
