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
	"context"
)

// Conn is one websocket connection as seen by the hub and handlers.
type Conn interface {
	// ID returns the unique connection id.
	ID() string

	// Send queues data for the write pump. It never blocks and returns false when
	// the send buffer is full or the connection is closed.
	Send(data []byte) bool

	Close() error

	// Done is closed once the connection is closed.
	Done() <-chan struct{}

	RemoteAddr() string

	// Locals returns a value stored on the upgrade request.
	Locals(key string) any

	// Context is cancelled when the connection closes.
	Context() context.Context
}

// Hub tracks connections and their room memberships.
type Hub interface {
	Register(conn Conn)

	// Unregister removes conn from the hub and from every room it joined.
	Unregister(conn Conn)

	Join(room string, conn Conn)
	Leave(room string, conn Conn)
	InRoom(room, connId string) bool
	Rooms(connId string) []string

	// BroadcastRoom sends data to every member of room except excludeId and returns
	// the number of connections it was queued for.
	BroadcastRoom(room string, data []byte, excludeId string) int

	Count() int

	// Close closes every connection.
	Close()
}

// Handler receives connection lifecycle events.
type Handler interface {
	OnConnect(conn Conn) error
	OnMessage(conn Conn, messageType int, data []byte) error
	OnDisconnect(conn Conn, err error)
	OnError(conn Conn, err error)
}

const (
	TextMessage   = 1
	BinaryMessage = 2
	CloseMessage  = 8
	PingMessage   = 9
	PongMessage   = 10
)
