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

package realtime

import (
	"context"

	"github.com/go-arcade/taskflow/pkg/ws"
)

// Broadcaster delivers events to rooms. It is constructed once and shared by the
// REST layer and the socket handler.
type Broadcaster interface {
	// Emit sends event to every connection in room except exceptConn.
	Emit(ctx context.Context, room, event string, data any, exceptConn string) error
}

// Hub fans events out to the connections of this process.
type Hub struct {
	hub ws.Hub
}

func NewHub(hub ws.Hub) *Hub {
	return &Hub{hub: hub}
}

func (h *Hub) Emit(_ context.Context, room, event string, data any, exceptConn string) error {
	if room == "" {
		return nil
	}
	frame, err := Encode(event, data)
	if err != nil {
		return err
	}
	h.hub.BroadcastRoom(room, frame, exceptConn)
	return nil
}

// deliver sends an encoded frame to local members of room.
func (h *Hub) deliver(room string, frame []byte, exceptConn string) {
	h.hub.BroadcastRoom(room, frame, exceptConn)
}
