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

// Package realtime holds the wire format, room naming and fan-out of the
// realtime channel. Connections themselves are managed by pkg/ws.
package realtime

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Client -> server events.
const (
	EventJoinProject  = "join-project"
	EventLeaveProject = "leave-project"
	EventSendMessage  = "send-message"
	EventTyping       = "typing"
	EventStopTyping   = "stop-typing"
)

// Server -> client events.
const (
	EventJoined         = "joined"
	EventNewMessage     = "new-message"
	EventMessageUpdated = "message-updated"
	EventMessageDeleted = "message-deleted"
	EventUserTyping     = "user-typing"
	EventUserStopTyping = "user-stop-typing"
	EventError          = "error"
)

// Frame is the envelope of every message on the socket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an outgoing frame.
func Encode(event string, data any) ([]byte, error) {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(Frame{Event: event, Data: raw})
}

func Decode(b []byte) (*Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ProjectPayload is the payload of join-project and leave-project. A bare JSON
// string is accepted as the project id.
type ProjectPayload struct {
	ProjectId string `json:"projectId"`
}

func (p *ProjectPayload) UnmarshalJSON(b []byte) error {
	var id string
	if err := sonic.Unmarshal(b, &id); err == nil {
		p.ProjectId = id
		return nil
	}
	type plain ProjectPayload
	return sonic.Unmarshal(b, (*plain)(p))
}

type JoinedPayload struct {
	ProjectId string `json:"projectId"`
	ChatRoom  string `json:"chatRoom,omitempty"`
}

type TypingPayload struct {
	ProjectId string `json:"projectId"`
	TaskId    string `json:"taskId,omitempty"`
}

type UserTypingPayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	TaskId   string `json:"taskId,omitempty"`
}
