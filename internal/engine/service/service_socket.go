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

package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/http/middleware"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/ws"
)

var errNoCaller = errors.New("connection has no authenticated caller")

// socketSession is the per-connection state: who is connected and which chat
// room belongs to each joined project.
type socketSession struct {
	userId string

	mu     sync.Mutex
	joined map[string]string
}

// SocketHandler bridges websocket events to the chat service. It implements ws.Handler.
type SocketHandler struct {
	chat        *ChatService
	identity    *IdentityService
	hub         ws.Hub
	broadcaster realtime.Broadcaster
	metrics     *metrics.Metrics

	sessions sync.Map // conn id -> *socketSession
}

func NewSocketHandler(chat *ChatService, identity *IdentityService, hub ws.Hub, broadcaster realtime.Broadcaster, m *metrics.Metrics) *SocketHandler {
	return &SocketHandler{
		chat:        chat,
		identity:    identity,
		hub:         hub,
		broadcaster: broadcaster,
		metrics:     m,
	}
}

func (h *SocketHandler) OnConnect(conn ws.Conn) error {
	caller, ok := conn.Locals(middleware.CALLER).(*model.User)
	if !ok || caller == nil {
		return errNoCaller
	}
	h.sessions.Store(conn.ID(), &socketSession{
		userId: caller.ID.Hex(),
		joined: make(map[string]string),
	})
	h.metrics.ConnectionOpened()
	log.Infow("realtime connected", "connId", conn.ID(), "userId", caller.ID.Hex(), "remote", conn.RemoteAddr())
	return nil
}

func (h *SocketHandler) OnDisconnect(conn ws.Conn, err error) {
	v, ok := h.sessions.LoadAndDelete(conn.ID())
	if !ok {
		return
	}
	h.metrics.ConnectionClosed()
	log.Infow("realtime disconnected", "connId", conn.ID(), "userId", v.(*socketSession).userId, "reason", err)
}

// OnError reports err to the client as an error event.
func (h *SocketHandler) OnError(conn ws.Conn, err error) {
	msg := apperrors.Message(err, "internal error")
	if errors.Is(err, errNoCaller) {
		msg = "unauthorized"
	}
	if !isClientError(err) {
		log.Warnw("realtime event failed", "connId", conn.ID(), "error", err)
	}
	frame, encErr := realtime.Encode(realtime.EventError, realtime.ErrorPayload{Message: msg})
	if encErr != nil {
		return
	}
	conn.Send(frame)
}

func isClientError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrConflict)
}

func (h *SocketHandler) session(conn ws.Conn) (*socketSession, error) {
	v, ok := h.sessions.Load(conn.ID())
	if !ok {
		return nil, errNoCaller
	}
	return v.(*socketSession), nil
}

func (h *SocketHandler) OnMessage(conn ws.Conn, messageType int, data []byte) error {
	if messageType != ws.TextMessage {
		return apperrors.Validation("only text frames are supported")
	}
	frame, err := realtime.Decode(data)
	if err != nil {
		return apperrors.Validation("malformed event")
	}
	sess, err := h.session(conn)
	if err != nil {
		return err
	}
	ctx := conn.Context()

	// the caller is re-read on every event so deactivation and team changes apply
	caller, err := h.identity.Resolve(ctx, sess.userId)
	if err != nil {
		return err
	}

	switch frame.Event {
	case realtime.EventJoinProject:
		return h.join(ctx, conn, sess, caller, frame.Data)
	case realtime.EventLeaveProject:
		return h.leave(conn, sess, frame.Data)
	case realtime.EventSendMessage:
		var req model.SendMessageReq
		if err := decodePayload(frame.Data, &req); err != nil {
			return err
		}
		_, err := h.chat.Send(ctx, caller, &req)
		return err
	case realtime.EventTyping:
		return h.typing(ctx, conn, caller, frame.Data, realtime.EventUserTyping)
	case realtime.EventStopTyping:
		return h.typing(ctx, conn, caller, frame.Data, realtime.EventUserStopTyping)
	default:
		return apperrors.Validationf("unknown event: %q", frame.Event)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return apperrors.Validation("event payload is required")
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		return apperrors.Validation("malformed event payload")
	}
	return nil
}

func (h *SocketHandler) join(ctx context.Context, conn ws.Conn, sess *socketSession, caller *model.User, raw json.RawMessage) error {
	var req realtime.ProjectPayload
	if err := decodePayload(raw, &req); err != nil {
		return err
	}
	p, err := h.chat.Authorize(ctx, caller, req.ProjectId)
	if err != nil {
		return err
	}
	projectId := p.ID.Hex()

	h.hub.Join(realtime.ProjectRoom(projectId), conn)
	if room := realtime.ChatRoom(p.ChatRoom); room != "" {
		h.hub.Join(room, conn)
	}
	sess.mu.Lock()
	sess.joined[projectId] = p.ChatRoom
	sess.mu.Unlock()

	log.Debugw("realtime joined project", "connId", conn.ID(), "projectId", projectId)
	frame, err := realtime.Encode(realtime.EventJoined, realtime.JoinedPayload{ProjectId: projectId, ChatRoom: p.ChatRoom})
	if err != nil {
		return err
	}
	conn.Send(frame)
	return nil
}

func (h *SocketHandler) leave(conn ws.Conn, sess *socketSession, raw json.RawMessage) error {
	var req realtime.ProjectPayload
	if err := decodePayload(raw, &req); err != nil {
		return err
	}
	sess.mu.Lock()
	chatRoom, ok := sess.joined[req.ProjectId]
	delete(sess.joined, req.ProjectId)
	sess.mu.Unlock()
	if !ok {
		return nil
	}
	h.hub.Leave(realtime.ProjectRoom(req.ProjectId), conn)
	if room := realtime.ChatRoom(chatRoom); room != "" {
		h.hub.Leave(room, conn)
	}
	return nil
}

// typing relays an indicator to the other members of a joined project room.
// Connections that have not joined the project are ignored.
func (h *SocketHandler) typing(ctx context.Context, conn ws.Conn, caller *model.User, raw json.RawMessage, event string) error {
	var req realtime.TypingPayload
	if err := decodePayload(raw, &req); err != nil {
		return err
	}
	room := realtime.ProjectRoom(req.ProjectId)
	if req.ProjectId == "" || !h.hub.InRoom(room, conn.ID()) {
		return nil
	}
	payload := realtime.UserTypingPayload{
		UserId:   caller.ID.Hex(),
		UserName: caller.Name,
		TaskId:   req.TaskId,
	}
	return h.broadcaster.Emit(ctx, room, event, payload, conn.ID())
}
