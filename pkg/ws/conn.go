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
	"sync"
	"time"

	"github.com/go-arcade/taskflow/pkg/id"
	"github.com/go-arcade/taskflow/pkg/safe"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Options tune a websocket endpoint. Zero values fall back to defaults.
type Options struct {
	SendBuffer   int
	PingInterval time.Duration
	ReadLimit    int64
}

const (
	defaultSendBuffer = 64
	defaultReadLimit  = 1024 * 1024 // 1MB
	pongWait          = 60 * time.Second
	writeWait         = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.PingInterval <= 0 || o.PingInterval >= pongWait {
		o.PingInterval = (pongWait * 9) / 10
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	return o
}

type conn struct {
	ws        *websocket.Conn
	id        string
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(wsConn *websocket.Conn, sendBuffer int) *conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &conn{
		ws:     wsConn,
		id:     id.GetXid(),
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		closed: make(chan struct{}),
	}
}

func (c *conn) ID() string {
	return c.id
}

func (c *conn) Send(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.cancel()
		err = c.ws.Close()
	})
	return err
}

func (c *conn) Done() <-chan struct{} {
	return c.closed
}

func (c *conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

func (c *conn) Locals(key string) any {
	return c.ws.Locals(key)
}

func (c *conn) Context() context.Context {
	return c.ctx
}

// UpgradeRequired rejects plain HTTP requests on a websocket route.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handle serves websocket connections: the calling goroutine runs the read loop and
// a second goroutine pumps queued frames and pings to the peer.
func Handle(hub Hub, handler Handler, opts Options) fiber.Handler {
	opts = opts.withDefaults()
	return websocket.New(func(wsConn *websocket.Conn) {
		conn := newConn(wsConn, opts.SendBuffer)

		wsConn.SetReadLimit(opts.ReadLimit)
		_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
		wsConn.SetPongHandler(func(string) error {
			return wsConn.SetReadDeadline(time.Now().Add(pongWait))
		})

		var once sync.Once
		cleanup := func(err error) {
			once.Do(func() {
				hub.Unregister(conn)
				_ = conn.Close()
				handler.OnDisconnect(conn, err)
			})
		}

		hub.Register(conn)
		if err := handler.OnConnect(conn); err != nil {
			handler.OnError(conn, err)
			cleanup(err)
			return
		}

		safe.Go(func() {
			conn.writePump(opts.PingInterval)
		})

		for {
			messageType, message, err := wsConn.ReadMessage()
			if err != nil {
				cleanup(err)
				return
			}
			_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))

			if err := handler.OnMessage(conn, messageType, message); err != nil {
				handler.OnError(conn, err)
			}
		}
	})
}

// writePump is the only writer of the underlying connection.
func (c *conn) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(TextMessage, data); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
