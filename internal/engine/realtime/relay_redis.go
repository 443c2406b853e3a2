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
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/taskflow/pkg/id"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/retry"
	"github.com/go-arcade/taskflow/pkg/safe"
	"github.com/redis/go-redis/v9"
)

const defaultRelayChannel = "taskflow:realtime"

type relayEnvelope struct {
	Origin string `json:"origin"`
	Room   string `json:"room"`
	Except string `json:"except,omitempty"`
	Frame  []byte `json:"frame"`
}

// RedisRelay delivers locally and publishes every event on a redis channel so
// that other instances deliver it to their own connections.
type RedisRelay struct {
	local   *Hub
	client  *redis.Client
	channel string
	origin  string

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

func NewRedisRelay(local *Hub, client *redis.Client, channel string) *RedisRelay {
	if channel == "" {
		channel = defaultRelayChannel
	}
	return &RedisRelay{
		local:   local,
		client:  client,
		channel: channel,
		origin:  id.GetXid(),
	}
}

func (r *RedisRelay) Emit(ctx context.Context, room, event string, data any, exceptConn string) error {
	if room == "" {
		return nil
	}
	frame, err := Encode(event, data)
	if err != nil {
		return err
	}
	r.local.deliver(room, frame, exceptConn)

	payload, err := sonic.Marshal(relayEnvelope{Origin: r.origin, Room: room, Except: exceptConn, Frame: frame})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		log.Warnw("realtime relay publish failed", "room", room, "event", event, "error", err)
		return err
	}
	return nil
}

// Start subscribes to the relay channel until ctx is done or Close is called.
func (r *RedisRelay) Start(ctx context.Context) error {
	err := retry.Do(ctx, func(ctx context.Context) error {
		pubsub := r.client.Subscribe(ctx, r.channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return err
		}
		r.pubsub = pubsub
		return nil
	}, retry.WithAttempts(3), retry.WithBackoff(retry.Exponential(200*time.Millisecond, 2*time.Second)))
	if err != nil {
		return err
	}
	ch := r.pubsub.Channel()

	r.wg.Add(1)
	safe.Go(func() {
		defer r.wg.Done()
		for msg := range ch {
			r.handle([]byte(msg.Payload))
		}
	})
	log.Infow("realtime relay subscribed", "channel", r.channel, "origin", r.origin)
	return nil
}

func (r *RedisRelay) handle(payload []byte) {
	var env relayEnvelope
	if err := sonic.Unmarshal(payload, &env); err != nil {
		log.Warnw("realtime relay dropped malformed envelope", "error", err)
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.local.deliver(env.Room, env.Frame, env.Except)
}

func (r *RedisRelay) Close() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	r.wg.Wait()
	return err
}
