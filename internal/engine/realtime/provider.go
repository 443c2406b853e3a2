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
	"time"

	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

var ProviderSet = wire.NewSet(ProvideConnHub, ProvideBroadcaster)

// Config is the [Realtime] section.
type Config struct {
	SendBuffer   int
	PingInterval int // seconds
	Relay        bool
	RelayChannel string
}

// Options maps the section onto websocket endpoint options.
func (c *Config) Options() ws.Options {
	return ws.Options{
		SendBuffer:   c.SendBuffer,
		PingInterval: time.Duration(c.PingInterval) * time.Second,
	}
}

func ProvideConnHub(m *metrics.Metrics) *ws.DefaultHub {
	return ws.NewHub(ws.WithSlowConsumerHook(func(ws.Conn) {
		m.SlowConsumerDropped()
	}))
}

// ProvideBroadcaster returns the in-process hub, or a redis relay around it when
// cross-instance fan-out is enabled. The cleanup stops the relay subscription.
func ProvideBroadcaster(cfg *Config, hub *ws.DefaultHub, client *redis.Client) (Broadcaster, func(), error) {
	local := NewHub(hub)
	if !cfg.Relay {
		return local, func() {}, nil
	}
	relay := NewRedisRelay(local, client, cfg.RelayChannel)
	if err := relay.Start(context.Background()); err != nil {
		return nil, nil, err
	}
	return relay, func() { _ = relay.Close() }, nil
}
