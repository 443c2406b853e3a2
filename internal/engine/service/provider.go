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
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet provides the service layer.
var ProviderSet = wire.NewSet(
	ProvideSessionStore,
	ProvideServices,
)

func ProvideSessionStore(client redis.Cmdable, httpConf *http.Http) SessionStore {
	return cache.NewSessionStore(client, httpConf.Auth.RedisKeyPrefix)
}

// ProvideServices builds the shared Services instance.
func ProvideServices(
	repos *repo.Repositories,
	local *cache.LocalCache,
	sessions SessionStore,
	httpConf *http.Http,
	hub *ws.DefaultHub,
	broadcaster realtime.Broadcaster,
	store storage.StorageProvider,
	storageConf *storage.Storage,
	m *metrics.Metrics,
) *Services {
	return NewServices(Deps{
		Repos:       repos,
		Local:       local,
		Sessions:    sessions,
		Auth:        httpConf.Auth,
		Hub:         hub,
		Broadcaster: broadcaster,
		Storage:     store,
		MaxUpload:   storageConf.MaxBytes(),
		Metrics:     m,
	})
}
