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

package router

import (
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/service"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideRouter)

func ProvideRouter(httpConf *http.Http, storageConf *storage.Storage, realtimeConf *realtime.Config,
	services *service.Services, m *metrics.Metrics, hub *ws.DefaultHub) *Router {
	return NewRouter(httpConf, storageConf, realtimeConf, services, m, hub)
}
