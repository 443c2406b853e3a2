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

package conf

import (
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideHttpConfig, ProvideStorageConfig, ProvideRealtimeConfig)

func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	return &appConf.Http
}

func ProvideStorageConfig(appConf *AppConfig) *storage.Storage {
	return &appConf.Storage
}

func ProvideRealtimeConfig(appConf *AppConfig) *realtime.Config {
	return &appConf.Realtime
}
