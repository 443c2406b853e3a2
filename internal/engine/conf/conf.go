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
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/database"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/spf13/viper"
)

const envPrefix = "TASKFLOW"

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Mongo    database.MongoDB
	Redis    cache.Redis
	Storage  storage.Storage
	Realtime realtime.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.path", "./logs")
	v.SetDefault("log.filename", "taskflow.log")
	v.SetDefault("log.level", "INFO")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.mode", "debug")
	v.SetDefault("http.contextPath", "/api")
	v.SetDefault("http.bodyLimit", 32)
	v.SetDefault("http.accessLog", true)
	v.SetDefault("http.readTimeout", 60)
	v.SetDefault("http.writeTimeout", 60)
	v.SetDefault("http.idleTimeout", 120)
	v.SetDefault("http.shutdownTimeout", 30)
	v.SetDefault("http.auth.secretKey", "")
	v.SetDefault("http.auth.accessExpire", 60)
	v.SetDefault("http.auth.refreshExpire", 10080)
	v.SetDefault("http.auth.redisKeyPrefix", "taskflow:session:")

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.db", "taskflow")
	v.SetDefault("mongo.connectTimeout", 10)

	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.provider", storage.StorageLocal)
	v.SetDefault("storage.basePath", "data/uploads")
	v.SetDefault("storage.accessKey", "")
	v.SetDefault("storage.secretKey", "")
	v.SetDefault("storage.maxFileSize", 10)

	v.SetDefault("realtime.sendBuffer", 64)
	v.SetDefault("realtime.pingInterval", 30)
	v.SetDefault("realtime.relay", false)
	v.SetDefault("realtime.relayChannel", "taskflow:realtime")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadConfigFile reads the toml file at path. Every key can be overridden by an
// environment variable such as TASKFLOW_HTTP_PORT or TASKFLOW_MONGO_URI.
func LoadConfigFile(path string) (*AppConfig, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*AppConfig, *viper.Viper, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

// NewConf loads path and watches it. The log level is applied on change; other
// sections take effect after a restart.
func NewConf(path string) (*AppConfig, error) {
	cfg, v, err := load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	v.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			log.Errorw("reload configuration failed", "file", e.Name, "error", err)
			return
		}
		if next.Log.Level != level {
			log.SetLevel(next.Log.Level)
			log.Infow("log level changed", "from", level, "to", next.Log.Level)
			level = next.Log.Level
		}
		log.Infow("configuration file changed", "file", e.Name)
	})
	v.WatchConfig()

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d is out of range", c.Http.Port))
	}
	if c.Http.Auth.SecretKey == "" {
		errs = append(errs, errors.New("http.auth.secretKey is required"))
	}
	if c.Http.Auth.AccessExpire <= 0 || c.Http.Auth.RefreshExpire < c.Http.Auth.AccessExpire {
		errs = append(errs, errors.New("http.auth expiries must be positive and refresh must outlive access"))
	}
	if c.Mongo.Uri == "" || c.Mongo.DB == "" {
		errs = append(errs, errors.New("mongo.uri and mongo.db are required"))
	}
	if c.Realtime.Relay && c.Realtime.RelayChannel == "" {
		errs = append(errs, errors.New("realtime.relayChannel is required when relay is enabled"))
	}
	return errors.Join(errs...)
}
