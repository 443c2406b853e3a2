//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/go-arcade/taskflow/internal/app"
	"github.com/go-arcade/taskflow/internal/engine/conf"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/internal/engine/router"
	"github.com/go-arcade/taskflow/internal/engine/service"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/database"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func initApp(appConf *conf.AppConfig, logger *zap.Logger, mongoClient *database.MongoClient, redisClient *redis.Client) (*app.App, func(), error) {
	panic(wire.Build(
		conf.ProviderSet,
		database.ProviderSet,
		repo.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		realtime.ProviderSet,
		storage.ProviderSet,
		service.ProviderSet,
		router.ProviderSet,
		app.NewApp,
	))
}
