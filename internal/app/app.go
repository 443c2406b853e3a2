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

package app

import (
	"context"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/conf"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/internal/engine/router"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	HttpApp *fiber.App
	Hub     *ws.DefaultHub
	Logger  *zap.Logger
	AppConf *conf.AppConfig
}

func NewApp(
	rt *router.Router,
	repos *repo.Repositories,
	hub *ws.DefaultHub,
	logger *zap.Logger,
	appConf *conf.AppConfig,
) (*App, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repos.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	logger.Info("mongo indexes ensured")

	httpApp := rt.Router()

	cleanup := func() {
		logger.Info("Closing realtime connections...", zap.Int("connections", hub.Count()))
		hub.Close()
	}

	app := &App{
		HttpApp: httpApp,
		Hub:     hub,
		Logger:  logger,
		AppConf: appConf,
	}
	return app, cleanup, nil
}
