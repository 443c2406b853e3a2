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
	"strings"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/realtime"
	"github.com/go-arcade/taskflow/internal/engine/service"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/http/middleware"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/metrics"
	"github.com/go-arcade/taskflow/pkg/storage"
	"github.com/go-arcade/taskflow/pkg/version"
	"github.com/go-arcade/taskflow/pkg/ws"
	"github.com/gofiber/fiber/v2"
)

type Router struct {
	Http     *http.Http
	Storage  *storage.Storage
	Realtime *realtime.Config
	Services *service.Services
	Metrics  *metrics.Metrics
	Hub      ws.Hub
}

func NewRouter(httpConf *http.Http, storageConf *storage.Storage, realtimeConf *realtime.Config,
	services *service.Services, m *metrics.Metrics, hub ws.Hub) *Router {
	return &Router{
		Http:     httpConf,
		Storage:  storageConf,
		Realtime: realtimeConf,
		Services: services,
		Metrics:  m,
		Hub:      hub,
	}
}

func (rt *Router) Router() *fiber.App {
	app := http.NewFiberApp(rt.Http, middleware.ErrorHandler)

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.CorsMiddleware(""),
		middleware.RequestMiddleware(),
		middleware.AccessLogMiddleware(rt.Http),
		rt.Metrics.Middleware(),
		middleware.UnifiedResponseMiddleware(),
	)

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", rt.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Services.Sessions, rt.Services.Identity.Resolver())

	// realtime
	app.Get("/ws", ws.UpgradeRequired(), auth, ws.Handle(rt.Hub, rt.Services.Socket, rt.Realtime.Options()))

	rt.storageRouter(app)

	api := app.Group(contextPath(rt.Http.ContextPath))
	{
		rt.authRouter(api, auth)
		rt.userRouter(api, auth)
		rt.companyRouter(api, auth)
		rt.teamRouter(api, auth)
		rt.projectRouter(api, auth)
		rt.taskRouter(api, auth)
		rt.chatRouter(api, auth)
	}

	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, fiber.StatusNotFound, http.NotFound, "")
	})

	return app
}

func contextPath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/api"
	}
	return p
}

// caller is set by the authorization middleware on every protected route.
func caller(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(middleware.CALLER).(*model.User)
	return u
}

// parseBody decodes the request body into out and writes a 400 when it cannot.
func parseBody(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		log.Debugw("parse request body failed", "path", c.Path(), "error", err)
		_ = http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, "")
		return false
	}
	return true
}

// reply stores detail for the unified response middleware, or writes err.
func reply(c *fiber.Ctx, detail any, err error) error {
	if err != nil {
		return http.WithAppErr(c, err)
	}
	c.Locals(middleware.DETAIL, detail)
	return nil
}

func done(c *fiber.Ctx, err error) error {
	if err != nil {
		return http.WithAppErr(c, err)
	}
	c.Locals(middleware.OPERATION, true)
	return nil
}
