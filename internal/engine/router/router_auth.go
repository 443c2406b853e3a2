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
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/login", rt.login)
		authGroup.Post("/refresh", rt.refresh)

		authGroup.Post("/logout", auth, rt.logout)
		authGroup.Get("/me", auth, rt.me)
	}
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if !parseBody(c, &req) {
		return nil
	}
	resp, err := rt.Services.Auth.Login(c.UserContext(), &req)
	return reply(c, resp, err)
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	var req model.RefreshReq
	if !parseBody(c, &req) {
		return nil
	}
	resp, err := rt.Services.Auth.Refresh(c.UserContext(), req.RefreshToken)
	return reply(c, resp, err)
}

func (rt *Router) logout(c *fiber.Ctx) error {
	return done(c, rt.Services.Auth.Logout(c.UserContext(), caller(c)))
}

func (rt *Router) me(c *fiber.Ctx) error {
	return reply(c, caller(c), nil)
}
