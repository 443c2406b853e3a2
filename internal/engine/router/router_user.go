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

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	userGroup := r.Group("/users", auth)
	{
		userGroup.Post("/", rt.createUser)
		userGroup.Get("/", rt.listUsers)
		userGroup.Get("/:userId", rt.getUser)
		userGroup.Put("/:userId", rt.updateUser)
		userGroup.Put("/:userId/active", rt.setUserActive)
		userGroup.Delete("/:userId", rt.deleteUser)
	}
}

func (rt *Router) createUser(c *fiber.Ctx) error {
	var req model.CreateUserReq
	if !parseBody(c, &req) {
		return nil
	}
	u, err := rt.Services.User.Create(c.UserContext(), caller(c), &req)
	return reply(c, u, err)
}

func (rt *Router) listUsers(c *fiber.Ctx) error {
	users, err := rt.Services.User.List(c.UserContext(), caller(c))
	return reply(c, users, err)
}

func (rt *Router) getUser(c *fiber.Ctx) error {
	u, err := rt.Services.User.Get(c.UserContext(), caller(c), c.Params("userId"))
	return reply(c, u, err)
}

func (rt *Router) updateUser(c *fiber.Ctx) error {
	var req model.UpdateUserReq
	if !parseBody(c, &req) {
		return nil
	}
	u, err := rt.Services.User.Update(c.UserContext(), caller(c), c.Params("userId"), &req)
	return reply(c, u, err)
}

func (rt *Router) setUserActive(c *fiber.Ctx) error {
	var req model.SetActiveReq
	if !parseBody(c, &req) {
		return nil
	}
	u, err := rt.Services.User.SetActive(c.UserContext(), caller(c), c.Params("userId"), req.Active)
	return reply(c, u, err)
}

func (rt *Router) deleteUser(c *fiber.Ctx) error {
	return done(c, rt.Services.User.Delete(c.UserContext(), caller(c), c.Params("userId")))
}
