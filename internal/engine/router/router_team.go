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

func (rt *Router) teamRouter(r fiber.Router, auth fiber.Handler) {
	teamGroup := r.Group("/teams", auth)
	{
		teamGroup.Post("/", rt.createTeam)
		teamGroup.Get("/", rt.listTeams)
		teamGroup.Get("/:teamId", rt.getTeam)
		teamGroup.Put("/:teamId", rt.updateTeam)
		teamGroup.Delete("/:teamId", rt.deleteTeam)

		// members
		teamGroup.Post("/:teamId/members", rt.addTeamMember)
		teamGroup.Delete("/:teamId/members/:userId", rt.removeTeamMember)
	}
}

func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req model.CreateTeamReq
	if !parseBody(c, &req) {
		return nil
	}
	team, err := rt.Services.Team.Create(c.UserContext(), caller(c), &req)
	return reply(c, team, err)
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	teams, err := rt.Services.Team.List(c.UserContext(), caller(c))
	return reply(c, teams, err)
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	team, err := rt.Services.Team.Get(c.UserContext(), caller(c), c.Params("teamId"))
	return reply(c, team, err)
}

func (rt *Router) updateTeam(c *fiber.Ctx) error {
	var req model.UpdateTeamReq
	if !parseBody(c, &req) {
		return nil
	}
	team, err := rt.Services.Team.Update(c.UserContext(), caller(c), c.Params("teamId"), &req)
	return reply(c, team, err)
}

func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	return done(c, rt.Services.Team.Delete(c.UserContext(), caller(c), c.Params("teamId")))
}

func (rt *Router) addTeamMember(c *fiber.Ctx) error {
	var req model.TeamMemberReq
	if !parseBody(c, &req) {
		return nil
	}
	team, err := rt.Services.Team.AddMember(c.UserContext(), caller(c), c.Params("teamId"), &req)
	return reply(c, team, err)
}

func (rt *Router) removeTeamMember(c *fiber.Ctx) error {
	team, err := rt.Services.Team.RemoveMember(c.UserContext(), caller(c), c.Params("teamId"), c.Params("userId"))
	return reply(c, team, err)
}
