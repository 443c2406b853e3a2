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

func (rt *Router) projectRouter(r fiber.Router, auth fiber.Handler) {
	projectGroup := r.Group("/projects", auth)
	{
		projectGroup.Post("/", rt.createProject)
		projectGroup.Get("/", rt.listProjects)
		projectGroup.Get("/:projectId", rt.getProject)
		projectGroup.Put("/:projectId", rt.updateProject)
		projectGroup.Delete("/:projectId", rt.deleteProject)

		projectGroup.Post("/:projectId/members", rt.addProjectMember)
		projectGroup.Delete("/:projectId/members/:userId", rt.removeProjectMember)
		projectGroup.Post("/:projectId/comments", rt.addProjectComment)
	}
}

func (rt *Router) createProject(c *fiber.Ctx) error {
	var req model.CreateProjectReq
	if !parseBody(c, &req) {
		return nil
	}
	p, err := rt.Services.Project.Create(c.UserContext(), caller(c), &req)
	return reply(c, p, err)
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	projects, err := rt.Services.Project.List(c.UserContext(), caller(c))
	return reply(c, projects, err)
}

func (rt *Router) getProject(c *fiber.Ctx) error {
	p, err := rt.Services.Project.Get(c.UserContext(), caller(c), c.Params("projectId"))
	return reply(c, p, err)
}

func (rt *Router) updateProject(c *fiber.Ctx) error {
	var req model.UpdateProjectReq
	if !parseBody(c, &req) {
		return nil
	}
	p, err := rt.Services.Project.Update(c.UserContext(), caller(c), c.Params("projectId"), &req)
	return reply(c, p, err)
}

func (rt *Router) deleteProject(c *fiber.Ctx) error {
	return done(c, rt.Services.Project.Delete(c.UserContext(), caller(c), c.Params("projectId")))
}

func (rt *Router) addProjectMember(c *fiber.Ctx) error {
	var req model.ProjectMemberReq
	if !parseBody(c, &req) {
		return nil
	}
	p, err := rt.Services.Project.AddMember(c.UserContext(), caller(c), c.Params("projectId"), &req)
	return reply(c, p, err)
}

func (rt *Router) removeProjectMember(c *fiber.Ctx) error {
	p, err := rt.Services.Project.RemoveMember(c.UserContext(), caller(c), c.Params("projectId"), c.Params("userId"))
	return reply(c, p, err)
}

func (rt *Router) addProjectComment(c *fiber.Ctx) error {
	var req model.AddCommentReq
	if !parseBody(c, &req) {
		return nil
	}
	comment, err := rt.Services.Project.AddComment(c.UserContext(), caller(c), c.Params("projectId"), &req)
	return reply(c, comment, err)
}
