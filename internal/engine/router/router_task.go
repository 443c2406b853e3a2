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

func (rt *Router) taskRouter(r fiber.Router, auth fiber.Handler) {
	taskGroup := r.Group("/tasks", auth)
	{
		// delegation requests addressed to the caller; registered before /:id
		taskGroup.Get("/delegation-requests", rt.listDelegationRequests)
		taskGroup.Put("/delegation-requests/:requestId", rt.resolveDelegation)

		taskGroup.Post("/", rt.createTask)
		taskGroup.Get("/", rt.listTasks)
		taskGroup.Get("/:id", rt.getTask)
		taskGroup.Put("/:id", rt.updateTask)
		taskGroup.Put("/:id/status", rt.changeTaskStatus)
		taskGroup.Delete("/:id", rt.deleteTask)
		taskGroup.Post("/:id/comments", rt.addTaskComment)

		taskGroup.Post("/:id/delegate", rt.delegateTask)
		taskGroup.Get("/:id/delegation-requests", rt.taskDelegationHistory)
	}
}

func (rt *Router) createTask(c *fiber.Ctx) error {
	var req model.CreateTaskReq
	if !parseBody(c, &req) {
		return nil
	}
	task, err := rt.Services.Task.Create(c.UserContext(), caller(c), &req)
	return reply(c, task, err)
}

// listTasks accepts optional projectId and status filters.
func (rt *Router) listTasks(c *fiber.Ctx) error {
	tasks, err := rt.Services.Task.List(c.UserContext(), caller(c), c.Query("projectId"), c.Query("status"))
	return reply(c, tasks, err)
}

func (rt *Router) getTask(c *fiber.Ctx) error {
	task, err := rt.Services.Task.Get(c.UserContext(), caller(c), c.Params("id"))
	return reply(c, task, err)
}

func (rt *Router) updateTask(c *fiber.Ctx) error {
	var req model.UpdateTaskReq
	if !parseBody(c, &req) {
		return nil
	}
	task, err := rt.Services.Task.Update(c.UserContext(), caller(c), c.Params("id"), &req)
	return reply(c, task, err)
}

func (rt *Router) changeTaskStatus(c *fiber.Ctx) error {
	var req model.TaskStatusReq
	if !parseBody(c, &req) {
		return nil
	}
	task, err := rt.Services.Task.ChangeStatus(c.UserContext(), caller(c), c.Params("id"), &req)
	return reply(c, task, err)
}

func (rt *Router) deleteTask(c *fiber.Ctx) error {
	return done(c, rt.Services.Task.Delete(c.UserContext(), caller(c), c.Params("id")))
}

func (rt *Router) addTaskComment(c *fiber.Ctx) error {
	var req model.AddCommentReq
	if !parseBody(c, &req) {
		return nil
	}
	comment, err := rt.Services.Task.AddComment(c.UserContext(), caller(c), c.Params("id"), &req)
	return reply(c, comment, err)
}

func (rt *Router) delegateTask(c *fiber.Ctx) error {
	var req model.DelegateReq
	if !parseBody(c, &req) {
		return nil
	}
	task, err := rt.Services.Delegation.Create(c.UserContext(), caller(c), c.Params("id"), &req)
	return reply(c, task, err)
}

func (rt *Router) listDelegationRequests(c *fiber.Ctx) error {
	pending, err := rt.Services.Delegation.ListMine(c.UserContext(), caller(c))
	return reply(c, pending, err)
}

func (rt *Router) resolveDelegation(c *fiber.Ctx) error {
	var req model.ResolveDelegationReq
	if !parseBody(c, &req) {
		return nil
	}
	task, err := rt.Services.Delegation.Resolve(c.UserContext(), caller(c), c.Params("requestId"), &req)
	return reply(c, task, err)
}

func (rt *Router) taskDelegationHistory(c *fiber.Ctx) error {
	requests, err := rt.Services.Delegation.History(c.UserContext(), caller(c), c.Params("id"))
	return reply(c, requests, err)
}
